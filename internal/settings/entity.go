// AngelaMos | 2026
// entity.go

package settings

import (
	"github.com/carterperez-dev/classifieds/internal/core"
)

const (
	KeyBankAccount = "bank_account"
	KeyPlans       = "plans"
	KeyPushPrice   = "push_price"
)

type BankAccount struct {
	BankName      string `json:"bank_name"      validate:"required,max=120"`
	AccountName   string `json:"account_name"   validate:"required,max=120"`
	AccountNumber string `json:"account_number" validate:"required,max=64"`
	Note          string `json:"note"           validate:"max=500"`
}

type Plan struct {
	Tier       string   `json:"tier"        validate:"required,oneof=free basic pro"`
	Price      int64    `json:"price"       validate:"gte=0"`
	ImageLimit int      `json:"image_limit" validate:"gte=1,lte=50"`
	Features   []string `json:"features"`
}

type Plans struct {
	Plans []Plan `json:"plans" validate:"required,min=1,dive"`
}

func (p Plans) Find(tier string) (Plan, bool) {
	for _, plan := range p.Plans {
		if plan.Tier == tier {
			return plan, true
		}
	}
	return Plan{}, false
}

type PushPrice struct {
	Amount int64 `json:"amount" validate:"gte=0"`
}

type PublicSettings struct {
	BankAccount BankAccount `json:"bank_account"`
	Plans       []Plan      `json:"plans"`
	PushPrice   int64       `json:"push_price"`
}

func DefaultBankAccount() BankAccount {
	return BankAccount{
		BankName:      "Not configured",
		AccountName:   "Not configured",
		AccountNumber: "-",
	}
}

func DefaultPlans() Plans {
	return Plans{Plans: []Plan{
		{Tier: core.TierFree, Price: 0, ImageLimit: 3},
		{Tier: core.TierBasic, Price: 50_000, ImageLimit: 8},
		{Tier: core.TierPro, Price: 150_000, ImageLimit: 20},
	}}
}

func DefaultPushPrice() PushPrice {
	return PushPrice{Amount: 10_000}
}

// ImageLimit falls back to the built-in plans when a tier is missing
// from the stored configuration.
func ImageLimit(p Plans, tier string) int {
	if plan, ok := p.Find(tier); ok {
		return plan.ImageLimit
	}
	if plan, ok := DefaultPlans().Find(tier); ok {
		return plan.ImageLimit
	}
	return 3
}
