// AngelaMos | 2026
// dto.go

package wallet

import (
	"time"

	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/settings"
)

type DepositRequest struct {
	Amount    int64  `json:"amount"    validate:"required,gt=0"`
	Method    string `json:"method"    validate:"omitempty,oneof=bank_transfer"`
	Reference string `json:"reference" validate:"max=255"`
}

type SubscriptionTransferRequest struct {
	Tier      string `json:"tier"      validate:"required,oneof=basic pro"`
	Price     int64  `json:"price"     validate:"required,gt=0"`
	Reference string `json:"reference" validate:"max=255"`
}

type PurchaseRequest struct {
	Tier string `json:"tier" validate:"required,oneof=basic pro"`
}

type RejectRequest struct {
	Note string `json:"note" validate:"max=500"`
}

type BalanceResponse struct {
	Balance               int64      `json:"balance"`
	Tier                  string     `json:"tier"`
	EffectiveTier         string     `json:"effective_tier"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`
}

type DepositResponse struct {
	Transaction  *Transaction         `json:"transaction"`
	Instructions settings.BankAccount `json:"instructions"`
}

func ToBalanceResponse(a *Account, now time.Time) BalanceResponse {
	return BalanceResponse{
		Balance:               a.Balance,
		Tier:                  a.Tier,
		EffectiveTier:         core.EffectiveTier(a.Tier, a.SubscriptionExpiresAt, now),
		SubscriptionExpiresAt: a.SubscriptionExpiresAt,
	}
}
