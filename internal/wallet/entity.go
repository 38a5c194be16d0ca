// AngelaMos | 2026
// entity.go

package wallet

import (
	"time"
)

const (
	TypeDeposit      = "deposit"
	TypeSubscription = "subscription"
	TypePush         = "push"
	TypePurchase     = "purchase"
)

const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

const (
	MethodBankTransfer = "bank_transfer"
	MethodWallet       = "wallet"
)

// Transaction is a wallet movement. Deposits and subscription transfers
// wait for an admin; wallet-paid actions are recorded already settled.
type Transaction struct {
	ID          string     `db:"id"           json:"id"`
	UserID      string     `db:"user_id"      json:"user_id"`
	Type        string     `db:"type"         json:"type"`
	Amount      int64      `db:"amount"       json:"amount"`
	Method      string     `db:"method"       json:"method"`
	Tier        string     `db:"tier"         json:"tier,omitempty"`
	Reference   string     `db:"reference"    json:"reference,omitempty"`
	Status      string     `db:"status"       json:"status"`
	Note        string     `db:"note"         json:"note,omitempty"`
	ProcessedBy *string    `db:"processed_by" json:"processed_by,omitempty"`
	ProcessedAt *time.Time `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"   json:"updated_at"`
}

func (t *Transaction) IsPending() bool {
	return t.Status == StatusPending
}

// Account is the wallet-relevant slice of a user row.
type Account struct {
	UserID                string     `db:"id"`
	Balance               int64      `db:"wallet_balance"`
	Tier                  string     `db:"tier"`
	SubscriptionExpiresAt *time.Time `db:"subscription_expires_at"`
}
