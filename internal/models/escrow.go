// internal/models/escrow.go
package models

import (
	"time"
)

// EscrowBalance is the per-payee accumulator of funds from accepted license
// offers, keyed by the payee's primary-chain address. An absent row reads as
// a zero balance; the row may return to zero but is never deleted.
type EscrowBalance struct {
	Address   string    `json:"address" gorm:"primaryKey;size:66"`
	Balance   int64     `json:"balance" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DepositAccount holds a buyer's funded platform balance, the source of the
// payment attached to a license acceptance.
type DepositAccount struct {
	Address   string    `json:"address" gorm:"primaryKey;size:66"`
	Balance   int64     `json:"balance" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Deposit records a single payment-provider funding of a deposit account.
// The provider reference is unique so a confirmation can never credit twice.
type Deposit struct {
	BaseModel
	Address     string        `json:"address" gorm:"size:66;not null;index"`
	Amount      int64         `json:"amount" gorm:"not null"`
	ProviderRef string        `json:"provider_ref" gorm:"uniqueIndex;size:255;not null"`
	Status      DepositStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	CreditedAt  *time.Time    `json:"credited_at"`
}

// ChainEvent is the persisted form of the registry's observable events.
type ChainEvent struct {
	BaseModel
	Type    EventType `json:"type" gorm:"type:varchar(40);not null;index"`
	Payload JSONB     `json:"payload" gorm:"type:jsonb"`
}
