// internal/models/license.go
package models

import (
	"time"
)

// LicenseOffer is a one-shot proposal: Open (accepted=false) until a single
// valid acceptance flips it to the terminal Accepted state. There is no
// cancel, revoke or re-offer path.
type LicenseOffer struct {
	BaseModel
	LicenseID   uint64       `json:"license_id" gorm:"uniqueIndex;not null"`
	AssetID     uint64       `json:"asset_id" gorm:"not null;index"`
	RoyaltyRate int64        `json:"royalty_rate" gorm:"not null"`
	Price       int64        `json:"price" gorm:"not null"`
	PaymentKind PaymentKind  `json:"payment_kind" gorm:"not null;default:0"`
	Payee       CrossAccount `json:"payee" gorm:"embedded;embeddedPrefix:payee_"`
	Accepted    bool         `json:"accepted" gorm:"default:false;index"`
	Buyer       CrossAccount `json:"buyer,omitempty" gorm:"embedded;embeddedPrefix:buyer_"`
	PaidAmount  int64        `json:"paid_amount"`
	AcceptedAt  *time.Time   `json:"accepted_at"`
}
