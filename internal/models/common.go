// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		if str, isStr := value.(string); isStr {
			bytes = []byte(str)
		} else {
			return nil
		}
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type IPType string

const (
	IPTypePatent    IPType = "patent"
	IPTypeCopyright IPType = "copyright"
	IPTypeTrademark IPType = "trademark"
	IPTypeLicense   IPType = "license"
)

func (t IPType) Valid() bool {
	switch t {
	case IPTypePatent, IPTypeCopyright, IPTypeTrademark, IPTypeLicense:
		return true
	}
	return false
}

// PaymentKind is the payment-structure discriminator stored on a license
// offer. It is carried verbatim and never interpreted by the registry.
type PaymentKind int

const (
	PaymentKindOneTime   PaymentKind = 0
	PaymentKindRecurring PaymentKind = 1
)

type EventType string

const (
	EventCollectionCreated EventType = "collection_created"
	EventAssetRegistered   EventType = "asset_registered"
	EventLicenseOffered    EventType = "license_offered"
	EventLicenseAccepted   EventType = "license_accepted"
	EventWithdrawn         EventType = "withdrawn"
	EventDepositFunded     EventType = "deposit_funded"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type DepositStatus string

const (
	DepositStatusPending  DepositStatus = "pending"
	DepositStatusCredited DepositStatus = "credited"
	DepositStatusFailed   DepositStatus = "failed"
)
