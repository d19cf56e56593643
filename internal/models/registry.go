// internal/models/registry.go
package models

import (
	"github.com/lib/pq"
)

// CollectionRecord pins the administrative owner of a minted collection.
// The owner is written exactly once, in the same flow that creates the
// collection on chain; no transfer operation exists.
type CollectionRecord struct {
	BaseModel
	Address          string       `json:"address" gorm:"uniqueIndex;size:66;not null"`
	Owner            CrossAccount `json:"owner" gorm:"embedded;embeddedPrefix:owner_"`
	Name             string       `json:"name" gorm:"size:255;not null"`
	Description      string       `json:"description" gorm:"type:text"`
	Symbol           string       `json:"symbol" gorm:"size:16"`
	CoverRef         string       `json:"cover_ref" gorm:"size:512"`
	SponsorConfirmed bool         `json:"sponsor_confirmed" gorm:"default:false"`
}

// Sequence backs the monotonic asset and license counters. The resting value
// before any allocation is 0; allocation pre-increments, so the first id
// handed out is 1. Only the registry services touch these rows.
type Sequence struct {
	Name  string `gorm:"primaryKey;size:32"`
	Value uint64 `gorm:"not null;default:0"`
}

const (
	SequenceAssetID   = "asset_id"
	SequenceLicenseID = "license_id"
)

type IPAsset struct {
	BaseModel
	AssetID           uint64         `json:"asset_id" gorm:"uniqueIndex;not null"`
	IPType            IPType         `json:"ip_type" gorm:"type:varchar(20);not null;index"`
	Jurisdiction      string         `json:"jurisdiction" gorm:"size:100"`
	CollectionAddress string         `json:"collection_address" gorm:"size:66;not null;index"`
	TokenID           uint64         `json:"token_id"`
	Owner             CrossAccount   `json:"owner" gorm:"embedded;embeddedPrefix:owner_"`
	Name              string         `json:"name" gorm:"size:255"`
	Description       string         `json:"description" gorm:"type:text"`
	ContentRefs       pq.StringArray `json:"content_refs" gorm:"type:text[]"`
	Metadata          JSONB          `json:"metadata" gorm:"type:jsonb"`
	RegisteredAt      int64          `json:"registered_at" gorm:"not null"`
	Verified          bool           `json:"verified" gorm:"default:false"`
	Active            bool           `json:"active" gorm:"default:true"`
}
