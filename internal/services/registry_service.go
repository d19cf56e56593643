// internal/services/registry_service.go
package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/ipforge/ipforge-backend/internal/config"
	"github.com/ipforge/ipforge-backend/internal/models"
	"github.com/ipforge/ipforge-backend/internal/utils"
)

// RegistryService owns the collection ownership gate and the IP asset
// registry. All mutating operations run serialized behind mu plus a database
// transaction, reproducing the single-sequential-ledger execution model: one
// operation at a time, all-or-nothing.
type RegistryService struct {
	db           *gorm.DB
	chainService ChainService
	eventService *EventService
	config       *config.Config

	mu sync.Mutex
}

type CreateCollectionRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=255"`
	Description string `json:"description,omitempty"`
	Symbol      string `json:"symbol" validate:"required,min=1,max=16"`
	CoverRef    string `json:"cover_ref,omitempty"`
}

type RegisterAssetRequest struct {
	IPType            models.IPType          `json:"ip_type" validate:"required"`
	Jurisdiction      string                 `json:"jurisdiction" validate:"required,max=100"`
	CollectionAddress string                 `json:"collection_address" validate:"required,chain_address"`
	Name              string                 `json:"name" validate:"required,min=3,max=255"`
	Description       string                 `json:"description,omitempty"`
	ContentRefs       []string               `json:"content_refs,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

type AssetSearchParams struct {
	utils.PaginationParams
	CollectionAddress string         `json:"collection_address,omitempty"`
	OwnerAddress      string         `json:"owner_address,omitempty"`
	IPType            *models.IPType `json:"ip_type,omitempty"`
}

func NewRegistryService(db *gorm.DB, chainService ChainService, eventService *EventService, cfg *config.Config) *RegistryService {
	return &RegistryService{
		db:           db,
		chainService: chainService,
		eventService: eventService,
		config:       cfg,
	}
}

// CreateCollection mints a collection through the collaborator and records
// the caller as its sole administrative owner in the same flow. The owner is
// never re-recorded and never transferred.
func (s *RegistryService) CreateCollection(owner models.CrossAccount, req *CreateCollectionRequest) (*models.CollectionRecord, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if owner.IsZero() {
		return nil, ErrUnauthorized
	}

	address, err := s.chainService.CreateCollection(CreateCollectionParams{
		Name:        req.Name,
		Description: req.Description,
		Symbol:      req.Symbol,
		CoverRef:    req.CoverRef,
		Nesting:     false,
		Permissions: map[string]bool{"mintMode": true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	record := &models.CollectionRecord{
		Address:     address,
		Owner:       owner,
		Name:        req.Name,
		Description: req.Description,
		Symbol:      req.Symbol,
		CoverRef:    req.CoverRef,
	}

	if err := s.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to record collection owner: %w", err)
	}

	s.wireCollection(record)

	s.eventService.Emit(models.EventCollectionCreated, map[string]interface{}{
		"collection": record.Address,
		"owner":      owner.Address,
		"name":       record.Name,
	})

	return record, nil
}

// wireCollection attaches the configured fee sponsor and backend admin to a
// freshly minted collection. Failures are logged through the event trail of
// the collaborator itself and do not undo the registration.
func (s *RegistryService) wireCollection(record *models.CollectionRecord) {
	if sponsor := s.config.Chain.SponsorAddress; sponsor != "" {
		if err := s.chainService.SetCollectionSponsor(record.Address, sponsor); err == nil {
			if err := s.chainService.ConfirmSponsorship(record.Address); err == nil {
				s.db.Model(record).UpdateColumn("sponsor_confirmed", true)
				record.SponsorConfirmed = true
			}
		}
	}

	if admin := s.config.Chain.AdminAddress; admin != "" {
		s.chainService.AddCollectionAdmin(record.Address, models.CrossAccount{Address: admin})
	}
}

// IsCollectionOwner is the authorization predicate for asset registration.
// A missing record means nobody is the owner.
func (s *RegistryService) IsCollectionOwner(collection string, actor models.CrossAccount) (bool, error) {
	var record models.CollectionRecord
	if err := s.db.Where("address = ?", collection).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("database error: %w", err)
	}
	return record.Owner.Equal(actor), nil
}

func (s *RegistryService) GetCollection(address string) (*models.CollectionRecord, error) {
	var record models.CollectionRecord
	if err := s.db.Where("address = ?", address).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &record, nil
}

// RegisterAsset allocates the next asset id and writes the asset record,
// gated on the caller being the recorded owner of the target collection.
// The stored asset id and the returned one are the same value. Minting the
// backing token happens inside the transaction, so a collaborator failure
// leaves the registry and the counter untouched.
func (s *RegistryService) RegisterAsset(caller models.CrossAccount, req *RegisterAssetRequest) (*models.IPAsset, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !req.IPType.Valid() {
		return nil, fmt.Errorf("unknown ip type %q", req.IPType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var asset *models.IPAsset
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var record models.CollectionRecord
		if err := tx.Where("address = ?", req.CollectionAddress).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnauthorized
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !record.Owner.Equal(caller) {
			return ErrUnauthorized
		}

		assetID, err := nextSequence(tx, models.SequenceAssetID)
		if err != nil {
			return err
		}

		registeredAt := time.Now().Unix()

		asset = &models.IPAsset{
			AssetID:           assetID,
			IPType:            req.IPType,
			Jurisdiction:      req.Jurisdiction,
			CollectionAddress: req.CollectionAddress,
			Owner:             caller,
			Name:              req.Name,
			Description:       req.Description,
			ContentRefs:       req.ContentRefs,
			Metadata:          models.JSONB(req.Metadata),
			RegisteredAt:      registeredAt,
			Verified:          false,
			Active:            true,
		}

		imageRef := ""
		if len(req.ContentRefs) > 0 {
			imageRef = req.ContentRefs[0]
		}

		tokenID, err := s.chainService.CreateToken(CreateTokenParams{
			Collection:  req.CollectionAddress,
			ImageRef:    imageRef,
			Name:        req.Name,
			Description: req.Description,
			Attributes:  assetAttributes(req.IPType, req.Jurisdiction, registeredAt),
			Owner:       caller,
		})
		if err != nil {
			return fmt.Errorf("failed to mint asset token: %w", err)
		}
		asset.TokenID = tokenID

		if err := tx.Create(asset).Error; err != nil {
			return fmt.Errorf("failed to create ip asset: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.eventService.Emit(models.EventAssetRegistered, map[string]interface{}{
		"asset_id":   asset.AssetID,
		"ip_type":    string(asset.IPType),
		"collection": asset.CollectionAddress,
		"owner":      asset.Owner.Address,
	})

	return asset, nil
}

func assetAttributes(ipType models.IPType, jurisdiction string, registeredAt int64) []TokenAttribute {
	return []TokenAttribute{
		{TraitType: "ip_type", Value: string(ipType)},
		{TraitType: "jurisdiction", Value: jurisdiction},
		{TraitType: "registration_date", Value: time.Unix(registeredAt, 0).UTC().Format(time.RFC3339)},
	}
}

func (s *RegistryService) GetAsset(assetID uint64) (*models.IPAsset, error) {
	var asset models.IPAsset
	if err := s.db.Where("asset_id = ?", assetID).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &asset, nil
}

func (s *RegistryService) SearchAssets(params AssetSearchParams) ([]models.IPAsset, int64, error) {
	query := s.db.Model(&models.IPAsset{})

	if params.CollectionAddress != "" {
		query = query.Where("collection_address = ?", params.CollectionAddress)
	}
	if params.OwnerAddress != "" {
		query = query.Where("owner_address = ?", params.OwnerAddress)
	}
	if params.IPType != nil {
		query = query.Where("ip_type = ?", *params.IPType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count ip assets: %w", err)
	}

	allowedSortFields := []string{"created_at", "registered_at", "asset_id", "name"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var assets []models.IPAsset
	if err := query.Find(&assets).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch ip assets: %w", err)
	}

	return assets, total, nil
}
