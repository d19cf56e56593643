// internal/services/license_service.go
package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/ipforge/ipforge-backend/internal/models"
	"github.com/ipforge/ipforge-backend/internal/utils"
)

// LicenseService owns the license offer book. Offers are created only by the
// referenced asset's registered owner and accepted at most once; acceptance
// and the escrow credit commit together or not at all.
type LicenseService struct {
	db           *gorm.DB
	eventService *EventService

	mu sync.Mutex
}

type OfferLicenseRequest struct {
	AssetID     uint64              `json:"asset_id" validate:"required,min=1"`
	RoyaltyRate int64               `json:"royalty_rate" validate:"min=0"`
	Price       int64               `json:"price" validate:"min=0"`
	PaymentKind models.PaymentKind  `json:"payment_kind"`
	Payee       models.CrossAccount `json:"payee,omitempty"`
}

type AcceptLicenseRequest struct {
	Amount int64 `json:"amount"`
}

func NewLicenseService(db *gorm.DB, eventService *EventService) *LicenseService {
	return &LicenseService{
		db:           db,
		eventService: eventService,
	}
}

// OfferLicense allocates the next license id and stores an open offer. The
// caller must be the registered owner of the referenced asset; an asset
// nobody registered has no owner, so offering against it is Unauthorized.
// An omitted payee defaults to the caller.
func (s *LicenseService) OfferLicense(caller models.CrossAccount, req *OfferLicenseRequest) (*models.LicenseOffer, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var offer *models.LicenseOffer
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var asset models.IPAsset
		if err := tx.Where("asset_id = ?", req.AssetID).First(&asset).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnauthorized
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !asset.Owner.Equal(caller) {
			return ErrUnauthorized
		}

		licenseID, err := nextSequence(tx, models.SequenceLicenseID)
		if err != nil {
			return err
		}

		payee := req.Payee
		if payee.IsZero() {
			payee = caller
		}

		offer = &models.LicenseOffer{
			LicenseID:   licenseID,
			AssetID:     req.AssetID,
			RoyaltyRate: req.RoyaltyRate,
			Price:       req.Price,
			PaymentKind: req.PaymentKind,
			Payee:       payee,
			Accepted:    false,
		}

		if err := tx.Create(offer).Error; err != nil {
			return fmt.Errorf("failed to create license offer: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.eventService.Emit(models.EventLicenseOffered, map[string]interface{}{
		"license_id":   offer.LicenseID,
		"asset_id":     offer.AssetID,
		"royalty_rate": offer.RoyaltyRate,
		"price":        offer.Price,
		"payment_kind": int(offer.PaymentKind),
		"payee":        offer.Payee.Address,
	})

	return offer, nil
}

// AcceptLicense performs the one-way Open -> Accepted transition. The only
// payment precondition is amount >= price, so a free offer accepts a zero
// amount. The attached amount is debited from the buyer's deposit account
// and credited in full to the payee's escrow entry; overpayment above the
// asking price is retained by the payee. The flag flip, the debit and the
// credit commit as one transaction.
func (s *LicenseService) AcceptLicense(buyer models.CrossAccount, licenseID uint64, amount int64) (*models.LicenseOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var offer models.LicenseOffer
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("license_id = ?", licenseID).First(&offer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if offer.Accepted {
			return ErrAlreadyAccepted
		}

		if amount < offer.Price {
			return ErrInsufficientPayment
		}

		// An account that was never funded is a zero balance, which still
		// covers a zero amount.
		deposit := models.DepositAccount{Address: buyer.Address}
		if err := tx.Where(models.DepositAccount{Address: buyer.Address}).FirstOrCreate(&deposit).Error; err != nil {
			return fmt.Errorf("failed to load deposit account: %w", err)
		}
		if deposit.Balance < amount {
			return ErrInsufficientDeposit
		}

		deposit.Balance -= amount
		if err := tx.Save(&deposit).Error; err != nil {
			return fmt.Errorf("failed to debit deposit: %w", err)
		}

		now := time.Now()
		offer.Accepted = true
		offer.Buyer = buyer
		offer.PaidAmount = amount
		offer.AcceptedAt = &now
		if err := tx.Save(&offer).Error; err != nil {
			return fmt.Errorf("failed to accept license offer: %w", err)
		}

		entry := models.EscrowBalance{Address: offer.Payee.Address}
		if err := tx.Where(models.EscrowBalance{Address: offer.Payee.Address}).FirstOrCreate(&entry).Error; err != nil {
			return fmt.Errorf("failed to load escrow entry: %w", err)
		}
		entry.Balance += amount
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("failed to credit escrow: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.eventService.Emit(models.EventLicenseAccepted, map[string]interface{}{
		"license_id": offer.LicenseID,
		"buyer":      buyer.Address,
		"amount":     amount,
	})

	return &offer, nil
}

func (s *LicenseService) GetOffer(licenseID uint64) (*models.LicenseOffer, error) {
	var offer models.LicenseOffer
	if err := s.db.Where("license_id = ?", licenseID).First(&offer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &offer, nil
}

func (s *LicenseService) ListAssetOffers(assetID uint64, params utils.PaginationParams) ([]models.LicenseOffer, int64, error) {
	query := s.db.Model(&models.LicenseOffer{}).Where("asset_id = ?", assetID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count license offers: %w", err)
	}

	allowedSortFields := []string{"created_at", "license_id", "price"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var offers []models.LicenseOffer
	if err := query.Find(&offers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch license offers: %w", err)
	}

	return offers, total, nil
}
