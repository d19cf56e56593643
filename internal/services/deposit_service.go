// internal/services/deposit_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"

	"github.com/ipforge/ipforge-backend/internal/config"
	"github.com/ipforge/ipforge-backend/internal/models"
	"github.com/ipforge/ipforge-backend/internal/utils"
)

// DepositService funds buyer deposit accounts through Stripe. A confirmed
// PaymentIntent credits the account exactly once; the intent id is recorded
// with a unique constraint so replayed confirmations are rejected.
type DepositService struct {
	db           *gorm.DB
	config       *config.Config
	eventService *EventService
}

type CreateDepositRequest struct {
	Amount int64 `json:"amount" validate:"required,min=1"`
}

type DepositIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

type ConfirmDepositRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

func NewDepositService(db *gorm.DB, cfg *config.Config, eventService *EventService) *DepositService {
	// Initialize Stripe
	stripe.Key = cfg.Payment.StripeSecretKey

	return &DepositService{
		db:           db,
		config:       cfg,
		eventService: eventService,
	}
}

func (s *DepositService) CreateDepositIntent(account models.CrossAccount, req *CreateDepositRequest) (*DepositIntentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.Amount < s.config.Payment.MinimumDeposit {
		return nil, fmt.Errorf("minimum deposit is %d", s.config.Payment.MinimumDeposit)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(s.config.Payment.Currency),
	}
	params.AddMetadata("deposit_address", account.Address)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	deposit := &models.Deposit{
		Address:     account.Address,
		Amount:      req.Amount,
		ProviderRef: pi.ID,
		Status:      models.DepositStatusPending,
	}
	if err := s.db.Create(deposit).Error; err != nil {
		return nil, fmt.Errorf("failed to record deposit: %w", err)
	}

	return &DepositIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

func (s *DepositService) ConfirmDeposit(account models.CrossAccount, req *ConfirmDepositRequest) (*models.Deposit, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	pi, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("payment intent is not settled (status %s)", pi.Status)
	}

	if pi.Metadata["deposit_address"] != account.Address {
		return nil, ErrUnauthorized
	}

	var deposit models.Deposit
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("provider_ref = ?", req.PaymentIntentID).First(&deposit).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("deposit not found for payment %s", req.PaymentIntentID)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if deposit.Status == models.DepositStatusCredited {
			return fmt.Errorf("deposit already credited")
		}

		now := time.Now()
		deposit.Status = models.DepositStatusCredited
		deposit.CreditedAt = &now
		if err := tx.Save(&deposit).Error; err != nil {
			return fmt.Errorf("failed to update deposit: %w", err)
		}

		return creditDepositAccount(tx, deposit.Address, deposit.Amount)
	})
	if err != nil {
		return nil, err
	}

	s.eventService.Emit(models.EventDepositFunded, map[string]interface{}{
		"address": deposit.Address,
		"amount":  deposit.Amount,
	})

	return &deposit, nil
}

func creditDepositAccount(tx *gorm.DB, address string, amount int64) error {
	account := models.DepositAccount{Address: address}
	if err := tx.Where(models.DepositAccount{Address: address}).FirstOrCreate(&account).Error; err != nil {
		return fmt.Errorf("failed to load deposit account: %w", err)
	}

	account.Balance += amount
	if err := tx.Save(&account).Error; err != nil {
		return fmt.Errorf("failed to credit deposit account: %w", err)
	}

	return nil
}

// DepositBalance reads the funded balance; an absent account is zero.
func (s *DepositService) DepositBalance(address string) (int64, error) {
	var account models.DepositAccount
	if err := s.db.Where("address = ?", address).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("database error: %w", err)
	}
	return account.Balance, nil
}
