// internal/services/escrow_service.go
package services

import (
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/ipforge/ipforge-backend/internal/models"
)

// EscrowService releases accumulated license payments. Withdrawal follows
// checks-effects-interactions: the ledger entry is zeroed before the outbound
// transfer is attempted, and both sit in one transaction so a failed transfer
// leaves the pre-withdrawal balance committed.
type EscrowService struct {
	db           *gorm.DB
	chainService ChainService
	eventService *EventService

	mu sync.Mutex
}

func NewEscrowService(db *gorm.DB, chainService ChainService, eventService *EventService) *EscrowService {
	return &EscrowService{
		db:           db,
		chainService: chainService,
		eventService: eventService,
	}
}

// BalanceOf reads the withdrawable balance; an absent entry is a legitimate
// zero, not an error.
func (s *EscrowService) BalanceOf(address string) (int64, error) {
	var entry models.EscrowBalance
	if err := s.db.Where("address = ?", address).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("database error: %w", err)
	}
	return entry.Balance, nil
}

// Withdraw transfers the caller's full escrow balance out and zeroes the
// entry. The zeroing is written before the transfer runs; if the transfer
// fails the transaction rolls back as a unit.
func (s *EscrowService) Withdraw(caller models.CrossAccount) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var amount int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var entry models.EscrowBalance
		if err := tx.Where("address = ?", caller.Address).First(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoFunds
			}
			return fmt.Errorf("database error: %w", err)
		}

		if entry.Balance <= 0 {
			return ErrNoFunds
		}

		amount = entry.Balance
		entry.Balance = 0
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("failed to zero escrow entry: %w", err)
		}

		// Interaction last: any failure here aborts the zeroing above.
		if err := s.chainService.Transfer(caller, amount); err != nil {
			return fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	s.eventService.Emit(models.EventWithdrawn, map[string]interface{}{
		"payee":  caller.Address,
		"amount": amount,
	})

	return amount, nil
}
