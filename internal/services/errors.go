// internal/services/errors.go
package services

import "errors"

// Registry error taxonomy. Every failed operation discards all of its
// effects; callers that want a retry must re-submit.
var (
	// ErrUnauthorized: caller is not the recorded collection or asset owner.
	// An absent ownership record is also Unauthorized, never a valid zero
	// owner.
	ErrUnauthorized = errors.New("caller is not the recorded owner")

	// ErrAlreadyAccepted: the license offer is in its terminal state.
	ErrAlreadyAccepted = errors.New("license offer already accepted")

	// ErrInsufficientPayment: attached amount is below the asking price.
	ErrInsufficientPayment = errors.New("attached payment below asking price")

	// ErrInsufficientDeposit: the buyer's funded balance cannot cover the
	// attached amount.
	ErrInsufficientDeposit = errors.New("deposit balance below attached payment")

	// ErrNoFunds: withdrawal attempted with a zero escrow balance.
	ErrNoFunds = errors.New("no withdrawable balance")

	// ErrTransferFailed: the outbound payment could not be completed; the
	// whole withdrawal is rolled back.
	ErrTransferFailed = errors.New("outbound transfer failed")

	ErrCollectionNotFound = errors.New("collection not found")
	ErrAssetNotFound      = errors.New("ip asset not found")
	ErrOfferNotFound      = errors.New("license offer not found")
)
