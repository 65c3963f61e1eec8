package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrLockConflict      = errors.New("job already accepted by another professional")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrStorageFailure    = errors.New("storage failure")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
)

var (
	ErrServiceRequestNotFound = fmt.Errorf("service request %w", ErrNotFound)
	ErrLeadNotFound           = fmt.Errorf("lead %w", ErrNotFound)
	ErrQuoteNotFound          = fmt.Errorf("quote %w", ErrNotFound)
	ErrAppointmentNotFound    = fmt.Errorf("appointment %w", ErrNotFound)
	ErrReferralFeeNotFound    = fmt.Errorf("referral fee %w", ErrNotFound)
	ErrProfileNotFound        = fmt.Errorf("profile %w", ErrNotFound)

	ErrQuoteExpired       = fmt.Errorf("%w: quote expired", ErrInvalidTransition)
	ErrQuoteInFlight      = fmt.Errorf("%w: another quote is awaiting confirmation", ErrInvalidTransition)
	ErrLockNotHeld        = fmt.Errorf("%w: job lock not held", ErrInvalidTransition)
	ErrLeadDeclined       = fmt.Errorf("%w: lead declined", ErrInvalidTransition)
	ErrRequestClosed      = fmt.Errorf("%w: service request no longer accepts this action", ErrInvalidTransition)
	ErrRequestNotComplete = fmt.Errorf("%w: service request is not completed", ErrInvalidTransition)
	ErrFeeNotPending      = fmt.Errorf("%w: referral fee is not pending", ErrInvalidTransition)
	ErrFeeAmountNotSet    = fmt.Errorf("%w: referral fee amount not set", ErrInvalidTransition)
	ErrAppointmentState   = fmt.Errorf("%w: appointment state does not allow this action", ErrInvalidTransition)
	ErrQuoteNotSelectable = fmt.Errorf("%w: quote is not awaiting selection", ErrInvalidTransition)

	ErrInvalidID          = fmt.Errorf("%w: id", ErrInvalidInput)
	ErrInvalidPrice       = fmt.Errorf("%w: estimated price must be positive", ErrInvalidInput)
	ErrInvalidTimer       = fmt.Errorf("%w: confirmation timer minutes out of range", ErrInvalidInput)
	ErrInvalidRequestData = fmt.Errorf("%w: service request", ErrInvalidInput)
	ErrInvalidAmount      = fmt.Errorf("%w: amount", ErrInvalidInput)
	ErrInvalidPayload     = fmt.Errorf("%w: payment payload", ErrInvalidInput)
)

// storageFailure keeps the store's error visible to errors.Is/As callers.
func storageFailure(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorageFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}
