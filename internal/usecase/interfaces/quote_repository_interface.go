package interfaces

import (
	"context"
	"time"

	"automarket/internal/domain/entities"
)

// SelectQuoteCommand moves a submitted quote to pending_confirmation and
// creates its appointment and referral fee, guarded by the request's
// pending_quote_id so only one quote per request is in flight. The quoting
// pro must still hold a live lock at Now (accept_expires_at > Now).
type SelectQuoteCommand struct {
	QuoteID     string
	RequestID   string
	CustomerID  string
	ProID       string
	Now         time.Time
	ExpiresAt   time.Time
	Appointment entities.Appointment
	Fee         entities.ReferralFee
}

// ConfirmQuoteCommand only applies while Now is strictly before the quote's
// confirmation_timer_expires_at.
type ConfirmQuoteCommand struct {
	QuoteID   string
	RequestID string
	ProID     string
	Now       time.Time
}

// IQuoteRepository abstracts persistence for Quote and owns the multi-entity
// transitions (select, confirm, expire) so each is one atomic unit.
type IQuoteRepository interface {
	Create(ctx context.Context, q entities.Quote, now time.Time) (entities.Quote, error)
	GetByID(ctx context.Context, id string) (entities.Quote, error)
	ListByRequest(ctx context.Context, requestID string) ([]entities.Quote, error)
	ListByPro(ctx context.Context, proID string) ([]entities.Quote, error)
	Select(ctx context.Context, cmd SelectQuoteCommand) (entities.Quote, error)
	Confirm(ctx context.Context, cmd ConfirmQuoteCommand) (entities.Quote, error)
	Decline(ctx context.Context, id, proID string, now time.Time) (entities.Quote, error)
	ListLapsed(ctx context.Context, now time.Time, limit int) ([]entities.Quote, error)
	// ListAwaitingConfirmation returns every pending_confirmation quote,
	// running or lapsed, soonest expiry first.
	ListAwaitingConfirmation(ctx context.Context) ([]entities.Quote, error)
	// Expire reports false when the quote was no longer pending and lapsed.
	Expire(ctx context.Context, q entities.Quote, now time.Time) (bool, error)
}
