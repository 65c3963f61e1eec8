package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus represents the confirmation handshake of a quote.
//
//	submitted -> pending_confirmation (customer selects)
//	pending_confirmation -> confirmed (pro confirms before the timer lapses)
//	pending_confirmation -> expired (sweep, after the timer lapsed)
//	submitted -> declined (pro withdraws)
type QuoteStatus string

const (
	QuoteStatusSubmitted           QuoteStatus = "submitted"
	QuoteStatusPendingConfirmation QuoteStatus = "pending_confirmation"
	QuoteStatusConfirmed           QuoteStatus = "confirmed"
	QuoteStatusExpired             QuoteStatus = "expired"
	QuoteStatusDeclined            QuoteStatus = "declined"
)

const (
	DefaultConfirmationTimerMinutes = 30
	MaxConfirmationTimerMinutes     = 24 * 60
)

// Quote is a professional's priced offer against a ServiceRequest.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI (request_id-index): request_id
//   - GSI (pro_id-index): pro_id
//   - GSI (status-confirmation_timer_expires_at-index): status + confirmation_timer_expires_at (sweep)
type Quote struct {
	ID                         string          `json:"id"`
	RequestID                  string          `json:"request_id"`
	ProID                      string          `json:"pro_id"`
	EstimatedPrice             decimal.Decimal `json:"estimated_price"`
	Description                string          `json:"description"`
	Status                     QuoteStatus     `json:"status"`
	ConfirmationTimerMinutes   int             `json:"confirmation_timer_minutes"`
	ConfirmationTimerExpiresAt *time.Time      `json:"confirmation_timer_expires_at,omitempty"`
	SelectedAt                 *time.Time      `json:"selected_at,omitempty"`
	ConfirmedAt                *time.Time      `json:"confirmed_at,omitempty"`
	CreatedAt                  time.Time       `json:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at"`
}

// ConfirmationWindow is the configured timer as a duration.
func (q Quote) ConfirmationWindow() time.Duration {
	return time.Duration(q.ConfirmationTimerMinutes) * time.Minute
}

// Remaining is the advisory countdown shown to clients. Authoritative
// expiration is decided by the store conditions, never by this value.
func (q Quote) Remaining(now time.Time) time.Duration {
	if q.Status != QuoteStatusPendingConfirmation || q.ConfirmationTimerExpiresAt == nil {
		return 0
	}
	d := q.ConfirmationTimerExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Lapsed reports whether a pending quote's timer has run out at now.
func (q Quote) Lapsed(now time.Time) bool {
	return q.Status == QuoteStatusPendingConfirmation &&
		q.ConfirmationTimerExpiresAt != nil &&
		!now.Before(*q.ConfirmationTimerExpiresAt)
}
