package request

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidQuotePrice = errors.New("invalid quote price")

type SubmitQuoteRequest struct {
	RequestID                string          `json:"request_id" binding:"required"`
	EstimatedPrice           decimal.Decimal `json:"estimated_price"`
	Description              string          `json:"description"`
	ConfirmationTimerMinutes int             `json:"confirmation_timer_minutes"`
}

func (r SubmitQuoteRequest) ResolveRequestID() string {
	return strings.TrimSpace(r.RequestID)
}

// ResolvePrice accepts the price as a JSON number or string; it must be positive.
func (r SubmitQuoteRequest) ResolvePrice() (decimal.Decimal, error) {
	if !r.EstimatedPrice.IsPositive() {
		return decimal.Zero, ErrInvalidQuotePrice
	}
	return r.EstimatedPrice, nil
}

// SelectQuoteRequest is optional; an empty body keeps the default start.
type SelectQuoteRequest struct {
	StartsAt *time.Time `json:"starts_at"`
}

func (r SelectQuoteRequest) ResolveStartsAt() time.Time {
	if r.StartsAt == nil {
		return time.Time{}
	}
	return r.StartsAt.UTC()
}
