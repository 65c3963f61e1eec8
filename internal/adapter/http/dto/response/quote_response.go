package response

import (
	"time"

	"automarket/internal/domain/entities"
)

type QuoteResponse struct {
	ID                         string     `json:"id"`
	RequestID                  string     `json:"request_id"`
	ProID                      string     `json:"pro_id"`
	EstimatedPrice             string     `json:"estimated_price"`
	Description                string     `json:"description,omitempty"`
	Status                     string     `json:"status"`
	ConfirmationTimerMinutes   int        `json:"confirmation_timer_minutes"`
	ConfirmationTimerExpiresAt *time.Time `json:"confirmation_timer_expires_at,omitempty"`
	// SecondsRemaining is an advisory countdown; the server decides expiry.
	SecondsRemaining int64      `json:"seconds_remaining"`
	SelectedAt       *time.Time `json:"selected_at,omitempty"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func FromQuote(q entities.Quote, now time.Time) QuoteResponse {
	return QuoteResponse{
		ID:                         q.ID,
		RequestID:                  q.RequestID,
		ProID:                      q.ProID,
		EstimatedPrice:             q.EstimatedPrice.StringFixed(2),
		Description:                q.Description,
		Status:                     string(q.Status),
		ConfirmationTimerMinutes:   q.ConfirmationTimerMinutes,
		ConfirmationTimerExpiresAt: q.ConfirmationTimerExpiresAt,
		SecondsRemaining:           int64(q.Remaining(now) / time.Second),
		SelectedAt:                 q.SelectedAt,
		ConfirmedAt:                q.ConfirmedAt,
		CreatedAt:                  q.CreatedAt,
		UpdatedAt:                  q.UpdatedAt,
	}
}

func FromQuotes(items []entities.Quote, now time.Time) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(items))
	for _, q := range items {
		out = append(out, FromQuote(q, now))
	}
	return out
}
