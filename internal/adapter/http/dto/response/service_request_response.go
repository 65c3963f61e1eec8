package response

import (
	"time"

	"automarket/internal/domain/entities"
)

type LockResponse struct {
	Locked    bool       `json:"locked"`
	HolderID  string     `json:"holder_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Permanent bool       `json:"permanent"`
}

func FromLockState(s entities.LockState) LockResponse {
	return LockResponse{
		Locked:    s.Locked,
		HolderID:  s.HolderID,
		ExpiresAt: s.ExpiresAt,
		Permanent: s.Permanent,
	}
}

type ServiceRequestResponse struct {
	ID             string       `json:"id"`
	CustomerID     string       `json:"customer_id"`
	Vehicle        string       `json:"vehicle"`
	CategoryID     string       `json:"category_id"`
	Address        string       `json:"address,omitempty"`
	Zip            string       `json:"zip"`
	Status         string       `json:"status"`
	Lock           LockResponse `json:"lock"`
	PendingQuoteID string       `json:"pending_quote_id,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// FromServiceRequest reports the lock as observed at now, so a lapsed
// window reads as unlocked even before the sweep releases it.
func FromServiceRequest(r entities.ServiceRequest, now time.Time) ServiceRequestResponse {
	return ServiceRequestResponse{
		ID:             r.ID,
		CustomerID:     r.CustomerID,
		Vehicle:        r.Vehicle,
		CategoryID:     r.CategoryID,
		Address:        r.Address,
		Zip:            r.Zip,
		Status:         string(r.Status),
		Lock:           FromLockState(r.LockState(now)),
		PendingQuoteID: r.PendingQuoteID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func FromServiceRequests(items []entities.ServiceRequest, now time.Time) []ServiceRequestResponse {
	out := make([]ServiceRequestResponse, 0, len(items))
	for _, r := range items {
		out = append(out, FromServiceRequest(r, now))
	}
	return out
}

type DispatchResponse struct {
	Request      ServiceRequestResponse `json:"request"`
	LeadsCreated int                    `json:"leads_created"`
}
