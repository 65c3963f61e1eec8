package entities

import "time"

// ServiceRequestStatus represents the lifecycle of a customer's service request.
//
// Domain notes:
//   - open -> dispatched when leads are fanned out to professionals.
//   - dispatched|accepted -> accepted whenever a professional acquires the job lock.
//   - accepted -> scheduled once a selected quote is confirmed (the lock becomes permanent).
//   - scheduled -> completed|cancelled through the appointment.

type ServiceRequestStatus string

const (
	ServiceRequestStatusOpen       ServiceRequestStatus = "open"
	ServiceRequestStatusDispatched ServiceRequestStatus = "dispatched"
	ServiceRequestStatusAccepted   ServiceRequestStatus = "accepted"
	ServiceRequestStatusScheduled  ServiceRequestStatus = "scheduled"
	ServiceRequestStatusCompleted  ServiceRequestStatus = "completed"
	ServiceRequestStatusCancelled  ServiceRequestStatus = "cancelled"
)

// LockDuration is the default job lock window granted on acquire.
const LockDuration = 24 * time.Hour

// ServiceRequest is a customer's request for an automotive service.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI (customer_id-index): customer_id
//   - GSI (status-accept_expires_at-index): status + accept_expires_at (lapsed lock release)
//
// Lock fields:
//   - AcceptedProID/AcceptExpiresAt encode the job lock. A nil AcceptExpiresAt with a
//     non-empty AcceptedProID means the job is fully accepted (quote confirmed).
//   - PendingQuoteID is set while a quote awaits professional confirmation.
type ServiceRequest struct {
	ID              string               `json:"id"`
	CustomerID      string               `json:"customer_id"`
	Vehicle         string               `json:"vehicle"`
	CategoryID      string               `json:"category_id"`
	Address         string               `json:"address"`
	Zip             string               `json:"zip"`
	Status          ServiceRequestStatus `json:"status"`
	AcceptedProID   string               `json:"accepted_pro_id,omitempty"`
	AcceptExpiresAt *time.Time           `json:"accept_expires_at,omitempty"`
	PendingQuoteID  string               `json:"pending_quote_id,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// LockState is the job lock as observed at a given instant.
type LockState struct {
	Locked    bool       `json:"locked"`
	HolderID  string     `json:"holder_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Permanent bool       `json:"permanent"`
}

// LockState is the only place the expiry rule is evaluated in memory; the
// stores evaluate the same rule inside their conditional writes.
func (r ServiceRequest) LockState(now time.Time) LockState {
	if r.AcceptedProID == "" {
		return LockState{}
	}
	if r.AcceptExpiresAt == nil {
		return LockState{Locked: true, HolderID: r.AcceptedProID, Permanent: true}
	}
	if !now.Before(*r.AcceptExpiresAt) {
		return LockState{}
	}
	exp := *r.AcceptExpiresAt
	return LockState{Locked: true, HolderID: r.AcceptedProID, ExpiresAt: &exp}
}

// LockedByOther reports whether a professional other than proID holds the lock.
func (r ServiceRequest) LockedByOther(proID string, now time.Time) bool {
	s := r.LockState(now)
	return s.Locked && s.HolderID != proID
}

// Lockable reports whether the request status still admits a lock acquisition.
func (r ServiceRequest) Lockable() bool {
	switch r.Status {
	case ServiceRequestStatusOpen, ServiceRequestStatusDispatched, ServiceRequestStatusAccepted:
		return true
	}
	return false
}

// LockableStatuses are the statuses in which Acquire may succeed.
func LockableStatuses() []ServiceRequestStatus {
	return []ServiceRequestStatus{
		ServiceRequestStatusOpen,
		ServiceRequestStatusDispatched,
		ServiceRequestStatusAccepted,
	}
}
