package entities

import "time"

type AppointmentStatus string

const (
	AppointmentStatusPendingConfirmation AppointmentStatus = "pending_confirmation"
	AppointmentStatusScheduled           AppointmentStatus = "scheduled"
	AppointmentStatusInProgress          AppointmentStatus = "in_progress"
	AppointmentStatusCompleted           AppointmentStatus = "completed"
	AppointmentStatusCancelled           AppointmentStatus = "cancelled"
	AppointmentStatusExpired             AppointmentStatus = "expired"
)

// Appointment is created when the customer selects a quote.
//
// Storage model (DynamoDB):
//   - PK: id
//
// We purposely use the quote id as the appointment id to guarantee one
// appointment per quote.
type Appointment struct {
	ID                    string            `json:"id"`
	RequestID             string            `json:"request_id"`
	QuoteID               string            `json:"quote_id"`
	CustomerID            string            `json:"customer_id"`
	ProID                 string            `json:"pro_id"`
	StartsAt              time.Time         `json:"starts_at"`
	Status                AppointmentStatus `json:"status"`
	ConfirmationExpiresAt time.Time         `json:"confirmation_expires_at"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

func (a Appointment) Terminal() bool {
	switch a.Status {
	case AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusExpired:
		return true
	}
	return false
}
