package response

import (
	"time"

	"automarket/internal/domain/entities"
)

type AppointmentResponse struct {
	ID                    string    `json:"id"`
	RequestID             string    `json:"request_id"`
	QuoteID               string    `json:"quote_id"`
	CustomerID            string    `json:"customer_id"`
	ProID                 string    `json:"pro_id"`
	StartsAt              time.Time `json:"starts_at"`
	Status                string    `json:"status"`
	ConfirmationExpiresAt time.Time `json:"confirmation_expires_at"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func FromAppointment(a entities.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:                    a.ID,
		RequestID:             a.RequestID,
		QuoteID:               a.QuoteID,
		CustomerID:            a.CustomerID,
		ProID:                 a.ProID,
		StartsAt:              a.StartsAt,
		Status:                string(a.Status),
		ConfirmationExpiresAt: a.ConfirmationExpiresAt,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

func FromAppointments(items []entities.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, FromAppointment(a))
	}
	return out
}
