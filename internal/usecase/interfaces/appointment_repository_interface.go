package interfaces

import (
	"context"
	"time"

	"automarket/internal/domain/entities"
)

// IAppointmentRepository abstracts persistence for Appointment.
type IAppointmentRepository interface {
	GetByID(ctx context.Context, id string) (entities.Appointment, error)
	ListByPro(ctx context.Context, proID string) ([]entities.Appointment, error)
	ListByCustomer(ctx context.Context, customerID string) ([]entities.Appointment, error)
	Transition(ctx context.Context, id string, from entities.AppointmentStatus, to entities.AppointmentStatus, now time.Time) (entities.Appointment, error)
	// Close moves the appointment and its request to their terminal states together.
	Close(ctx context.Context, a entities.Appointment, from entities.AppointmentStatus, to entities.AppointmentStatus, requestTo entities.ServiceRequestStatus, now time.Time) (entities.Appointment, error)
}
