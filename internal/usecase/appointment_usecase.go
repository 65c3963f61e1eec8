package usecase

import (
	"context"
	"strings"
	"time"

	"automarket/internal/domain/entities"
	"automarket/internal/logger"
	"automarket/internal/usecase/interfaces"

	"github.com/sirupsen/logrus"
)

// IAppointmentUseCase drives an appointment after its quote was confirmed.
type IAppointmentUseCase interface {
	Get(ctx context.Context, actor entities.Actor, id string) (entities.Appointment, error)
	ListMine(ctx context.Context, actor entities.Actor) ([]entities.Appointment, error)
	Start(ctx context.Context, proID, id string) (entities.Appointment, error)
	Complete(ctx context.Context, proID, id string) (entities.Appointment, error)
	Cancel(ctx context.Context, actor entities.Actor, id string) (entities.Appointment, error)
}

type AppointmentUseCase struct {
	repo   interfaces.IAppointmentRepository
	notify notifier
	log    *logrus.Logger

	Now func() time.Time
}

var _ IAppointmentUseCase = (*AppointmentUseCase)(nil)

func NewAppointmentUseCase(
	repo interfaces.IAppointmentRepository,
	profiles interfaces.IProfileRepository,
	sink interfaces.INotifier,
	log *logrus.Logger,
) *AppointmentUseCase {
	log = logger.OrDiscard(log)
	return &AppointmentUseCase{
		repo:   repo,
		notify: notifier{profiles: profiles, sink: sink, log: log},
		log:    log,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

func (u *AppointmentUseCase) Get(ctx context.Context, actor entities.Actor, id string) (entities.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Appointment{}, ErrInvalidID
	}
	a, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Appointment{}, storageFailure(err)
	}
	if a.ID == "" || !canSee(actor, a) {
		return entities.Appointment{}, ErrAppointmentNotFound
	}
	return a, nil
}

func canSee(actor entities.Actor, a entities.Appointment) bool {
	switch actor.Role {
	case entities.RoleStaff:
		return true
	case entities.RolePro:
		return a.ProID == actor.ID
	case entities.RoleCustomer:
		return a.CustomerID == actor.ID
	}
	return false
}

func (u *AppointmentUseCase) ListMine(ctx context.Context, actor entities.Actor) ([]entities.Appointment, error) {
	if strings.TrimSpace(actor.ID) == "" {
		return nil, ErrInvalidID
	}
	var (
		items []entities.Appointment
		err   error
	)
	switch actor.Role {
	case entities.RolePro:
		items, err = u.repo.ListByPro(ctx, actor.ID)
	case entities.RoleCustomer:
		items, err = u.repo.ListByCustomer(ctx, actor.ID)
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, storageFailure(err)
	}
	return items, nil
}

func (u *AppointmentUseCase) Start(ctx context.Context, proID, id string) (entities.Appointment, error) {
	a, err := u.Get(ctx, entities.Actor{ID: proID, Role: entities.RolePro}, id)
	if err != nil {
		return entities.Appointment{}, err
	}
	started, err := u.repo.Transition(ctx, a.ID, entities.AppointmentStatusScheduled, entities.AppointmentStatusInProgress, u.Now())
	if err != nil {
		return entities.Appointment{}, u.rejection(err)
	}
	return started, nil
}

// Complete closes the appointment and marks its request completed together.
func (u *AppointmentUseCase) Complete(ctx context.Context, proID, id string) (entities.Appointment, error) {
	a, err := u.Get(ctx, entities.Actor{ID: proID, Role: entities.RolePro}, id)
	if err != nil {
		return entities.Appointment{}, err
	}
	done, err := u.repo.Close(ctx, a,
		entities.AppointmentStatusInProgress, entities.AppointmentStatusCompleted,
		entities.ServiceRequestStatusCompleted, u.Now())
	if err != nil {
		return entities.Appointment{}, u.rejection(err)
	}
	u.log.WithFields(logrus.Fields{"module": "appointment", "op": "complete", "appointment_id": a.ID, "request_id": a.RequestID}).Info("job completed")

	u.notify.send(ctx, a.CustomerID, entities.TemplateJobCompleted, map[string]string{
		"request_id":     a.RequestID,
		"appointment_id": a.ID,
	})
	return done, nil
}

// Cancel is allowed to either party. A pending appointment only cancels
// itself; the quote stays with the sweep. A scheduled one also cancels its
// request.
func (u *AppointmentUseCase) Cancel(ctx context.Context, actor entities.Actor, id string) (entities.Appointment, error) {
	if actor.Role != entities.RoleCustomer && actor.Role != entities.RolePro {
		return entities.Appointment{}, ErrForbidden
	}
	a, err := u.Get(ctx, actor, id)
	if err != nil {
		return entities.Appointment{}, err
	}

	now := u.Now()
	var cancelled entities.Appointment
	switch a.Status {
	case entities.AppointmentStatusPendingConfirmation:
		cancelled, err = u.repo.Transition(ctx, a.ID, a.Status, entities.AppointmentStatusCancelled, now)
	case entities.AppointmentStatusScheduled:
		cancelled, err = u.repo.Close(ctx, a, a.Status, entities.AppointmentStatusCancelled, entities.ServiceRequestStatusCancelled, now)
	default:
		return entities.Appointment{}, ErrAppointmentState
	}
	if err != nil {
		return entities.Appointment{}, u.rejection(err)
	}

	counterpart := a.ProID
	if actor.Role == entities.RolePro {
		counterpart = a.CustomerID
	}
	u.notify.send(ctx, counterpart, entities.TemplateJobCancelled, map[string]string{
		"request_id":     a.RequestID,
		"appointment_id": a.ID,
		"cancelled_by":   string(actor.Role),
	})
	return cancelled, nil
}

func (u *AppointmentUseCase) rejection(err error) error {
	if interfaces.FailedEntity(err) != "" {
		return ErrAppointmentState
	}
	return storageFailure(err)
}
