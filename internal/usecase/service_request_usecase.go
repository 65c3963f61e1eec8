package usecase

import (
	"context"
	"strings"
	"time"

	"automarket/internal/domain/entities"
	"automarket/internal/logger"
	"automarket/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// IServiceRequestUseCase covers the request store and the lead dispatcher.
type IServiceRequestUseCase interface {
	Create(ctx context.Context, customerID string, in CreateServiceRequestInput) (entities.ServiceRequest, error)
	Get(ctx context.Context, actor entities.Actor, id string) (entities.ServiceRequest, error)
	ListMine(ctx context.Context, customerID string) ([]entities.ServiceRequest, error)
	Dispatch(ctx context.Context, actor entities.Actor, id string) (DispatchResult, error)
	Delete(ctx context.Context, customerID, id string) error
}

type CreateServiceRequestInput struct {
	Vehicle    string
	CategoryID string
	Address    string
	Zip        string
}

type DispatchResult struct {
	Request                entities.ServiceRequest
	LeadsCreated           int
	NotificationsAttempted int
}

type ServiceRequestUseCase struct {
	requests interfaces.IServiceRequestRepository
	leads    interfaces.ILeadRepository
	profiles interfaces.IProfileRepository
	notify   notifier
	log      *logrus.Logger

	Now func() time.Time
}

var _ IServiceRequestUseCase = (*ServiceRequestUseCase)(nil)

func NewServiceRequestUseCase(
	requests interfaces.IServiceRequestRepository,
	leads interfaces.ILeadRepository,
	profiles interfaces.IProfileRepository,
	sink interfaces.INotifier,
	log *logrus.Logger,
) *ServiceRequestUseCase {
	log = logger.OrDiscard(log)
	return &ServiceRequestUseCase{
		requests: requests,
		leads:    leads,
		profiles: profiles,
		notify:   notifier{profiles: profiles, sink: sink, log: log},
		log:      log,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

func (u *ServiceRequestUseCase) Create(ctx context.Context, customerID string, in CreateServiceRequestInput) (entities.ServiceRequest, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return entities.ServiceRequest{}, ErrInvalidID
	}
	in.Vehicle = strings.TrimSpace(in.Vehicle)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	in.Address = strings.TrimSpace(in.Address)
	in.Zip = strings.TrimSpace(in.Zip)
	if in.Vehicle == "" || in.CategoryID == "" || in.Zip == "" {
		return entities.ServiceRequest{}, ErrInvalidRequestData
	}

	now := u.Now()
	r := entities.ServiceRequest{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Vehicle:    in.Vehicle,
		CategoryID: in.CategoryID,
		Address:    in.Address,
		Zip:        in.Zip,
		Status:     entities.ServiceRequestStatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	created, err := u.requests.Create(ctx, r)
	if err != nil {
		return entities.ServiceRequest{}, storageFailure(err)
	}
	return created, nil
}

// Get is allowed to the owner, staff, and professionals holding a lead.
func (u *ServiceRequestUseCase) Get(ctx context.Context, actor entities.Actor, id string) (entities.ServiceRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.ServiceRequest{}, ErrInvalidID
	}
	r, err := u.requests.GetByID(ctx, id)
	if err != nil {
		return entities.ServiceRequest{}, storageFailure(err)
	}
	if r.ID == "" {
		return entities.ServiceRequest{}, ErrServiceRequestNotFound
	}
	ok, err := visibleTo(ctx, u.leads, actor, r)
	if err != nil {
		return entities.ServiceRequest{}, storageFailure(err)
	}
	if !ok {
		return entities.ServiceRequest{}, ErrServiceRequestNotFound
	}
	return r, nil
}

// visibleTo reports whether actor may read r: staff, the owning customer, or
// a pro the request was dispatched to. Everyone else is told it does not
// exist.
func visibleTo(ctx context.Context, leads interfaces.ILeadRepository, actor entities.Actor, r entities.ServiceRequest) (bool, error) {
	switch actor.Role {
	case entities.RoleStaff:
		return true, nil
	case entities.RoleCustomer:
		return r.CustomerID == actor.ID, nil
	case entities.RolePro:
		lead, err := leads.GetByID(ctx, entities.LeadID(r.ID, actor.ID))
		if err != nil {
			return false, err
		}
		return lead.ID != "", nil
	}
	return false, nil
}

func (u *ServiceRequestUseCase) ListMine(ctx context.Context, customerID string) ([]entities.ServiceRequest, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, ErrInvalidID
	}
	items, err := u.requests.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, storageFailure(err)
	}
	return items, nil
}

// Dispatch offers the request to every eligible professional. Running it
// again only offers the request to professionals that became eligible since.
func (u *ServiceRequestUseCase) Dispatch(ctx context.Context, actor entities.Actor, id string) (DispatchResult, error) {
	r, err := u.Get(ctx, actor, id)
	if err != nil {
		return DispatchResult{}, err
	}
	if actor.Role != entities.RoleStaff && r.CustomerID != actor.ID {
		return DispatchResult{}, ErrForbidden
	}
	if r.Status != entities.ServiceRequestStatusOpen && r.Status != entities.ServiceRequestStatusDispatched {
		return DispatchResult{}, ErrRequestClosed
	}
	entry := u.log.WithFields(logrus.Fields{"module": "dispatcher", "op": "dispatch", "request_id": r.ID})

	pros, err := u.profiles.ListEligiblePros(ctx, r.CategoryID, r.Zip)
	if err != nil {
		return DispatchResult{}, storageFailure(err)
	}

	now := u.Now()
	batch := make([]entities.Lead, 0, len(pros))
	for _, p := range pros {
		batch = append(batch, entities.Lead{
			ID:        entities.LeadID(r.ID, p.ID),
			RequestID: r.ID,
			ProID:     p.ID,
			Status:    entities.LeadStatusNew,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	created, err := u.leads.CreateBatch(ctx, batch)
	if err != nil {
		entry.WithError(err).Error("lead fan-out failed")
		return DispatchResult{}, storageFailure(err)
	}

	updated, err := u.requests.TransitionStatus(ctx, r.ID,
		[]entities.ServiceRequestStatus{entities.ServiceRequestStatusOpen, entities.ServiceRequestStatusDispatched},
		entities.ServiceRequestStatusDispatched, now)
	if err != nil {
		if interfaces.FailedEntity(err) != "" {
			// Acquired in between: the leads stand, the request keeps its newer status.
			current, gerr := u.requests.GetByID(ctx, r.ID)
			if gerr != nil {
				return DispatchResult{}, storageFailure(gerr)
			}
			updated = current
		} else {
			return DispatchResult{}, storageFailure(err)
		}
	}

	res := DispatchResult{Request: updated, LeadsCreated: len(created)}
	for _, l := range created {
		if u.notify.send(ctx, l.ProID, entities.TemplateLeadOffered, map[string]string{
			"request_id":  r.ID,
			"lead_id":     l.ID,
			"category_id": r.CategoryID,
			"zip":         r.Zip,
		}) {
			res.NotificationsAttempted++
		}
	}
	entry.WithFields(logrus.Fields{"eligible": len(pros), "created": len(created)}).Info("request dispatched")
	return res, nil
}

// Delete removes a request owned by customerID once it is completed.
func (u *ServiceRequestUseCase) Delete(ctx context.Context, customerID, id string) error {
	customerID = strings.TrimSpace(customerID)
	id = strings.TrimSpace(id)
	if customerID == "" || id == "" {
		return ErrInvalidID
	}
	err := u.requests.DeleteCompleted(ctx, id, customerID)
	if err == nil {
		return nil
	}
	if interfaces.FailedEntity(err) == "" {
		return storageFailure(err)
	}

	r, gerr := u.requests.GetByID(ctx, id)
	if gerr != nil {
		return storageFailure(gerr)
	}
	if r.ID == "" || r.CustomerID != customerID {
		return ErrServiceRequestNotFound
	}
	return ErrRequestNotComplete
}
