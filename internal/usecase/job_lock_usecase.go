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

// IJobLockUseCase is the only entry point for job lock reads and writes.
type IJobLockUseCase interface {
	Acquire(ctx context.Context, requestID, proID string) (entities.ServiceRequest, error)
	Decline(ctx context.Context, leadID, proID string) (entities.Lead, error)
	IsLocked(ctx context.Context, requestID string) (entities.LockState, error)
	LockStatus(ctx context.Context, actor entities.Actor, requestID string) (entities.LockState, error)
	ListLeads(ctx context.Context, proID string) ([]LeadView, error)
}

// LeadView is a lead as seen by its professional.
type LeadView struct {
	Lead          entities.Lead
	Request       entities.ServiceRequest
	LockedByOther bool
}

type JobLockUseCase struct {
	requests     interfaces.IServiceRequestRepository
	leads        interfaces.ILeadRepository
	notify       notifier
	log          *logrus.Logger
	lockDuration time.Duration

	Now func() time.Time
}

var _ IJobLockUseCase = (*JobLockUseCase)(nil)

func NewJobLockUseCase(
	requests interfaces.IServiceRequestRepository,
	leads interfaces.ILeadRepository,
	profiles interfaces.IProfileRepository,
	sink interfaces.INotifier,
	log *logrus.Logger,
	lockDuration time.Duration,
) *JobLockUseCase {
	log = logger.OrDiscard(log)
	if lockDuration <= 0 {
		lockDuration = entities.LockDuration
	}
	return &JobLockUseCase{
		requests:     requests,
		leads:        leads,
		notify:       notifier{profiles: profiles, sink: sink, log: log},
		log:          log,
		lockDuration: lockDuration,
		Now:          func() time.Time { return time.Now().UTC() },
	}
}

// Acquire claims the request for proID with one conditional write. When the
// write is rejected the current state is read only to explain the rejection.
func (u *JobLockUseCase) Acquire(ctx context.Context, requestID, proID string) (entities.ServiceRequest, error) {
	requestID = strings.TrimSpace(requestID)
	proID = strings.TrimSpace(proID)
	if requestID == "" || proID == "" {
		return entities.ServiceRequest{}, ErrInvalidID
	}
	entry := u.log.WithFields(logrus.Fields{"module": "job_lock", "op": "acquire", "request_id": requestID, "pro_id": proID})

	now := u.Now()
	locked, err := u.requests.AcquireLock(ctx, interfaces.AcquireLockCommand{
		RequestID: requestID,
		ProID:     proID,
		LeadID:    entities.LeadID(requestID, proID),
		Now:       now,
		ExpiresAt: now.Add(u.lockDuration),
	})
	if err != nil {
		if entity := interfaces.FailedEntity(err); entity != "" {
			current, cerr := u.explainAcquireRejection(ctx, entity, requestID, proID, now)
			entry.WithField("failed_on", entity).WithError(cerr).Info("acquire rejected")
			return current, cerr
		}
		entry.WithError(err).Error("acquire failed")
		return entities.ServiceRequest{}, storageFailure(err)
	}
	entry.WithField("accept_expires_at", locked.AcceptExpiresAt).Info("job lock acquired")

	u.notify.send(ctx, locked.CustomerID, entities.TemplateJobAccepted, map[string]string{
		"request_id": locked.ID,
		"pro_id":     proID,
	})
	return locked, nil
}

func (u *JobLockUseCase) explainAcquireRejection(ctx context.Context, entity, requestID, proID string, now time.Time) (entities.ServiceRequest, error) {
	if entity == interfaces.EntityLead {
		lead, err := u.leads.GetByID(ctx, entities.LeadID(requestID, proID))
		if err != nil {
			return entities.ServiceRequest{}, storageFailure(err)
		}
		if lead.ID == "" || lead.ProID != proID {
			return entities.ServiceRequest{}, ErrLeadNotFound
		}
		if lead.Status == entities.LeadStatusDeclined {
			return entities.ServiceRequest{}, ErrLeadDeclined
		}
		// The lead is still claimable, so the write lost to a concurrent
		// transaction; the request state decides.
	}

	req, err := u.requests.GetByID(ctx, requestID)
	if err != nil {
		return entities.ServiceRequest{}, storageFailure(err)
	}
	if req.ID == "" {
		return entities.ServiceRequest{}, ErrServiceRequestNotFound
	}
	state := req.LockState(now)
	if state.Locked && state.HolderID == proID {
		// Already ours; acquiring again does not extend the window.
		return req, nil
	}
	if state.Locked || req.PendingQuoteID != "" {
		return entities.ServiceRequest{}, ErrLockConflict
	}
	if !req.Lockable() {
		return entities.ServiceRequest{}, ErrRequestClosed
	}
	return entities.ServiceRequest{}, ErrLockConflict
}

func (u *JobLockUseCase) Decline(ctx context.Context, leadID, proID string) (entities.Lead, error) {
	leadID = strings.TrimSpace(leadID)
	proID = strings.TrimSpace(proID)
	if leadID == "" || proID == "" {
		return entities.Lead{}, ErrInvalidID
	}

	declined, err := u.leads.Decline(ctx, leadID, proID, u.Now())
	if err == nil {
		u.log.WithFields(logrus.Fields{"module": "job_lock", "op": "decline", "lead_id": leadID, "pro_id": proID}).Info("lead declined")
		return declined, nil
	}
	if interfaces.FailedEntity(err) == "" {
		return entities.Lead{}, storageFailure(err)
	}

	lead, gerr := u.leads.GetByID(ctx, leadID)
	if gerr != nil {
		return entities.Lead{}, storageFailure(gerr)
	}
	switch {
	case lead.ID == "" || lead.ProID != proID:
		return entities.Lead{}, ErrLeadNotFound
	case lead.Status == entities.LeadStatusDeclined:
		return lead, nil
	default:
		return entities.Lead{}, ErrInvalidTransition
	}
}

func (u *JobLockUseCase) IsLocked(ctx context.Context, requestID string) (entities.LockState, error) {
	req, err := u.load(ctx, requestID)
	if err != nil {
		return entities.LockState{}, err
	}
	return req.LockState(u.Now()), nil
}

// LockStatus is IsLocked for callers outside the service. Requests the actor
// cannot see read as not found.
func (u *JobLockUseCase) LockStatus(ctx context.Context, actor entities.Actor, requestID string) (entities.LockState, error) {
	req, err := u.load(ctx, requestID)
	if err != nil {
		return entities.LockState{}, err
	}
	ok, err := visibleTo(ctx, u.leads, actor, req)
	if err != nil {
		return entities.LockState{}, storageFailure(err)
	}
	if !ok {
		return entities.LockState{}, ErrServiceRequestNotFound
	}
	return req.LockState(u.Now()), nil
}

func (u *JobLockUseCase) load(ctx context.Context, requestID string) (entities.ServiceRequest, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return entities.ServiceRequest{}, ErrInvalidID
	}
	req, err := u.requests.GetByID(ctx, requestID)
	if err != nil {
		return entities.ServiceRequest{}, storageFailure(err)
	}
	if req.ID == "" {
		return entities.ServiceRequest{}, ErrServiceRequestNotFound
	}
	return req, nil
}

func (u *JobLockUseCase) ListLeads(ctx context.Context, proID string) ([]LeadView, error) {
	proID = strings.TrimSpace(proID)
	if proID == "" {
		return nil, ErrInvalidID
	}
	leads, err := u.leads.ListByPro(ctx, proID)
	if err != nil {
		return nil, storageFailure(err)
	}

	now := u.Now()
	views := make([]LeadView, 0, len(leads))
	for _, l := range leads {
		req, err := u.requests.GetByID(ctx, l.RequestID)
		if err != nil {
			return nil, storageFailure(err)
		}
		if req.ID == "" {
			continue
		}
		views = append(views, LeadView{Lead: l, Request: req, LockedByOther: req.LockedByOther(proID, now)})
	}
	return views, nil
}
