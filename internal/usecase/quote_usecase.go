package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"automarket/internal/domain/entities"
	"automarket/internal/logger"
	"automarket/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// IQuoteUseCase exposes the quote-selection handshake.
//
//   - pro submits a price while holding the job lock => Submit()
//   - customer selects one quote, starting the confirmation timer => Select()
//   - pro confirms before the timer lapses => Confirm()
//   - pro withdraws an unselected quote => Decline()
type IQuoteUseCase interface {
	Submit(ctx context.Context, proID string, in SubmitQuoteInput) (entities.Quote, error)
	Select(ctx context.Context, customerID, quoteID string, in SelectQuoteInput) (entities.Quote, error)
	Confirm(ctx context.Context, proID, quoteID string) (entities.Quote, error)
	Decline(ctx context.Context, proID, quoteID string) (entities.Quote, error)
	Get(ctx context.Context, actor entities.Actor, quoteID string) (entities.Quote, error)
	ListByRequest(ctx context.Context, actor entities.Actor, requestID string) ([]entities.Quote, error)
	ListMine(ctx context.Context, proID string) ([]entities.Quote, error)
}

type SubmitQuoteInput struct {
	RequestID                string
	EstimatedPrice           decimal.Decimal
	Description              string
	ConfirmationTimerMinutes int
}

type SelectQuoteInput struct {
	// StartsAt is the customer's preferred appointment start; zero means one
	// lock window after selection.
	StartsAt time.Time
}

type QuoteUseCase struct {
	quotes       interfaces.IQuoteRepository
	requests     interfaces.IServiceRequestRepository
	notify       notifier
	log          *logrus.Logger
	fees         FeePolicy
	defaultTimer int

	Now func() time.Time
}

var _ IQuoteUseCase = (*QuoteUseCase)(nil)

func NewQuoteUseCase(
	quotes interfaces.IQuoteRepository,
	requests interfaces.IServiceRequestRepository,
	profiles interfaces.IProfileRepository,
	sink interfaces.INotifier,
	log *logrus.Logger,
	fees FeePolicy,
	defaultTimerMinutes int,
) *QuoteUseCase {
	log = logger.OrDiscard(log)
	if defaultTimerMinutes <= 0 {
		defaultTimerMinutes = entities.DefaultConfirmationTimerMinutes
	}
	return &QuoteUseCase{
		quotes:       quotes,
		requests:     requests,
		notify:       notifier{profiles: profiles, sink: sink, log: log},
		log:          log,
		fees:         fees,
		defaultTimer: defaultTimerMinutes,
		Now:          func() time.Time { return time.Now().UTC() },
	}
}

func (u *QuoteUseCase) Submit(ctx context.Context, proID string, in SubmitQuoteInput) (entities.Quote, error) {
	proID = strings.TrimSpace(proID)
	in.RequestID = strings.TrimSpace(in.RequestID)
	if proID == "" || in.RequestID == "" {
		return entities.Quote{}, ErrInvalidID
	}
	if !in.EstimatedPrice.IsPositive() {
		return entities.Quote{}, ErrInvalidPrice
	}
	minutes := in.ConfirmationTimerMinutes
	if minutes == 0 {
		minutes = u.defaultTimer
	}
	if minutes < 1 || minutes > entities.MaxConfirmationTimerMinutes {
		return entities.Quote{}, ErrInvalidTimer
	}

	now := u.Now()
	q := entities.Quote{
		ID:                       uuid.NewString(),
		RequestID:                in.RequestID,
		ProID:                    proID,
		EstimatedPrice:           in.EstimatedPrice.Round(2),
		Description:              strings.TrimSpace(in.Description),
		Status:                   entities.QuoteStatusSubmitted,
		ConfirmationTimerMinutes: minutes,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	created, err := u.quotes.Create(ctx, q, now)
	if err != nil {
		if interfaces.FailedEntity(err) == "" {
			return entities.Quote{}, storageFailure(err)
		}
		req, gerr := u.requests.GetByID(ctx, in.RequestID)
		if gerr != nil {
			return entities.Quote{}, storageFailure(gerr)
		}
		if req.ID == "" {
			return entities.Quote{}, ErrServiceRequestNotFound
		}
		if req.LockedByOther(proID, now) {
			return entities.Quote{}, ErrLockConflict
		}
		return entities.Quote{}, ErrLockNotHeld
	}

	if req, err := u.requests.GetByID(ctx, created.RequestID); err == nil && req.ID != "" {
		u.notify.send(ctx, req.CustomerID, entities.TemplateQuoteSubmitted, map[string]string{
			"request_id":      req.ID,
			"quote_id":        created.ID,
			"estimated_price": created.EstimatedPrice.StringFixed(2),
		})
	}
	return created, nil
}

// Select starts the confirmation window for quoteID. Exactly one quote per
// request may be pending confirmation; the store guard decides, not this read.
func (u *QuoteUseCase) Select(ctx context.Context, customerID, quoteID string, in SelectQuoteInput) (entities.Quote, error) {
	customerID = strings.TrimSpace(customerID)
	quoteID = strings.TrimSpace(quoteID)
	if customerID == "" || quoteID == "" {
		return entities.Quote{}, ErrInvalidID
	}
	q, req, err := u.loadForCustomer(ctx, customerID, quoteID)
	if err != nil {
		return entities.Quote{}, err
	}
	entry := u.log.WithFields(logrus.Fields{"module": "quote", "op": "select", "quote_id": q.ID, "request_id": req.ID})

	now := u.Now()
	expiresAt := now.Add(q.ConfirmationWindow())
	startsAt := in.StartsAt.UTC()
	if startsAt.IsZero() {
		startsAt = now.Add(entities.LockDuration)
	}
	if !startsAt.After(now) {
		return entities.Quote{}, ErrInvalidRequestData
	}

	selected, err := u.quotes.Select(ctx, interfaces.SelectQuoteCommand{
		QuoteID:    q.ID,
		RequestID:  req.ID,
		CustomerID: customerID,
		ProID:      q.ProID,
		Now:        now,
		ExpiresAt:  expiresAt,
		Appointment: entities.Appointment{
			ID:                    q.ID,
			RequestID:             req.ID,
			QuoteID:               q.ID,
			CustomerID:            customerID,
			ProID:                 q.ProID,
			StartsAt:              startsAt,
			Status:                entities.AppointmentStatusPendingConfirmation,
			ConfirmationExpiresAt: expiresAt,
			CreatedAt:             now,
			UpdatedAt:             now,
		},
		Fee: entities.ReferralFee{
			ID:        q.ID,
			QuoteID:   q.ID,
			RequestID: req.ID,
			ProID:     q.ProID,
			Amount:    u.fees.Amount(q.EstimatedPrice),
			Status:    entities.ReferralFeeStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		},
	})
	if err != nil {
		entity := interfaces.FailedEntity(err)
		if entity == "" {
			entry.WithError(err).Error("select failed")
			return entities.Quote{}, storageFailure(err)
		}
		cerr := u.explainSelectRejection(ctx, entity, q, customerID, now)
		entry.WithField("failed_on", entity).WithError(cerr).Info("select rejected")
		return entities.Quote{}, cerr
	}
	entry.WithField("confirmation_timer_expires_at", expiresAt).Info("quote selected")

	u.notify.send(ctx, selected.ProID, entities.TemplateQuoteSelected, map[string]string{
		"request_id": req.ID,
		"quote_id":   selected.ID,
		"expires_at": expiresAt.Format(time.RFC3339),
		"minutes":    strconv.Itoa(selected.ConfirmationTimerMinutes),
	})
	return selected, nil
}

func (u *QuoteUseCase) explainSelectRejection(ctx context.Context, entity string, q entities.Quote, customerID string, now time.Time) error {
	if entity == interfaces.EntityQuote {
		current, err := u.quotes.GetByID(ctx, q.ID)
		if err != nil {
			return storageFailure(err)
		}
		if current.ID == "" {
			return ErrQuoteNotFound
		}
		return ErrQuoteNotSelectable
	}

	req, err := u.requests.GetByID(ctx, q.RequestID)
	if err != nil {
		return storageFailure(err)
	}
	switch {
	case req.ID == "" || req.CustomerID != customerID:
		return ErrQuoteNotFound
	case req.PendingQuoteID != "" && req.PendingQuoteID != q.ID:
		return ErrQuoteInFlight
	case req.PendingQuoteID == q.ID:
		return ErrQuoteNotSelectable
	case req.Lockable() && req.LockState(now).HolderID != q.ProID:
		// Lapsed or released: the quote only becomes selectable again if its
		// pro re-acquires the job.
		return ErrLockNotHeld
	default:
		return ErrRequestClosed
	}
}

// Confirm succeeds only while now is strictly before the confirmation expiry.
func (u *QuoteUseCase) Confirm(ctx context.Context, proID, quoteID string) (entities.Quote, error) {
	proID = strings.TrimSpace(proID)
	quoteID = strings.TrimSpace(quoteID)
	if proID == "" || quoteID == "" {
		return entities.Quote{}, ErrInvalidID
	}
	q, err := u.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return entities.Quote{}, storageFailure(err)
	}
	if q.ID == "" || q.ProID != proID {
		return entities.Quote{}, ErrQuoteNotFound
	}
	entry := u.log.WithFields(logrus.Fields{"module": "quote", "op": "confirm", "quote_id": q.ID, "request_id": q.RequestID})

	now := u.Now()
	confirmed, err := u.quotes.Confirm(ctx, interfaces.ConfirmQuoteCommand{
		QuoteID:   q.ID,
		RequestID: q.RequestID,
		ProID:     proID,
		Now:       now,
	})
	if err != nil {
		if interfaces.FailedEntity(err) == "" {
			entry.WithError(err).Error("confirm failed")
			return entities.Quote{}, storageFailure(err)
		}
		current, gerr := u.quotes.GetByID(ctx, q.ID)
		if gerr != nil {
			return entities.Quote{}, storageFailure(gerr)
		}
		switch {
		case current.Status == entities.QuoteStatusConfirmed:
			return current, nil
		case current.Status == entities.QuoteStatusExpired || current.Lapsed(now):
			entry.Info("confirm rejected: quote expired")
			return entities.Quote{}, ErrQuoteExpired
		default:
			return entities.Quote{}, ErrInvalidTransition
		}
	}
	entry.Info("quote confirmed")

	if req, err := u.requests.GetByID(ctx, confirmed.RequestID); err == nil && req.ID != "" {
		u.notify.send(ctx, req.CustomerID, entities.TemplateQuoteConfirmed, map[string]string{
			"request_id": req.ID,
			"quote_id":   confirmed.ID,
			"pro_id":     confirmed.ProID,
		})
	}
	return confirmed, nil
}

func (u *QuoteUseCase) Decline(ctx context.Context, proID, quoteID string) (entities.Quote, error) {
	proID = strings.TrimSpace(proID)
	quoteID = strings.TrimSpace(quoteID)
	if proID == "" || quoteID == "" {
		return entities.Quote{}, ErrInvalidID
	}
	declined, err := u.quotes.Decline(ctx, quoteID, proID, u.Now())
	if err == nil {
		return declined, nil
	}
	if interfaces.FailedEntity(err) == "" {
		return entities.Quote{}, storageFailure(err)
	}
	current, gerr := u.quotes.GetByID(ctx, quoteID)
	if gerr != nil {
		return entities.Quote{}, storageFailure(gerr)
	}
	if current.ID == "" || current.ProID != proID {
		return entities.Quote{}, ErrQuoteNotFound
	}
	if current.Status == entities.QuoteStatusDeclined {
		return current, nil
	}
	return entities.Quote{}, ErrInvalidTransition
}

func (u *QuoteUseCase) Get(ctx context.Context, actor entities.Actor, quoteID string) (entities.Quote, error) {
	quoteID = strings.TrimSpace(quoteID)
	if quoteID == "" {
		return entities.Quote{}, ErrInvalidID
	}
	q, err := u.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return entities.Quote{}, storageFailure(err)
	}
	if q.ID == "" {
		return entities.Quote{}, ErrQuoteNotFound
	}
	switch actor.Role {
	case entities.RoleStaff:
		return q, nil
	case entities.RolePro:
		if q.ProID == actor.ID {
			return q, nil
		}
	case entities.RoleCustomer:
		req, err := u.requests.GetByID(ctx, q.RequestID)
		if err != nil {
			return entities.Quote{}, storageFailure(err)
		}
		if req.CustomerID == actor.ID {
			return q, nil
		}
	}
	return entities.Quote{}, ErrQuoteNotFound
}

// ListByRequest returns every quote to the owner and staff, and only the
// caller's own quotes to a professional.
func (u *QuoteUseCase) ListByRequest(ctx context.Context, actor entities.Actor, requestID string) ([]entities.Quote, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, ErrInvalidID
	}
	req, err := u.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, storageFailure(err)
	}
	if req.ID == "" {
		return nil, ErrServiceRequestNotFound
	}
	if actor.Role == entities.RoleCustomer && req.CustomerID != actor.ID {
		return nil, ErrServiceRequestNotFound
	}

	items, err := u.quotes.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, storageFailure(err)
	}
	if actor.Role != entities.RolePro {
		return items, nil
	}
	own := make([]entities.Quote, 0, len(items))
	for _, q := range items {
		if q.ProID == actor.ID {
			own = append(own, q)
		}
	}
	return own, nil
}

func (u *QuoteUseCase) ListMine(ctx context.Context, proID string) ([]entities.Quote, error) {
	proID = strings.TrimSpace(proID)
	if proID == "" {
		return nil, ErrInvalidID
	}
	items, err := u.quotes.ListByPro(ctx, proID)
	if err != nil {
		return nil, storageFailure(err)
	}
	return items, nil
}

func (u *QuoteUseCase) loadForCustomer(ctx context.Context, customerID, quoteID string) (entities.Quote, entities.ServiceRequest, error) {
	q, err := u.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return entities.Quote{}, entities.ServiceRequest{}, storageFailure(err)
	}
	if q.ID == "" {
		return entities.Quote{}, entities.ServiceRequest{}, ErrQuoteNotFound
	}
	req, err := u.requests.GetByID(ctx, q.RequestID)
	if err != nil {
		return entities.Quote{}, entities.ServiceRequest{}, storageFailure(err)
	}
	if req.ID == "" || req.CustomerID != customerID {
		return entities.Quote{}, entities.ServiceRequest{}, ErrQuoteNotFound
	}
	return q, req, nil
}
