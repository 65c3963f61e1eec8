package usecase

import (
	"context"
	"errors"
	"time"

	"automarket/internal/domain/entities"
	"automarket/internal/logger"
	"automarket/internal/usecase/interfaces"

	"github.com/sirupsen/logrus"
)

const DefaultSweepBatchSize = 100

// SweepResult summarises one pass of the expiration sweep.
type SweepResult struct {
	Scanned                int `json:"scanned"`
	Transitioned           int `json:"transitioned"`
	LocksReleased          int `json:"locks_released"`
	NotificationsAttempted int `json:"notifications_attempted"`
	Failed                 int `json:"failed"`
}

// ISweepUseCase expires lapsed confirmation timers and releases lapsed job
// locks. Concurrent runs are safe: every transition is conditioned on the
// state the run observed.
type ISweepUseCase interface {
	Run(ctx context.Context) (SweepResult, error)
	Pending(ctx context.Context) ([]entities.Quote, error)
}

type SweepUseCase struct {
	quotes    interfaces.IQuoteRepository
	requests  interfaces.IServiceRequestRepository
	notify    notifier
	log       *logrus.Logger
	batchSize int

	Now func() time.Time
}

var _ ISweepUseCase = (*SweepUseCase)(nil)

func NewSweepUseCase(
	quotes interfaces.IQuoteRepository,
	requests interfaces.IServiceRequestRepository,
	profiles interfaces.IProfileRepository,
	sink interfaces.INotifier,
	log *logrus.Logger,
	batchSize int,
) *SweepUseCase {
	log = logger.OrDiscard(log)
	if batchSize <= 0 {
		batchSize = DefaultSweepBatchSize
	}
	return &SweepUseCase{
		quotes:    quotes,
		requests:  requests,
		notify:    notifier{profiles: profiles, sink: sink, log: log},
		log:       log,
		batchSize: batchSize,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run evaluates every lapsed item against a single clock reading. Items that
// fail are counted and reported; they stay eligible for the next run.
func (u *SweepUseCase) Run(ctx context.Context) (SweepResult, error) {
	now := u.Now()
	entry := u.log.WithFields(logrus.Fields{"module": "sweep", "op": "run", "now": now})

	var res SweepResult
	var errs []error

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		page, err := u.quotes.ListLapsed(ctx, now, u.batchSize)
		if err != nil {
			entry.WithError(err).Error("listing lapsed quotes failed")
			return res, storageFailure(err)
		}
		res.Scanned += len(page)

		settled := 0
		for _, q := range page {
			ok, err := u.quotes.Expire(ctx, q, now)
			if err != nil {
				res.Failed++
				errs = append(errs, err)
				entry.WithField("quote_id", q.ID).WithError(err).Warn("expire failed")
				continue
			}
			settled++
			if !ok {
				// Confirmed or expired by someone else since the scan.
				continue
			}
			res.Transitioned++
			res.NotificationsAttempted += u.notifyExpired(ctx, q)
		}
		if len(page) < u.batchSize || settled == 0 {
			break
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		page, err := u.requests.ListExpiredLocks(ctx, now, u.batchSize)
		if err != nil {
			entry.WithError(err).Error("listing lapsed locks failed")
			return res, storageFailure(err)
		}
		res.Scanned += len(page)

		settled := 0
		for _, r := range page {
			ok, err := u.requests.ReleaseExpiredLock(ctx, r.ID, r.AcceptedProID, now)
			if err != nil {
				res.Failed++
				errs = append(errs, err)
				entry.WithField("request_id", r.ID).WithError(err).Warn("lock release failed")
				continue
			}
			settled++
			if ok {
				res.LocksReleased++
			}
		}
		if len(page) < u.batchSize || settled == 0 {
			break
		}
	}

	entry.WithFields(logrus.Fields{
		"scanned":                 res.Scanned,
		"transitioned":            res.Transitioned,
		"locks_released":          res.LocksReleased,
		"notifications_attempted": res.NotificationsAttempted,
		"failed":                  res.Failed,
	}).Info("sweep finished")

	if len(errs) > 0 {
		return res, storageFailure(errors.Join(errs...))
	}
	return res, nil
}

func (u *SweepUseCase) notifyExpired(ctx context.Context, q entities.Quote) int {
	if u.notify.sink == nil {
		return 0
	}
	data := map[string]string{"request_id": q.RequestID, "quote_id": q.ID}
	attempted := 0
	if u.notify.send(ctx, q.ProID, entities.TemplateQuoteExpired, data) {
		attempted++
	}
	req, err := u.requests.GetByID(ctx, q.RequestID)
	if err != nil || req.ID == "" {
		return attempted
	}
	if u.notify.send(ctx, req.CustomerID, entities.TemplateQuoteExpired, data) {
		attempted++
	}
	return attempted
}

// Pending lists quotes awaiting confirmation, soonest expiry first. Lapsed
// quotes the sweep has not reached yet are included; Quote.Lapsed tells them
// apart.
func (u *SweepUseCase) Pending(ctx context.Context) ([]entities.Quote, error) {
	items, err := u.quotes.ListAwaitingConfirmation(ctx)
	if err != nil {
		return nil, storageFailure(err)
	}
	return items, nil
}
