package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"automarket/internal/adapter/persistence/sqlite"
	"automarket/internal/domain/entities"
	"automarket/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *clock) Advance(d time.Duration) {
	c.Set(c.Now().Add(d))
}

type recordingSink struct {
	mu   sync.Mutex
	sent []entities.Notification
}

func (s *recordingSink) Notify(_ context.Context, n entities.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return nil
}

type testEnv struct {
	Ctx   context.Context
	Clock *clock
	Sink  *recordingSink

	Requests     *sqlite.ServiceRequestRepository
	Quotes       *sqlite.QuoteRepository
	Appointments *sqlite.AppointmentRepository
	Fees         *sqlite.ReferralFeeRepository

	ServiceRequests *usecase.ServiceRequestUseCase
	JobLock         *usecase.JobLockUseCase
	Quote           *usecase.QuoteUseCase
	Sweep           *usecase.SweepUseCase
}

const (
	customerID = "cust-1"
	category   = "brakes"
	zip        = "01001-000"
)

var pros = []string{"pro-a", "pro-b", "pro-c", "pro-d", "pro-e"}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	conn, err := sqlite.Open(filepath.Join(t.TempDir(), "automarket.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, sqlite.Migrate(conn))

	env := testEnv{
		Ctx:          context.Background(),
		Clock:        &clock{now: t0},
		Sink:         &recordingSink{},
		Requests:     sqlite.NewServiceRequestRepository(conn),
		Quotes:       sqlite.NewQuoteRepository(conn),
		Appointments: sqlite.NewAppointmentRepository(conn),
		Fees:         sqlite.NewReferralFeeRepository(conn),
	}
	leads := sqlite.NewLeadRepository(conn)
	profiles := sqlite.NewProfileRepository(conn)

	_, err = profiles.Upsert(env.Ctx, entities.Profile{ID: customerID, Role: entities.RoleCustomer, Email: "cust@example.com", Active: true})
	require.NoError(t, err)
	for _, id := range pros {
		_, err = profiles.Upsert(env.Ctx, entities.Profile{
			ID:          id,
			Role:        entities.RolePro,
			Email:       id + "@example.com",
			CategoryIDs: []string{category},
			ZipCodes:    []string{zip},
			Active:      true,
		})
		require.NoError(t, err)
	}

	env.ServiceRequests = usecase.NewServiceRequestUseCase(env.Requests, leads, profiles, nil, nil)
	env.ServiceRequests.Now = env.Clock.Now
	env.JobLock = usecase.NewJobLockUseCase(env.Requests, leads, profiles, nil, nil, entities.LockDuration)
	env.JobLock.Now = env.Clock.Now
	env.Quote = usecase.NewQuoteUseCase(env.Quotes, env.Requests, profiles, nil, nil,
		usecase.FeePolicy{Percent: decimal.NewFromInt(10)}, entities.DefaultConfirmationTimerMinutes)
	env.Quote.Now = env.Clock.Now
	env.Sweep = usecase.NewSweepUseCase(env.Quotes, env.Requests, profiles, env.Sink, nil, 2)
	env.Sweep.Now = env.Clock.Now
	return env
}

// dispatchedRequest creates a request and offers it to every seeded pro.
func (e testEnv) dispatchedRequest(t *testing.T) entities.ServiceRequest {
	t.Helper()
	r, err := e.ServiceRequests.Create(e.Ctx, customerID, usecase.CreateServiceRequestInput{
		Vehicle:    "VW Gol 2015",
		CategoryID: category,
		Address:    "Rua A, 1",
		Zip:        zip,
	})
	require.NoError(t, err)
	res, err := e.ServiceRequests.Dispatch(e.Ctx, entities.Actor{ID: customerID, Role: entities.RoleCustomer}, r.ID)
	require.NoError(t, err)
	require.Equal(t, len(pros), res.LeadsCreated)
	return res.Request
}

// selectedQuote runs a request up to a quote by pro-a awaiting confirmation.
func (e testEnv) selectedQuote(t *testing.T) (entities.ServiceRequest, entities.Quote) {
	t.Helper()
	r := e.dispatchedRequest(t)
	_, err := e.JobLock.Acquire(e.Ctx, r.ID, "pro-a")
	require.NoError(t, err)
	q, err := e.Quote.Submit(e.Ctx, "pro-a", usecase.SubmitQuoteInput{RequestID: r.ID, EstimatedPrice: decimal.NewFromInt(300)})
	require.NoError(t, err)
	q, err = e.Quote.Select(e.Ctx, customerID, q.ID, usecase.SelectQuoteInput{})
	require.NoError(t, err)
	return r, q
}

func TestAcquire_SecondProConflicts(t *testing.T) {
	env := newTestEnv(t)
	r := env.dispatchedRequest(t)

	locked, err := env.JobLock.Acquire(env.Ctx, r.ID, "pro-a")
	require.NoError(t, err)
	require.Equal(t, entities.ServiceRequestStatusAccepted, locked.Status)
	require.Equal(t, "pro-a", locked.AcceptedProID)
	require.NotNil(t, locked.AcceptExpiresAt)
	require.True(t, locked.AcceptExpiresAt.Equal(t0.Add(24*time.Hour)))

	_, err = env.JobLock.Acquire(env.Ctx, r.ID, "pro-b")
	require.ErrorIs(t, err, usecase.ErrLockConflict)

	again, err := env.JobLock.Acquire(env.Ctx, r.ID, "pro-a")
	require.NoError(t, err)
	require.True(t, again.AcceptExpiresAt.Equal(*locked.AcceptExpiresAt))
}

func TestAcquire_ConcurrentProsExactlyOneWins(t *testing.T) {
	for round := 0; round < 5; round++ {
		env := newTestEnv(t)
		r := env.dispatchedRequest(t)

		var wg sync.WaitGroup
		errs := make([]error, len(pros))
		for i, pro := range pros {
			wg.Add(1)
			go func(i int, pro string) {
				defer wg.Done()
				_, errs[i] = env.JobLock.Acquire(env.Ctx, r.ID, pro)
			}(i, pro)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			require.ErrorIs(t, err, usecase.ErrLockConflict)
		}
		require.Equal(t, 1, wins)
	}
}

func TestAcquire_LapsedLockReopens(t *testing.T) {
	env := newTestEnv(t)
	r := env.dispatchedRequest(t)

	_, err := env.JobLock.Acquire(env.Ctx, r.ID, "pro-a")
	require.NoError(t, err)

	env.Clock.Advance(24*time.Hour - time.Millisecond)
	_, err = env.JobLock.Acquire(env.Ctx, r.ID, "pro-b")
	require.ErrorIs(t, err, usecase.ErrLockConflict)

	env.Clock.Advance(time.Millisecond)
	locked, err := env.JobLock.Acquire(env.Ctx, r.ID, "pro-b")
	require.NoError(t, err)
	require.Equal(t, "pro-b", locked.AcceptedProID)
}

func TestSelect_SingleQuoteInFlight(t *testing.T) {
	env := newTestEnv(t)
	r := env.dispatchedRequest(t)

	_, err := env.JobLock.Acquire(env.Ctx, r.ID, "pro-a")
	require.NoError(t, err)
	q1, err := env.Quote.Submit(env.Ctx, "pro-a", usecase.SubmitQuoteInput{RequestID: r.ID, EstimatedPrice: decimal.NewFromInt(300)})
	require.NoError(t, err)

	env.Clock.Advance(25 * time.Hour)
	_, err = env.JobLock.Acquire(env.Ctx, r.ID, "pro-b")
	require.NoError(t, err)
	q2, err := env.Quote.Submit(env.Ctx, "pro-b", usecase.SubmitQuoteInput{RequestID: r.ID, EstimatedPrice: decimal.NewFromInt(280)})
	require.NoError(t, err)

	selected, err := env.Quote.Select(env.Ctx, customerID, q2.ID, usecase.SelectQuoteInput{})
	require.NoError(t, err)
	require.Equal(t, entities.QuoteStatusPendingConfirmation, selected.Status)
	require.True(t, selected.ConfirmationTimerExpiresAt.Equal(env.Clock.Now().Add(30*time.Minute)))

	apt, err := env.Appointments.GetByID(env.Ctx, q2.ID)
	require.NoError(t, err)
	require.Equal(t, entities.AppointmentStatusPendingConfirmation, apt.Status)
	fee, err := env.Fees.GetByID(env.Ctx, q2.ID)
	require.NoError(t, err)
	require.Equal(t, entities.ReferralFeeStatusPending, fee.Status)
	require.Equal(t, "28.00", fee.Amount.StringFixed(2))

	_, err = env.Quote.Select(env.Ctx, customerID, q1.ID, usecase.SelectQuoteInput{})
	require.ErrorIs(t, err, usecase.ErrQuoteInFlight)

	quotes, err := env.Quotes.ListByRequest(env.Ctx, r.ID)
	require.NoError(t, err)
	pending := 0
	for _, q := range quotes {
		if q.Status == entities.QuoteStatusPendingConfirmation {
			pending++
		}
	}
	require.Equal(t, 1, pending)

	_, err = env.JobLock.Acquire(env.Ctx, r.ID, "pro-c")
	require.ErrorIs(t, err, usecase.ErrLockConflict)
}

// A quote is only selectable while its pro holds the job. Whether or not the
// sweep released the lapsed lock first, the outcome is the same.
func TestSelect_RequiresLiveLockOfQuotingPro(t *testing.T) {
	for _, swept := range []bool{false, true} {
		name := "lapsed lock"
		if swept {
			name = "lock released by the sweep"
		}
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)
			r := env.dispatchedRequest(t)
			_, err := env.JobLock.Acquire(env.Ctx, r.ID, "pro-a")
			require.NoError(t, err)
			q, err := env.Quote.Submit(env.Ctx, "pro-a", usecase.SubmitQuoteInput{RequestID: r.ID, EstimatedPrice: decimal.NewFromInt(300)})
			require.NoError(t, err)

			env.Clock.Advance(entities.LockDuration)
			if swept {
				res, err := env.Sweep.Run(env.Ctx)
				require.NoError(t, err)
				require.Equal(t, 1, res.LocksReleased)
			}

			_, err = env.Quote.Select(env.Ctx, customerID, q.ID, usecase.SelectQuoteInput{})
			require.ErrorIs(t, err, usecase.ErrLockNotHeld)

			req, err := env.Requests.GetByID(env.Ctx, r.ID)
			require.NoError(t, err)
			require.Empty(t, req.PendingQuoteID)
			fee, err := env.Fees.GetByID(env.Ctx, q.ID)
			require.NoError(t, err)
			require.Empty(t, fee.ID)
			got, err := env.Quotes.GetByID(env.Ctx, q.ID)
			require.NoError(t, err)
			require.Equal(t, entities.QuoteStatusSubmitted, got.Status)

			// The job is not frozen: another pro can take it.
			_, err = env.JobLock.Acquire(env.Ctx, r.ID, "pro-b")
			require.NoError(t, err)
			_, err = env.Quote.Select(env.Ctx, customerID, q.ID, usecase.SelectQuoteInput{})
			require.ErrorIs(t, err, usecase.ErrLockNotHeld)
		})
	}

	t.Run("lock still live", func(t *testing.T) {
		env := newTestEnv(t)
		r := env.dispatchedRequest(t)
		_, err := env.JobLock.Acquire(env.Ctx, r.ID, "pro-a")
		require.NoError(t, err)
		q, err := env.Quote.Submit(env.Ctx, "pro-a", usecase.SubmitQuoteInput{RequestID: r.ID, EstimatedPrice: decimal.NewFromInt(300)})
		require.NoError(t, err)

		env.Clock.Advance(entities.LockDuration - time.Millisecond)
		_, err = env.Quote.Select(env.Ctx, customerID, q.ID, usecase.SelectQuoteInput{})
		require.NoError(t, err)
	})
}

func TestSelect_ConcurrentSelectionsExactlyOneWins(t *testing.T) {
	env := newTestEnv(t)
	r := env.dispatchedRequest(t)

	_, err := env.JobLock.Acquire(env.Ctx, r.ID, "pro-a")
	require.NoError(t, err)
	var ids []string
	for _, price := range []int64{300, 310, 320, 330} {
		q, err := env.Quote.Submit(env.Ctx, "pro-a", usecase.SubmitQuoteInput{RequestID: r.ID, EstimatedPrice: decimal.NewFromInt(price)})
		require.NoError(t, err)
		ids = append(ids, q.ID)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = env.Quote.Select(env.Ctx, customerID, id, usecase.SelectQuoteInput{})
		}(i, id)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		require.ErrorIs(t, err, usecase.ErrQuoteInFlight)
	}
	require.Equal(t, 1, wins)
}

func TestSweep_ExpiresCascadeOnce(t *testing.T) {
	env := newTestEnv(t)
	r, q := env.selectedQuote(t)

	env.Clock.Set(*q.ConfirmationTimerExpiresAt)
	res, err := env.Sweep.Run(env.Ctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.Transitioned)
	require.Equal(t, 2, res.NotificationsAttempted)

	got, err := env.Quotes.GetByID(env.Ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, entities.QuoteStatusExpired, got.Status)
	apt, err := env.Appointments.GetByID(env.Ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, entities.AppointmentStatusExpired, apt.Status)
	fee, err := env.Fees.GetByID(env.Ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, entities.ReferralFeeStatusExpired, fee.Status)
	req, err := env.Requests.GetByID(env.Ctx, r.ID)
	require.NoError(t, err)
	require.Empty(t, req.PendingQuoteID)
	require.Equal(t, "pro-a", req.AcceptedProID)

	res, err = env.Sweep.Run(env.Ctx)
	require.NoError(t, err)
	require.Zero(t, res.Transitioned)
	require.Zero(t, res.NotificationsAttempted)

	again, err := env.Quotes.GetByID(env.Ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, got, again)

	_, err = env.Quote.Confirm(env.Ctx, "pro-a", q.ID)
	require.ErrorIs(t, err, usecase.ErrQuoteExpired)
}

func TestSweep_PagesThroughManyLapsedQuotes(t *testing.T) {
	env := newTestEnv(t)
	var last time.Time
	for i := 0; i < 5; i++ {
		_, q := env.selectedQuote(t)
		last = *q.ConfirmationTimerExpiresAt
	}

	env.Clock.Set(last)
	res, err := env.Sweep.Run(env.Ctx)
	require.NoError(t, err)
	require.Equal(t, 5, res.Transitioned)

	pending, err := env.Sweep.Pending(env.Ctx)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestSweep_PendingShowsRunningTimers(t *testing.T) {
	env := newTestEnv(t)
	_, q := env.selectedQuote(t)

	env.Clock.Advance(10 * time.Minute)
	pending, err := env.Sweep.Pending(env.Ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, q.ID, pending[0].ID)
	require.False(t, pending[0].Lapsed(env.Clock.Now()))
	require.Equal(t, 20*time.Minute, pending[0].Remaining(env.Clock.Now()))

	env.Clock.Set(q.ConfirmationTimerExpiresAt.Add(time.Second))
	pending, err = env.Sweep.Pending(env.Ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.True(t, pending[0].Lapsed(env.Clock.Now()))
	require.Zero(t, pending[0].Remaining(env.Clock.Now()))

	_, err = env.Sweep.Run(env.Ctx)
	require.NoError(t, err)
	pending, err = env.Sweep.Pending(env.Ctx)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestConfirm_BeforeExpiryWinsOverSweep(t *testing.T) {
	env := newTestEnv(t)
	r, q := env.selectedQuote(t)
	expiresAt := *q.ConfirmationTimerExpiresAt

	env.Clock.Set(expiresAt.Add(-5 * time.Second))
	confirmed, err := env.Quote.Confirm(env.Ctx, "pro-a", q.ID)
	require.NoError(t, err)
	require.Equal(t, entities.QuoteStatusConfirmed, confirmed.Status)

	apt, err := env.Appointments.GetByID(env.Ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, entities.AppointmentStatusScheduled, apt.Status)
	req, err := env.Requests.GetByID(env.Ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, entities.ServiceRequestStatusScheduled, req.Status)
	require.True(t, req.LockState(env.Clock.Now()).Permanent)

	env.Clock.Set(expiresAt.Add(time.Second))
	res, err := env.Sweep.Run(env.Ctx)
	require.NoError(t, err)
	require.Zero(t, res.Transitioned)

	got, err := env.Quotes.GetByID(env.Ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, entities.QuoteStatusConfirmed, got.Status)

	_, err = env.JobLock.Acquire(env.Ctx, r.ID, "pro-b")
	require.ErrorIs(t, err, usecase.ErrLockConflict)
}

func TestConfirm_ExpiryBoundary(t *testing.T) {
	t.Run("one millisecond before", func(t *testing.T) {
		env := newTestEnv(t)
		_, q := env.selectedQuote(t)
		env.Clock.Set(q.ConfirmationTimerExpiresAt.Add(-time.Millisecond))
		_, err := env.Quote.Confirm(env.Ctx, "pro-a", q.ID)
		require.NoError(t, err)
	})

	t.Run("at expiry", func(t *testing.T) {
		env := newTestEnv(t)
		_, q := env.selectedQuote(t)
		env.Clock.Set(*q.ConfirmationTimerExpiresAt)
		_, err := env.Quote.Confirm(env.Ctx, "pro-a", q.ID)
		require.ErrorIs(t, err, usecase.ErrQuoteExpired)
	})

	t.Run("sweep first", func(t *testing.T) {
		env := newTestEnv(t)
		_, q := env.selectedQuote(t)
		env.Clock.Set(q.ConfirmationTimerExpiresAt.Add(time.Millisecond))
		res, err := env.Sweep.Run(env.Ctx)
		require.NoError(t, err)
		require.Equal(t, 1, res.Transitioned)

		env.Clock.Set(q.ConfirmationTimerExpiresAt.Add(-time.Millisecond))
		_, err = env.Quote.Confirm(env.Ctx, "pro-a", q.ID)
		require.ErrorIs(t, err, usecase.ErrQuoteExpired)
	})
}

func TestConfirm_RacingSweepNeverBothSucceed(t *testing.T) {
	for round := 0; round < 10; round++ {
		env := newTestEnv(t)
		_, q := env.selectedQuote(t)
		expiresAt := *q.ConfirmationTimerExpiresAt

		confirmClock := &clock{now: expiresAt.Add(-time.Millisecond)}
		env.Quote.Now = confirmClock.Now
		env.Clock.Set(expiresAt.Add(time.Millisecond))

		var (
			wg         sync.WaitGroup
			confirmErr error
			sweep      usecase.SweepResult
			sweepErr   error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, confirmErr = env.Quote.Confirm(env.Ctx, "pro-a", q.ID)
		}()
		go func() {
			defer wg.Done()
			sweep, sweepErr = env.Sweep.Run(env.Ctx)
		}()
		wg.Wait()
		require.NoError(t, sweepErr)

		got, err := env.Quotes.GetByID(env.Ctx, q.ID)
		require.NoError(t, err)
		if confirmErr == nil {
			require.Zero(t, sweep.Transitioned)
			require.Equal(t, entities.QuoteStatusConfirmed, got.Status)
		} else {
			require.True(t, errors.Is(confirmErr, usecase.ErrQuoteExpired))
			require.Equal(t, 1, sweep.Transitioned)
			require.Equal(t, entities.QuoteStatusExpired, got.Status)
		}
	}
}

func TestSweep_ReleasesLapsedLocks(t *testing.T) {
	env := newTestEnv(t)
	r := env.dispatchedRequest(t)
	_, err := env.JobLock.Acquire(env.Ctx, r.ID, "pro-a")
	require.NoError(t, err)

	env.Clock.Advance(24 * time.Hour)
	res, err := env.Sweep.Run(env.Ctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.LocksReleased)

	req, err := env.Requests.GetByID(env.Ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, entities.ServiceRequestStatusDispatched, req.Status)
	require.Empty(t, req.AcceptedProID)
	require.Nil(t, req.AcceptExpiresAt)

	res, err = env.Sweep.Run(env.Ctx)
	require.NoError(t, err)
	require.Zero(t, res.LocksReleased)
}

func TestDecline_DeclinedLeadCannotAcquire(t *testing.T) {
	env := newTestEnv(t)
	r := env.dispatchedRequest(t)

	lead, err := env.JobLock.Decline(env.Ctx, entities.LeadID(r.ID, "pro-a"), "pro-a")
	require.NoError(t, err)
	require.Equal(t, entities.LeadStatusDeclined, lead.Status)

	_, err = env.JobLock.Acquire(env.Ctx, r.ID, "pro-a")
	require.ErrorIs(t, err, usecase.ErrLeadDeclined)

	_, err = env.JobLock.Acquire(env.Ctx, r.ID, "pro-b")
	require.NoError(t, err)
}
