package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"automarket/internal/domain/entities"
	mock_interfaces "automarket/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

func TestSweepUseCase_Run(t *testing.T) {
	t.Run("expires lapsed quotes and notifies both parties", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		quotes := mock_interfaces.NewMockIQuoteRepository(ctrl)
		requests := mock_interfaces.NewMockIServiceRequestRepository(ctrl)
		profiles := mock_interfaces.NewMockIProfileRepository(ctrl)
		sink := mock_interfaces.NewMockINotifier(ctrl)
		uc := NewSweepUseCase(quotes, requests, profiles, sink, nil, 10)
		uc.Now = fixedClock

		q1 := pendingQuote(testNow.Add(-time.Second))
		q2 := pendingQuote(testNow.Add(-time.Minute))
		q2.ID = "q-2"

		quotes.EXPECT().ListLapsed(gomock.Any(), testNow, 10).Return([]entities.Quote{q1, q2}, nil)
		quotes.EXPECT().Expire(gomock.Any(), q1, testNow).Return(true, nil)
		// confirmed by the pro between the scan and the write
		quotes.EXPECT().Expire(gomock.Any(), q2, testNow).Return(false, nil)
		requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(entities.ServiceRequest{ID: "req-1", CustomerID: "cust-1"}, nil)
		profiles.EXPECT().GetByID(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, id string) (entities.Profile, error) {
			return entities.Profile{ID: id, Email: id + "@example.com"}, nil
		}).Times(2)
		sink.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, n entities.Notification) error {
			if n.Template != entities.TemplateQuoteExpired || n.Data["quote_id"] != "q-1" {
				t.Fatalf("unexpected notification: %+v", n)
			}
			return nil
		}).Times(2)
		requests.EXPECT().ListExpiredLocks(gomock.Any(), testNow, 10).Return(nil, nil)

		res, err := uc.Run(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := SweepResult{Scanned: 2, Transitioned: 1, NotificationsAttempted: 2}
		if res != want {
			t.Fatalf("expected %+v, got %+v", want, res)
		}
	})

	t.Run("pages until a short page", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		quotes := mock_interfaces.NewMockIQuoteRepository(ctrl)
		requests := mock_interfaces.NewMockIServiceRequestRepository(ctrl)
		uc := NewSweepUseCase(quotes, requests, nil, nil, nil, 1)
		uc.Now = fixedClock

		q2 := pendingQuote(testNow.Add(-time.Minute))
		q2.ID = "q-2"
		gomock.InOrder(
			quotes.EXPECT().ListLapsed(gomock.Any(), testNow, 1).Return([]entities.Quote{pendingQuote(testNow)}, nil),
			quotes.EXPECT().Expire(gomock.Any(), gomock.Any(), testNow).Return(true, nil),
			quotes.EXPECT().ListLapsed(gomock.Any(), testNow, 1).Return([]entities.Quote{q2}, nil),
			quotes.EXPECT().Expire(gomock.Any(), q2, testNow).Return(true, nil),
			quotes.EXPECT().ListLapsed(gomock.Any(), testNow, 1).Return(nil, nil),
		)
		gomock.InOrder(
			requests.EXPECT().ListExpiredLocks(gomock.Any(), testNow, 1).Return([]entities.ServiceRequest{{ID: "req-9", AcceptedProID: "pro-3"}}, nil),
			requests.EXPECT().ReleaseExpiredLock(gomock.Any(), "req-9", "pro-3", testNow).Return(true, nil),
			requests.EXPECT().ListExpiredLocks(gomock.Any(), testNow, 1).Return(nil, nil),
		)

		res, err := uc.Run(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Transitioned != 2 || res.LocksReleased != 1 || res.Scanned != 3 {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("failures are counted and the run stops on a stuck page", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		quotes := mock_interfaces.NewMockIQuoteRepository(ctrl)
		requests := mock_interfaces.NewMockIServiceRequestRepository(ctrl)
		uc := NewSweepUseCase(quotes, requests, nil, nil, nil, 1)
		uc.Now = fixedClock

		quotes.EXPECT().ListLapsed(gomock.Any(), testNow, 1).Return([]entities.Quote{pendingQuote(testNow)}, nil)
		quotes.EXPECT().Expire(gomock.Any(), gomock.Any(), testNow).Return(false, errors.New("throttled"))
		requests.EXPECT().ListExpiredLocks(gomock.Any(), testNow, 1).Return(nil, nil)

		res, err := uc.Run(context.Background())
		if !errors.Is(err, ErrStorageFailure) {
			t.Fatalf("expected ErrStorageFailure, got %v", err)
		}
		if res.Failed != 1 || res.Transitioned != 0 {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("listing failure aborts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		quotes := mock_interfaces.NewMockIQuoteRepository(ctrl)
		requests := mock_interfaces.NewMockIServiceRequestRepository(ctrl)
		uc := NewSweepUseCase(quotes, requests, nil, nil, nil, 0)
		uc.Now = fixedClock

		quotes.EXPECT().ListLapsed(gomock.Any(), testNow, DefaultSweepBatchSize).Return(nil, errors.New("down"))

		if _, err := uc.Run(context.Background()); !errors.Is(err, ErrStorageFailure) {
			t.Fatalf("expected ErrStorageFailure, got %v", err)
		}
	})
}

func TestSweepUseCase_Pending(t *testing.T) {
	t.Run("lists running and unswept lapsed timers", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		quotes := mock_interfaces.NewMockIQuoteRepository(ctrl)
		uc := NewSweepUseCase(quotes, nil, nil, nil, nil, 0)
		uc.Now = fixedClock

		lapsed := pendingQuote(testNow.Add(-time.Minute))
		running := pendingQuote(testNow.Add(20 * time.Minute))
		running.ID = "q-2"
		quotes.EXPECT().ListAwaitingConfirmation(gomock.Any()).Return([]entities.Quote{lapsed, running}, nil)

		got, err := uc.Pending(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 quotes, got %d", len(got))
		}
		if !got[0].Lapsed(testNow) || got[0].Remaining(testNow) != 0 {
			t.Fatalf("expected first quote lapsed, got %+v", got[0])
		}
		if got[1].Remaining(testNow) != 20*time.Minute {
			t.Fatalf("expected 20m remaining, got %s", got[1].Remaining(testNow))
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		quotes := mock_interfaces.NewMockIQuoteRepository(ctrl)
		uc := NewSweepUseCase(quotes, nil, nil, nil, nil, 0)

		quotes.EXPECT().ListAwaitingConfirmation(gomock.Any()).Return(nil, errors.New("down"))

		if _, err := uc.Pending(context.Background()); !errors.Is(err, ErrStorageFailure) {
			t.Fatalf("expected ErrStorageFailure, got %v", err)
		}
	})
}
