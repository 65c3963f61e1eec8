package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"automarket/internal/domain/entities"
	"automarket/internal/usecase/interfaces"
	mock_interfaces "automarket/internal/usecase/interfaces/mocks"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

type quoteMocks struct {
	quotes   *mock_interfaces.MockIQuoteRepository
	requests *mock_interfaces.MockIServiceRequestRepository
}

func newQuoteUseCase(ctrl *gomock.Controller, fees FeePolicy) (*QuoteUseCase, quoteMocks) {
	m := quoteMocks{
		quotes:   mock_interfaces.NewMockIQuoteRepository(ctrl),
		requests: mock_interfaces.NewMockIServiceRequestRepository(ctrl),
	}
	uc := NewQuoteUseCase(m.quotes, m.requests, nil, nil, nil, fees, 0)
	uc.Now = fixedClock
	return uc, m
}

func pendingQuote(expiresAt time.Time) entities.Quote {
	return entities.Quote{
		ID:                         "q-1",
		RequestID:                  "req-1",
		ProID:                      "pro-1",
		EstimatedPrice:             decimal.NewFromInt(200),
		Status:                     entities.QuoteStatusPendingConfirmation,
		ConfirmationTimerMinutes:   30,
		ConfirmationTimerExpiresAt: &expiresAt,
	}
}

func TestQuoteUseCase_Submit(t *testing.T) {
	t.Run("validations", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, _ := newQuoteUseCase(ctrl, FeePolicy{})

		cases := []struct {
			name string
			in   SubmitQuoteInput
			want error
		}{
			{"missing request", SubmitQuoteInput{EstimatedPrice: decimal.NewFromInt(1)}, ErrInvalidID},
			{"zero price", SubmitQuoteInput{RequestID: "req-1"}, ErrInvalidPrice},
			{"negative price", SubmitQuoteInput{RequestID: "req-1", EstimatedPrice: decimal.NewFromInt(-5)}, ErrInvalidPrice},
			{"timer too long", SubmitQuoteInput{RequestID: "req-1", EstimatedPrice: decimal.NewFromInt(1), ConfirmationTimerMinutes: 1441}, ErrInvalidTimer},
			{"negative timer", SubmitQuoteInput{RequestID: "req-1", EstimatedPrice: decimal.NewFromInt(1), ConfirmationTimerMinutes: -1}, ErrInvalidTimer},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := uc.Submit(context.Background(), "pro-1", tc.in); !errors.Is(err, tc.want) {
					t.Fatalf("expected %v, got %v", tc.want, err)
				}
			})
		}
	})

	t.Run("success applies default timer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, m := newQuoteUseCase(ctrl, FeePolicy{})

		m.quotes.EXPECT().Create(gomock.Any(), gomock.Any(), testNow).DoAndReturn(func(_ context.Context, q entities.Quote, _ time.Time) (entities.Quote, error) {
			if q.Status != entities.QuoteStatusSubmitted || q.ConfirmationTimerMinutes != 30 {
				t.Fatalf("unexpected quote: %+v", q)
			}
			if !q.EstimatedPrice.Equal(decimal.RequireFromString("150.13")) {
				t.Fatalf("expected price rounded to cents, got %s", q.EstimatedPrice)
			}
			return q, nil
		})
		m.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(entities.ServiceRequest{ID: "req-1", CustomerID: "cust-1"}, nil)

		_, err := uc.Submit(context.Background(), "pro-1", SubmitQuoteInput{
			RequestID:      "req-1",
			EstimatedPrice: decimal.RequireFromString("150.129"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("lock held by another pro", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, m := newQuoteUseCase(ctrl, FeePolicy{})

		m.quotes.EXPECT().Create(gomock.Any(), gomock.Any(), testNow).Return(entities.Quote{}, interfaces.ConditionFailed(interfaces.EntityServiceRequest))
		m.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(entities.ServiceRequest{
			ID: "req-1", Status: entities.ServiceRequestStatusAccepted, AcceptedProID: "pro-2", AcceptExpiresAt: ptrTime(testNow.Add(time.Hour)),
		}, nil)

		_, err := uc.Submit(context.Background(), "pro-1", SubmitQuoteInput{RequestID: "req-1", EstimatedPrice: decimal.NewFromInt(10)})
		if !errors.Is(err, ErrLockConflict) {
			t.Fatalf("expected ErrLockConflict, got %v", err)
		}
	})

	t.Run("own lock lapsed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, m := newQuoteUseCase(ctrl, FeePolicy{})

		m.quotes.EXPECT().Create(gomock.Any(), gomock.Any(), testNow).Return(entities.Quote{}, interfaces.ConditionFailed(interfaces.EntityServiceRequest))
		m.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(entities.ServiceRequest{
			ID: "req-1", Status: entities.ServiceRequestStatusAccepted, AcceptedProID: "pro-1", AcceptExpiresAt: ptrTime(testNow.Add(-time.Second)),
		}, nil)

		_, err := uc.Submit(context.Background(), "pro-1", SubmitQuoteInput{RequestID: "req-1", EstimatedPrice: decimal.NewFromInt(10)})
		if !errors.Is(err, ErrLockNotHeld) {
			t.Fatalf("expected ErrLockNotHeld, got %v", err)
		}
	})
}

func TestQuoteUseCase_Select(t *testing.T) {
	submitted := entities.Quote{
		ID:                       "q-1",
		RequestID:                "req-1",
		ProID:                    "pro-1",
		EstimatedPrice:           decimal.NewFromInt(200),
		Status:                   entities.QuoteStatusSubmitted,
		ConfirmationTimerMinutes: 45,
	}
	request := entities.ServiceRequest{ID: "req-1", CustomerID: "cust-1", Status: entities.ServiceRequestStatusAccepted}

	t.Run("success builds appointment and fee", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, m := newQuoteUseCase(ctrl, FeePolicy{Percent: decimal.NewFromInt(10)})

		m.quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(submitted, nil)
		m.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(request, nil)
		m.quotes.EXPECT().Select(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, cmd interfaces.SelectQuoteCommand) (entities.Quote, error) {
			want := testNow.Add(45 * time.Minute)
			if !cmd.ExpiresAt.Equal(want) || !cmd.Appointment.ConfirmationExpiresAt.Equal(want) {
				t.Fatalf("unexpected expiry: %v / %v", cmd.ExpiresAt, cmd.Appointment.ConfirmationExpiresAt)
			}
			if cmd.ProID != "pro-1" {
				t.Fatalf("select must be guarded by the quoting pro's lock, got %q", cmd.ProID)
			}
			if cmd.Appointment.ID != "q-1" || cmd.Fee.ID != "q-1" {
				t.Fatalf("appointment and fee must use the quote id")
			}
			if cmd.Appointment.Status != entities.AppointmentStatusPendingConfirmation {
				t.Fatalf("unexpected appointment status %s", cmd.Appointment.Status)
			}
			if !cmd.Fee.Amount.Equal(decimal.NewFromInt(20)) || cmd.Fee.Status != entities.ReferralFeeStatusPending {
				t.Fatalf("unexpected fee: %+v", cmd.Fee)
			}
			if !cmd.Appointment.StartsAt.Equal(testNow.Add(24 * time.Hour)) {
				t.Fatalf("expected default start, got %v", cmd.Appointment.StartsAt)
			}
			q := submitted
			q.Status = entities.QuoteStatusPendingConfirmation
			q.ConfirmationTimerExpiresAt = &want
			return q, nil
		})

		got, err := uc.Select(context.Background(), "cust-1", "q-1", SelectQuoteInput{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Remaining(testNow) != 45*time.Minute {
			t.Fatalf("unexpected remaining %v", got.Remaining(testNow))
		}
	})

	t.Run("quote of another customer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, m := newQuoteUseCase(ctrl, FeePolicy{})

		m.quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(submitted, nil)
		m.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(request, nil)

		if _, err := uc.Select(context.Background(), "cust-2", "q-1", SelectQuoteInput{}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("start in the past", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, m := newQuoteUseCase(ctrl, FeePolicy{})

		m.quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(submitted, nil)
		m.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(request, nil)

		_, err := uc.Select(context.Background(), "cust-1", "q-1", SelectQuoteInput{StartsAt: testNow.Add(-time.Hour)})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("another quote in flight", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, m := newQuoteUseCase(ctrl, FeePolicy{})
		inFlight := request
		inFlight.PendingQuoteID = "q-0"

		m.quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(submitted, nil)
		m.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(request, nil)
		m.quotes.EXPECT().Select(gomock.Any(), gomock.Any()).Return(entities.Quote{}, interfaces.ConditionFailed(interfaces.EntityServiceRequest))
		m.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(inFlight, nil)

		_, err := uc.Select(context.Background(), "cust-1", "q-1", SelectQuoteInput{})
		if !errors.Is(err, ErrQuoteInFlight) {
			t.Fatalf("expected ErrQuoteInFlight, got %v", err)
		}
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("ErrQuoteInFlight must be an invalid transition")
		}
	})

	t.Run("lock of the quoting pro lapsed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, m := newQuoteUseCase(ctrl, FeePolicy{})
		lapsed := request
		lapsed.AcceptedProID = "pro-1"
		lapsed.AcceptExpiresAt = ptrTime(testNow.Add(-time.Hour))

		m.quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(submitted, nil)
		m.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(lapsed, nil)
		m.quotes.EXPECT().Select(gomock.Any(), gomock.Any()).Return(entities.Quote{}, interfaces.ConditionFailed(interfaces.EntityServiceRequest))
		m.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(lapsed, nil)

		_, err := uc.Select(context.Background(), "cust-1", "q-1", SelectQuoteInput{})
		if !errors.Is(err, ErrLockNotHeld) {
			t.Fatalf("expected ErrLockNotHeld, got %v", err)
		}
	})

	t.Run("lock released and taken by another pro", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, m := newQuoteUseCase(ctrl, FeePolicy{})
		taken := request
		taken.AcceptedProID = "pro-2"
		taken.AcceptExpiresAt = ptrTime(testNow.Add(time.Hour))

		m.quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(submitted, nil)
		m.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(taken, nil)
		m.quotes.EXPECT().Select(gomock.Any(), gomock.Any()).Return(entities.Quote{}, interfaces.ConditionFailed(interfaces.EntityServiceRequest))
		m.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(taken, nil)

		_, err := uc.Select(context.Background(), "cust-1", "q-1", SelectQuoteInput{})
		if !errors.Is(err, ErrLockNotHeld) {
			t.Fatalf("expected ErrLockNotHeld, got %v", err)
		}
	})

	t.Run("quote no longer submitted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, m := newQuoteUseCase(ctrl, FeePolicy{})
		declined := submitted
		declined.Status = entities.QuoteStatusDeclined

		m.quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(submitted, nil)
		m.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(request, nil)
		m.quotes.EXPECT().Select(gomock.Any(), gomock.Any()).Return(entities.Quote{}, interfaces.ConditionFailed(interfaces.EntityQuote))
		m.quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(declined, nil)

		_, err := uc.Select(context.Background(), "cust-1", "q-1", SelectQuoteInput{})
		if !errors.Is(err, ErrQuoteNotSelectable) {
			t.Fatalf("expected ErrQuoteNotSelectable, got %v", err)
		}
	})
}

func TestQuoteUseCase_Confirm(t *testing.T) {
	expiresAt := testNow.Add(5 * time.Second)

	t.Run("before expiry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, m := newQuoteUseCase(ctrl, FeePolicy{})
		confirmed := pendingQuote(expiresAt)
		confirmed.Status = entities.QuoteStatusConfirmed

		m.quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(pendingQuote(expiresAt), nil)
		m.quotes.EXPECT().Confirm(gomock.Any(), interfaces.ConfirmQuoteCommand{
			QuoteID: "q-1", RequestID: "req-1", ProID: "pro-1", Now: testNow,
		}).Return(confirmed, nil)
		m.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(entities.ServiceRequest{ID: "req-1", CustomerID: "cust-1"}, nil)

		got, err := uc.Confirm(context.Background(), "pro-1", "q-1")
		if err != nil || got.Status != entities.QuoteStatusConfirmed {
			t.Fatalf("unexpected result: %+v %v", got, err)
		}
	})

	t.Run("after expiry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, m := newQuoteUseCase(ctrl, FeePolicy{})
		lapsed := pendingQuote(testNow.Add(-time.Second))

		m.quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(lapsed, nil).Times(2)
		m.quotes.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(entities.Quote{}, interfaces.ConditionFailed(interfaces.EntityQuote))

		_, err := uc.Confirm(context.Background(), "pro-1", "q-1")
		if !errors.Is(err, ErrQuoteExpired) {
			t.Fatalf("expected ErrQuoteExpired, got %v", err)
		}
	})

	t.Run("exactly at expiry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, m := newQuoteUseCase(ctrl, FeePolicy{})
		atEdge := pendingQuote(testNow)

		m.quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(atEdge, nil).Times(2)
		m.quotes.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(entities.Quote{}, interfaces.ConditionFailed(interfaces.EntityQuote))

		if _, err := uc.Confirm(context.Background(), "pro-1", "q-1"); !errors.Is(err, ErrQuoteExpired) {
			t.Fatalf("expected ErrQuoteExpired, got %v", err)
		}
	})

	t.Run("already swept", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, m := newQuoteUseCase(ctrl, FeePolicy{})
		expired := pendingQuote(testNow.Add(-time.Minute))
		expired.Status = entities.QuoteStatusExpired

		m.quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(expired, nil).Times(2)
		m.quotes.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(entities.Quote{}, interfaces.ConditionFailed(interfaces.EntityQuote))

		if _, err := uc.Confirm(context.Background(), "pro-1", "q-1"); !errors.Is(err, ErrQuoteExpired) {
			t.Fatalf("expected ErrQuoteExpired, got %v", err)
		}
	})

	t.Run("already confirmed is idempotent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, m := newQuoteUseCase(ctrl, FeePolicy{})
		confirmed := pendingQuote(expiresAt)
		confirmed.Status = entities.QuoteStatusConfirmed

		m.quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(confirmed, nil).Times(2)
		m.quotes.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(entities.Quote{}, interfaces.ConditionFailed(interfaces.EntityQuote))

		got, err := uc.Confirm(context.Background(), "pro-1", "q-1")
		if err != nil || got.Status != entities.QuoteStatusConfirmed {
			t.Fatalf("unexpected result: %+v %v", got, err)
		}
	})

	t.Run("quote of another pro", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, m := newQuoteUseCase(ctrl, FeePolicy{})
		m.quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(pendingQuote(expiresAt), nil)

		if _, err := uc.Confirm(context.Background(), "pro-9", "q-1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestQuoteUseCase_ListByRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, m := newQuoteUseCase(ctrl, FeePolicy{})
	all := []entities.Quote{{ID: "q-1", ProID: "pro-1"}, {ID: "q-2", ProID: "pro-2"}}

	m.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(entities.ServiceRequest{ID: "req-1", CustomerID: "cust-1"}, nil).AnyTimes()
	m.quotes.EXPECT().ListByRequest(gomock.Any(), "req-1").Return(all, nil).AnyTimes()

	t.Run("owner sees all", func(t *testing.T) {
		got, err := uc.ListByRequest(context.Background(), entities.Actor{ID: "cust-1", Role: entities.RoleCustomer}, "req-1")
		if err != nil || len(got) != 2 {
			t.Fatalf("unexpected result: %v %v", got, err)
		}
	})

	t.Run("pro sees own", func(t *testing.T) {
		got, err := uc.ListByRequest(context.Background(), entities.Actor{ID: "pro-2", Role: entities.RolePro}, "req-1")
		if err != nil || len(got) != 1 || got[0].ID != "q-2" {
			t.Fatalf("unexpected result: %v %v", got, err)
		}
	})

	t.Run("other customer", func(t *testing.T) {
		_, err := uc.ListByRequest(context.Background(), entities.Actor{ID: "cust-2", Role: entities.RoleCustomer}, "req-1")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestFeePolicy_Amount(t *testing.T) {
	if got := (FeePolicy{}).Amount(decimal.NewFromInt(100)); !got.IsZero() {
		t.Fatalf("zero percent must leave the amount unset, got %s", got)
	}
	got := FeePolicy{Percent: decimal.RequireFromString("7.5")}.Amount(decimal.RequireFromString("199.99"))
	if !got.Equal(decimal.RequireFromString("15")) {
		t.Fatalf("expected 15, got %s", got)
	}
}
