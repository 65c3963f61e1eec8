package handlers

import (
	"net/http"
	"testing"
	"time"

	"automarket/internal/adapter/http/handlers/mocks"
	"automarket/internal/domain/entities"
	"automarket/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func TestJobLockHandler_Acquire(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	exp := now.Add(24 * time.Hour)

	setup := func(t *testing.T, a entities.Actor) (*mocks.MockIJobLockUseCase, *gin.Engine) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIJobLockUseCase(ctrl)
		h := NewJobLockHandler(uc, nil)
		h.now = func() time.Time { return now }
		r := routerAs(a)
		r.POST("/v1/service-requests/:id/lock", h.Acquire)
		return uc, r
	}

	t.Run("unauthenticated", func(t *testing.T) {
		_, r := setup(t, entities.Actor{})
		expectStatus(t, serve(r, http.MethodPost, "/v1/service-requests/req-1/lock", ""), http.StatusUnauthorized)
	})

	t.Run("lock held by another professional", func(t *testing.T) {
		uc, r := setup(t, pro)
		uc.EXPECT().Acquire(gomock.Any(), "req-1", "pro-1").Return(entities.ServiceRequest{}, usecase.ErrLockConflict)

		w := serve(r, http.MethodPost, "/v1/service-requests/req-1/lock", "")
		expectStatus(t, w, http.StatusConflict)
		if msg := decodeError(t, w).Message; msg != "This job was already accepted by another professional" {
			t.Fatalf("unexpected message %q", msg)
		}
	})

	t.Run("no lead for caller", func(t *testing.T) {
		uc, r := setup(t, pro)
		uc.EXPECT().Acquire(gomock.Any(), "req-1", "pro-1").Return(entities.ServiceRequest{}, usecase.ErrLeadNotFound)
		expectStatus(t, serve(r, http.MethodPost, "/v1/service-requests/req-1/lock", ""), http.StatusNotFound)
	})

	t.Run("success", func(t *testing.T) {
		uc, r := setup(t, pro)
		uc.EXPECT().Acquire(gomock.Any(), "req-1", "pro-1").Return(entities.ServiceRequest{
			ID:              "req-1",
			Status:          entities.ServiceRequestStatusAccepted,
			AcceptedProID:   "pro-1",
			AcceptExpiresAt: &exp,
		}, nil)

		w := serve(r, http.MethodPost, "/v1/service-requests/req-1/lock", "")
		expectStatus(t, w, http.StatusOK)
		lock, _ := decodeMap(t, w)["lock"].(map[string]any)
		if lock["locked"] != true || lock["holder_id"] != "pro-1" {
			t.Fatalf("unexpected lock: %v", lock)
		}
	})
}

func TestJobLockHandler_IsLocked(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIJobLockUseCase(ctrl)
	h := NewJobLockHandler(uc, nil)
	r := routerAs(customer)
	r.GET("/v1/service-requests/:id/lock", h.IsLocked)

	t.Run("visible request", func(t *testing.T) {
		uc.EXPECT().LockStatus(gomock.Any(), customer, "req-1").Return(entities.LockState{Locked: true, HolderID: "pro-2", Permanent: true}, nil)

		w := serve(r, http.MethodGet, "/v1/service-requests/req-1/lock", "")
		expectStatus(t, w, http.StatusOK)
		body := decodeMap(t, w)
		if body["permanent"] != true || body["holder_id"] != "pro-2" {
			t.Fatalf("unexpected body: %v", body)
		}
	})

	t.Run("someone else's request", func(t *testing.T) {
		uc.EXPECT().LockStatus(gomock.Any(), customer, "req-9").Return(entities.LockState{}, usecase.ErrServiceRequestNotFound)
		expectStatus(t, serve(r, http.MethodGet, "/v1/service-requests/req-9/lock", ""), http.StatusNotFound)
	})

	t.Run("anonymous caller", func(t *testing.T) {
		anon := routerAs(entities.Actor{})
		anon.GET("/v1/service-requests/:id/lock", h.IsLocked)
		expectStatus(t, serve(anon, http.MethodGet, "/v1/service-requests/req-1/lock", ""), http.StatusUnauthorized)
	})
}

func TestJobLockHandler_Leads(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIJobLockUseCase(ctrl)
	h := NewJobLockHandler(uc, nil)
	r := routerAs(pro)
	r.GET("/v1/leads", h.ListLeads)
	r.POST("/v1/leads/:id/decline", h.DeclineLead)

	uc.EXPECT().ListLeads(gomock.Any(), "pro-1").Return([]usecase.LeadView{{
		Lead:          entities.Lead{ID: "l-1", RequestID: "req-1", ProID: "pro-1", Status: entities.LeadStatusNew},
		Request:       entities.ServiceRequest{ID: "req-1", Status: entities.ServiceRequestStatusAccepted},
		LockedByOther: true,
	}}, nil)
	w := serve(r, http.MethodGet, "/v1/leads", "")
	expectStatus(t, w, http.StatusOK)
	if body := w.Body.String(); !contains(body, `"locked_by_other":true`) {
		t.Fatalf("expected locked_by_other flag, got %s", body)
	}

	uc.EXPECT().Decline(gomock.Any(), "l-1", "pro-1").Return(entities.Lead{}, usecase.ErrLeadDeclined)
	expectStatus(t, serve(r, http.MethodPost, "/v1/leads/l-1/decline", ""), http.StatusConflict)
}
