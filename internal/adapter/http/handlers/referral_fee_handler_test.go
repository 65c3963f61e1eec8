package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"automarket/internal/adapter/http/handlers/mocks"
	"automarket/internal/domain/entities"
	"automarket/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

func TestReferralFeeHandler_Pay(t *testing.T) {
	setup := func(t *testing.T, mock bool) (*mocks.MockIReferralFeeUseCase, *gin.Engine) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIReferralFeeUseCase(ctrl)
		h := NewReferralFeeHandler(uc, nil, mock)
		r := routerAs(pro)
		r.POST("/v1/referral-fees/:id/pay", h.Pay)
		return uc, r
	}

	t.Run("invalid payload", func(t *testing.T) {
		_, r := setup(t, false)
		expectStatus(t, serve(r, http.MethodPost, "/v1/referral-fees/q-1/pay", "{"), http.StatusBadRequest)
	})

	t.Run("invalid payload in mock mode falls back", func(t *testing.T) {
		uc, r := setup(t, true)
		uc.EXPECT().Pay(gomock.Any(), "pro-1", "q-1", json.RawMessage("{}")).Return(entities.ReferralFee{ID: "q-1", Status: entities.ReferralFeeStatusPaid}, nil)
		expectStatus(t, serve(r, http.MethodPost, "/v1/referral-fees/q-1/pay", "{"), http.StatusOK)
	})

	t.Run("fee not pending", func(t *testing.T) {
		uc, r := setup(t, false)
		uc.EXPECT().Pay(gomock.Any(), "pro-1", "q-1", gomock.Any()).Return(entities.ReferralFee{}, usecase.ErrFeeNotPending)
		expectStatus(t, serve(r, http.MethodPost, "/v1/referral-fees/q-1/pay", `{"payment_method_id":"pix","payer":{"email":"x@test.com"}}`), http.StatusConflict)
	})

	t.Run("success unwraps mp_payload", func(t *testing.T) {
		uc, r := setup(t, false)
		uc.EXPECT().Pay(gomock.Any(), "pro-1", "q-1", json.RawMessage(`{"payment_method_id":"pix"}`)).Return(entities.ReferralFee{
			ID:                "q-1",
			Amount:            decimal.RequireFromString("25"),
			Status:            entities.ReferralFeeStatusPaid,
			PaymentID:         "mp-1",
			PaymentPayloadRaw: json.RawMessage(`{"id":"mp-1","status":"approved"}`),
		}, nil)

		w := serve(r, http.MethodPost, "/v1/referral-fees/q-1/pay", `{"mp_payload":{"payment_method_id":"pix"}}`)
		expectStatus(t, w, http.StatusOK)
		body := decodeMap(t, w)
		if body["payment_id"] != "mp-1" || body["amount"] != "25.00" {
			t.Fatalf("unexpected body: %v", body)
		}
	})
}

func TestReferralFeeHandler_SetAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIReferralFeeUseCase(ctrl)
	h := NewReferralFeeHandler(uc, nil, false)
	r := routerAs(staff)
	r.PUT("/v1/referral-fees/:id/amount", h.SetAmount)

	expectStatus(t, serve(r, http.MethodPut, "/v1/referral-fees/q-1/amount", `{"amount":"abc"}`), http.StatusBadRequest)

	uc.EXPECT().SetAmount(gomock.Any(), "q-1", decimal.RequireFromString("30")).Return(entities.ReferralFee{ID: "q-1", Amount: decimal.RequireFromString("30"), Status: entities.ReferralFeeStatusPending}, nil)
	w := serve(r, http.MethodPut, "/v1/referral-fees/q-1/amount", `{"amount":"30"}`)
	expectStatus(t, w, http.StatusOK)
	if decodeMap(t, w)["amount"] != "30.00" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestReadMPPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	makeCtx := func(raw string) *gin.Context {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(raw))
		c.Request.Header.Set("Content-Type", "application/json")
		return c
	}

	ctxReadErr := makeCtx("{}")
	ctxReadErr.Request.Body = failingReadCloser{}
	if _, err := readMPPayload(ctxReadErr); err == nil {
		t.Fatalf("expected read body error")
	}

	if _, err := readMPPayload(makeCtx("{invalid")); err == nil {
		t.Fatalf("expected invalid json error")
	}

	payload, err := readMPPayload(makeCtx("   "))
	if err != nil || string(payload) != "{}" {
		t.Fatalf("expected {}, got payload=%s err=%v", string(payload), err)
	}

	if _, err := readMPPayload(makeCtx(`{"mp_payload":null}`)); err == nil {
		t.Fatalf("expected mp_payload empty error")
	}

	payload, err = readMPPayload(makeCtx(`{"mp_payload":{"a":1}}`))
	if err != nil || string(payload) != `{"a":1}` {
		t.Fatalf("expected wrapped payload, got %s err=%v", payload, err)
	}

	payload, err = readMPPayload(makeCtx(`{"payment_method_id":"pix"}`))
	if err != nil || string(payload) != `{"payment_method_id":"pix"}` {
		t.Fatalf("expected bare payload, got %s err=%v", payload, err)
	}
}
