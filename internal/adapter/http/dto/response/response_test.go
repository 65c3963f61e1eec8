package response

import (
	"encoding/json"
	"testing"
	"time"

	"automarket/internal/domain/entities"
	"automarket/internal/usecase"

	"github.com/shopspring/decimal"
)

func TestFromQuote_SecondsRemaining(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	exp := now.Add(90 * time.Second)
	q := entities.Quote{
		ID:                         "q-1",
		RequestID:                  "req-1",
		ProID:                      "pro-1",
		EstimatedPrice:             decimal.RequireFromString("150"),
		Status:                     entities.QuoteStatusPendingConfirmation,
		ConfirmationTimerMinutes:   30,
		ConfirmationTimerExpiresAt: &exp,
	}

	res := FromQuote(q, now)
	if res.SecondsRemaining != 90 {
		t.Fatalf("expected 90 seconds, got %d", res.SecondsRemaining)
	}
	if res.EstimatedPrice != "150.00" {
		t.Fatalf("unexpected price: %s", res.EstimatedPrice)
	}

	if got := FromQuote(q, exp.Add(time.Second)).SecondsRemaining; got != 0 {
		t.Fatalf("lapsed quote must report 0, got %d", got)
	}

	q.Status = entities.QuoteStatusConfirmed
	if got := FromQuote(q, now).SecondsRemaining; got != 0 {
		t.Fatalf("confirmed quote must report 0, got %d", got)
	}
}

func TestFromServiceRequest_LockObservedAtNow(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	exp := now.Add(time.Hour)
	r := entities.ServiceRequest{
		ID:              "req-1",
		Status:          entities.ServiceRequestStatusAccepted,
		AcceptedProID:   "pro-1",
		AcceptExpiresAt: &exp,
	}

	res := FromServiceRequest(r, now)
	if !res.Lock.Locked || res.Lock.HolderID != "pro-1" || res.Lock.Permanent {
		t.Fatalf("unexpected lock: %+v", res.Lock)
	}
	if FromServiceRequest(r, exp).Lock.Locked {
		t.Fatalf("lock must read as released at its expiry instant")
	}

	r.AcceptExpiresAt = nil
	if l := FromServiceRequest(r, now).Lock; !l.Locked || !l.Permanent {
		t.Fatalf("expected permanent lock, got %+v", l)
	}
}

func TestFromReferralFee(t *testing.T) {
	raw := json.RawMessage(`{"id":123,"status":"approved"}`)
	f := entities.ReferralFee{
		ID:                "q-1",
		QuoteID:           "q-1",
		ProID:             "pro-1",
		Amount:            decimal.RequireFromString("12.5"),
		Status:            entities.ReferralFeeStatusPaid,
		PaymentID:         "123",
		PaymentPayloadRaw: raw,
	}

	res := FromReferralFee(f)
	if res.Amount != "12.50" || res.Status != "paid" {
		t.Fatalf("unexpected fields: %+v", res)
	}
	if res.MPPayloadRaw != string(raw) {
		t.Fatalf("unexpected raw payload: %s", res.MPPayloadRaw)
	}
	if res.MPPayload["status"] != "approved" {
		t.Fatalf("unexpected parsed payload: %+v", res.MPPayload)
	}
}

func TestFromLeadView(t *testing.T) {
	v := usecase.LeadView{
		Lead:          entities.Lead{ID: "l-1", RequestID: "req-1", ProID: "pro-2", Status: entities.LeadStatusNew},
		Request:       entities.ServiceRequest{ID: "req-1", CategoryID: "brakes", Zip: "01001", Status: entities.ServiceRequestStatusAccepted},
		LockedByOther: true,
	}
	res := FromLeadView(v)
	if !res.LockedByOther || res.CategoryID != "brakes" || res.RequestStatus != "accepted" {
		t.Fatalf("unexpected lead response: %+v", res)
	}
}

func TestFromProfile_EmptySets(t *testing.T) {
	res := FromProfile(entities.Profile{ID: "c-1", Role: entities.RoleCustomer, Active: true})
	b, _ := json.Marshal(res)
	if string(b) != `{"id":"c-1","role":"customer","category_ids":[],"zip_codes":[],"active":true}` {
		t.Fatalf("unexpected json: %s", b)
	}
}
