package request

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestCreateServiceRequestRequest_Normalize(t *testing.T) {
	r := CreateServiceRequestRequest{Vehicle: " Civic 2019 ", CategoryID: " brakes ", Zip: " 01001-000 "}
	if !r.Normalize() {
		t.Fatalf("expected valid request")
	}
	if r.Vehicle != "Civic 2019" || r.CategoryID != "brakes" || r.Zip != "01001-000" {
		t.Fatalf("unexpected normalized fields: %+v", r)
	}

	r2 := CreateServiceRequestRequest{Vehicle: "Civic", CategoryID: "  ", Zip: "01001"}
	if r2.Normalize() {
		t.Fatalf("expected blank category to be rejected")
	}
}

func TestSubmitQuoteRequest_ResolvePrice(t *testing.T) {
	var r SubmitQuoteRequest
	if err := json.Unmarshal([]byte(`{"request_id":" req-1 ","estimated_price":"120.50"}`), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	price, err := r.ResolvePrice()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price.StringFixed(2) != "120.50" {
		t.Fatalf("expected 120.50, got %s", price)
	}
	if r.ResolveRequestID() != "req-1" {
		t.Fatalf("expected trimmed request id, got %q", r.ResolveRequestID())
	}

	var numeric SubmitQuoteRequest
	if err := json.Unmarshal([]byte(`{"request_id":"req-1","estimated_price":99}`), &numeric); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p, _ := numeric.ResolvePrice(); p.String() != "99" {
		t.Fatalf("expected 99, got %s", p)
	}

	for _, body := range []string{`{"request_id":"req-1"}`, `{"request_id":"req-1","estimated_price":-5}`} {
		var bad SubmitQuoteRequest
		_ = json.Unmarshal([]byte(body), &bad)
		if _, err := bad.ResolvePrice(); !errors.Is(err, ErrInvalidQuotePrice) {
			t.Fatalf("expected ErrInvalidQuotePrice for %s, got %v", body, err)
		}
	}
}

func TestSelectQuoteRequest_ResolveStartsAt(t *testing.T) {
	if !(SelectQuoteRequest{}).ResolveStartsAt().IsZero() {
		t.Fatalf("expected zero start when omitted")
	}
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	got := SelectQuoteRequest{StartsAt: &at}.ResolveStartsAt()
	if got.Location() != time.UTC || !got.Equal(at) {
		t.Fatalf("expected UTC instant equal to input, got %v", got)
	}
}

func TestUpsertProfileRequest_IsActive(t *testing.T) {
	if !(UpsertProfileRequest{}).IsActive() {
		t.Fatalf("omitted active must default to true")
	}
	off := false
	if (UpsertProfileRequest{Active: &off}).IsActive() {
		t.Fatalf("explicit false must be kept")
	}
}
