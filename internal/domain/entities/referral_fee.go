package entities

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ReferralFeeStatus tracks the owning quote's terminal state.
type ReferralFeeStatus string

const (
	ReferralFeeStatusPending ReferralFeeStatus = "pending"
	ReferralFeeStatusPaid    ReferralFeeStatus = "paid"
	ReferralFeeStatusExpired ReferralFeeStatus = "expired"
)

// ReferralFee is the marketplace fee owed by a professional for a selected quote.
//
// Storage model (DynamoDB):
//   - PK: id (= quote id, one fee per quote)
//   - GSI (pro_id-index): pro_id
//
// MercadoPago payload:
//   - PaymentPayloadRaw keeps the provider response (JSON) for traceability/audit.
type ReferralFee struct {
	ID                string            `json:"id"`
	QuoteID           string            `json:"quote_id"`
	RequestID         string            `json:"request_id"`
	ProID             string            `json:"pro_id"`
	Amount            decimal.Decimal   `json:"amount"`
	Status            ReferralFeeStatus `json:"status"`
	PaymentID         string            `json:"payment_id,omitempty"`
	PaidAt            *time.Time        `json:"paid_at,omitempty"`
	PaymentPayloadRaw json.RawMessage   `json:"payment_payload_raw,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}
