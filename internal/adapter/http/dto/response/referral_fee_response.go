package response

import (
	"encoding/json"
	"time"

	"automarket/internal/domain/entities"
)

type ReferralFeeResponse struct {
	ID        string     `json:"id"`
	QuoteID   string     `json:"quote_id"`
	RequestID string     `json:"request_id"`
	ProID     string     `json:"pro_id"`
	Amount    string     `json:"amount"`
	Status    string     `json:"status"`
	PaymentID string     `json:"payment_id,omitempty"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	MPPayloadRaw string                 `json:"mp_payload_raw,omitempty"`
	MPPayload    map[string]interface{} `json:"mp_payload,omitempty"`
}

func FromReferralFee(f entities.ReferralFee) ReferralFeeResponse {
	res := ReferralFeeResponse{
		ID:           f.ID,
		QuoteID:      f.QuoteID,
		RequestID:    f.RequestID,
		ProID:        f.ProID,
		Amount:       f.Amount.StringFixed(2),
		Status:       string(f.Status),
		PaymentID:    f.PaymentID,
		PaidAt:       f.PaidAt,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
		MPPayloadRaw: string(f.PaymentPayloadRaw),
	}
	if len(f.PaymentPayloadRaw) > 0 {
		var parsed map[string]interface{}
		if err := json.Unmarshal(f.PaymentPayloadRaw, &parsed); err == nil {
			res.MPPayload = parsed
		}
	}
	return res
}

func FromReferralFees(items []entities.ReferralFee) []ReferralFeeResponse {
	out := make([]ReferralFeeResponse, 0, len(items))
	for _, f := range items {
		out = append(out, FromReferralFee(f))
	}
	return out
}
