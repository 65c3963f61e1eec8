package request

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ReferralFeePayRequest is the payload of the pay route.
//
// `mp_payload` is forwarded as raw JSON to support varying Mercado Pago
// schemas; a bare object is accepted too.
type ReferralFeePayRequest struct {
	MPPayload json.RawMessage `json:"mp_payload"`
}

type SetReferralFeeAmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
