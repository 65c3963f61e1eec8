package interfaces

import (
	"context"
	"encoding/json"
	"time"

	"automarket/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// IReferralFeeRepository abstracts persistence for ReferralFee.
//
// Fees are created and expired by the quote transitions; this repository only
// covers reads and the pending-only mutations.
type IReferralFeeRepository interface {
	GetByID(ctx context.Context, id string) (entities.ReferralFee, error)
	ListByPro(ctx context.Context, proID string) ([]entities.ReferralFee, error)
	SetAmount(ctx context.Context, id string, amount decimal.Decimal, now time.Time) (entities.ReferralFee, error)
	MarkPaid(ctx context.Context, id, paymentID string, payload json.RawMessage, now time.Time) (entities.ReferralFee, error)
}
