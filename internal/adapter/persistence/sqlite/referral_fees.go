package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"automarket/internal/domain/entities"
	"automarket/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
)

const referralFeeColumns = `id,quote_id,request_id,pro_id,amount,status,payment_id,paid_at,payment_payload_raw,created_at,updated_at`

type ReferralFeeRepository struct {
	db *sql.DB
}

var _ interfaces.IReferralFeeRepository = (*ReferralFeeRepository)(nil)

func NewReferralFeeRepository(db *sql.DB) *ReferralFeeRepository {
	return &ReferralFeeRepository{db: db}
}

func scanReferralFee(row scanner) (entities.ReferralFee, error) {
	var (
		f                  entities.ReferralFee
		amount             string
		paymentID, payload sql.NullString
		paidAt             sql.NullInt64
		created, updated   int64
	)
	err := row.Scan(&f.ID, &f.QuoteID, &f.RequestID, &f.ProID, &amount, &f.Status, &paymentID, &paidAt, &payload, &created, &updated)
	if err != nil {
		return entities.ReferralFee{}, err
	}
	f.Amount = parseDecimal(amount)
	f.PaymentID = paymentID.String
	f.PaidAt = fromNullMs(paidAt)
	if payload.Valid && payload.String != "" {
		f.PaymentPayloadRaw = json.RawMessage(payload.String)
	}
	f.CreatedAt = fromMs(created)
	f.UpdatedAt = fromMs(updated)
	return f, nil
}

func (s *ReferralFeeRepository) GetByID(ctx context.Context, id string) (entities.ReferralFee, error) {
	f, err := scanReferralFee(s.db.QueryRowContext(ctx, `SELECT `+referralFeeColumns+` FROM referral_fees WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return entities.ReferralFee{}, nil
	}
	return f, err
}

func (s *ReferralFeeRepository) ListByPro(ctx context.Context, proID string) ([]entities.ReferralFee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+referralFeeColumns+` FROM referral_fees WHERE pro_id=? ORDER BY created_at DESC`, proID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []entities.ReferralFee
	for rows.Next() {
		f, err := scanReferralFee(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, f)
	}
	return res, rows.Err()
}

func (s *ReferralFeeRepository) SetAmount(ctx context.Context, id string, amount decimal.Decimal, now time.Time) (entities.ReferralFee, error) {
	err := guarded(ctx, s.db, interfaces.EntityReferralFee,
		`UPDATE referral_fees SET amount=?, updated_at=? WHERE id=? AND status=?`,
		amount.String(), ms(now), id, entities.ReferralFeeStatusPending)
	if err != nil {
		return entities.ReferralFee{}, err
	}
	return s.GetByID(ctx, id)
}

func (s *ReferralFeeRepository) MarkPaid(ctx context.Context, id, paymentID string, payload json.RawMessage, now time.Time) (entities.ReferralFee, error) {
	err := guarded(ctx, s.db, interfaces.EntityReferralFee,
		`UPDATE referral_fees SET status=?, payment_id=?, paid_at=?, payment_payload_raw=?, updated_at=? WHERE id=? AND status=?`,
		entities.ReferralFeeStatusPaid, paymentID, ms(now), nullable(string(payload)), ms(now),
		id, entities.ReferralFeeStatusPending)
	if err != nil {
		return entities.ReferralFee{}, err
	}
	return s.GetByID(ctx, id)
}
