package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"automarket/internal/domain/entities"
	"automarket/internal/usecase/interfaces"
)

const quoteColumns = `id,request_id,pro_id,estimated_price,description,status,confirmation_timer_minutes,confirmation_timer_expires_at,selected_at,confirmed_at,created_at,updated_at`

type QuoteRepository struct {
	db *sql.DB
}

var _ interfaces.IQuoteRepository = (*QuoteRepository)(nil)

func NewQuoteRepository(db *sql.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func scanQuote(row scanner) (entities.Quote, error) {
	var (
		q                               entities.Quote
		price                           string
		expiresAt, selectedAt, confirmd sql.NullInt64
		created, updated                int64
	)
	err := row.Scan(&q.ID, &q.RequestID, &q.ProID, &price, &q.Description, &q.Status, &q.ConfirmationTimerMinutes,
		&expiresAt, &selectedAt, &confirmd, &created, &updated)
	if err != nil {
		return entities.Quote{}, err
	}
	q.EstimatedPrice = parseDecimal(price)
	q.ConfirmationTimerExpiresAt = fromNullMs(expiresAt)
	q.SelectedAt = fromNullMs(selectedAt)
	q.ConfirmedAt = fromNullMs(confirmd)
	q.CreatedAt = fromMs(created)
	q.UpdatedAt = fromMs(updated)
	return q, nil
}

// Create stores a submitted quote while its pro holds a live or permanent
// lock on the request.
func (s *QuoteRepository) Create(ctx context.Context, q entities.Quote, now time.Time) (entities.Quote, error) {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM service_requests
			  WHERE id=? AND accepted_pro_id=? AND status IN (?,?)
			    AND (accept_expires_at IS NULL OR accept_expires_at > ?)`,
			q.RequestID, q.ProID,
			entities.ServiceRequestStatusAccepted, entities.ServiceRequestStatusScheduled, ms(now)).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return interfaces.ConditionFailed(interfaces.EntityServiceRequest)
		}
		if err != nil {
			return err
		}
		return guarded(ctx, tx, interfaces.EntityQuote,
			`INSERT INTO quotes(`+quoteColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?) ON CONFLICT(id) DO NOTHING`,
			q.ID, q.RequestID, q.ProID, q.EstimatedPrice.String(), q.Description, q.Status, q.ConfirmationTimerMinutes,
			msPtr(q.ConfirmationTimerExpiresAt), msPtr(q.SelectedAt), msPtr(q.ConfirmedAt), ms(q.CreatedAt), ms(q.UpdatedAt))
	})
	if err != nil {
		return entities.Quote{}, err
	}
	return q, nil
}

func (s *QuoteRepository) GetByID(ctx context.Context, id string) (entities.Quote, error) {
	q, err := scanQuote(s.db.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Quote{}, nil
	}
	return q, err
}

func (s *QuoteRepository) ListByRequest(ctx context.Context, requestID string) ([]entities.Quote, error) {
	return s.list(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE request_id=? ORDER BY created_at`, requestID)
}

func (s *QuoteRepository) ListByPro(ctx context.Context, proID string) ([]entities.Quote, error) {
	return s.list(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE pro_id=? ORDER BY created_at DESC`, proID)
}

// Select claims the request's in-flight slot first, so a competing selection
// surfaces as a request condition rather than as the partial index rejecting
// a second pending quote.
func (s *QuoteRepository) Select(ctx context.Context, cmd interfaces.SelectQuoteCommand) (entities.Quote, error) {
	now := ms(cmd.Now)
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := guarded(ctx, tx, interfaces.EntityServiceRequest,
			`UPDATE service_requests SET pending_quote_id=?, updated_at=?
			  WHERE id=? AND customer_id=? AND status=? AND pending_quote_id IS NULL
			    AND accepted_pro_id=? AND accept_expires_at > ?`,
			cmd.QuoteID, now, cmd.RequestID, cmd.CustomerID, entities.ServiceRequestStatusAccepted,
			cmd.ProID, now); err != nil {
			return err
		}
		if err := guarded(ctx, tx, interfaces.EntityQuote,
			`UPDATE quotes SET status=?, confirmation_timer_expires_at=?, selected_at=?, updated_at=?
			  WHERE id=? AND request_id=? AND status=?`,
			entities.QuoteStatusPendingConfirmation, ms(cmd.ExpiresAt), now, now,
			cmd.QuoteID, cmd.RequestID, entities.QuoteStatusSubmitted); err != nil {
			return err
		}
		a := cmd.Appointment
		if err := guarded(ctx, tx, interfaces.EntityAppointment,
			`INSERT INTO appointments(`+appointmentColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?) ON CONFLICT DO NOTHING`,
			a.ID, a.RequestID, a.QuoteID, a.CustomerID, a.ProID, ms(a.StartsAt), a.Status,
			ms(a.ConfirmationExpiresAt), ms(a.CreatedAt), ms(a.UpdatedAt)); err != nil {
			return err
		}
		f := cmd.Fee
		return guarded(ctx, tx, interfaces.EntityReferralFee,
			`INSERT INTO referral_fees(`+referralFeeColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?) ON CONFLICT DO NOTHING`,
			f.ID, f.QuoteID, f.RequestID, f.ProID, f.Amount.String(), f.Status,
			nullable(f.PaymentID), msPtr(f.PaidAt), nullable(string(f.PaymentPayloadRaw)), ms(f.CreatedAt), ms(f.UpdatedAt))
	})
	if err != nil {
		return entities.Quote{}, err
	}
	return s.GetByID(ctx, cmd.QuoteID)
}

// Confirm applies only while now is strictly before the stored expiry; the
// request lock becomes permanent.
func (s *QuoteRepository) Confirm(ctx context.Context, cmd interfaces.ConfirmQuoteCommand) (entities.Quote, error) {
	now := ms(cmd.Now)
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := guarded(ctx, tx, interfaces.EntityQuote,
			`UPDATE quotes SET status=?, confirmed_at=?, updated_at=?
			  WHERE id=? AND status=? AND pro_id=? AND confirmation_timer_expires_at > ?`,
			entities.QuoteStatusConfirmed, now, now,
			cmd.QuoteID, entities.QuoteStatusPendingConfirmation, cmd.ProID, now); err != nil {
			return err
		}
		if err := guarded(ctx, tx, interfaces.EntityAppointment,
			`UPDATE appointments SET status=?, updated_at=? WHERE id=? AND status=?`,
			entities.AppointmentStatusScheduled, now, cmd.QuoteID, entities.AppointmentStatusPendingConfirmation); err != nil {
			return err
		}
		return guarded(ctx, tx, interfaces.EntityServiceRequest,
			`UPDATE service_requests
			    SET status=?, accepted_pro_id=?, accept_expires_at=NULL, pending_quote_id=NULL, updated_at=?
			  WHERE id=? AND pending_quote_id=?`,
			entities.ServiceRequestStatusScheduled, cmd.ProID, now, cmd.RequestID, cmd.QuoteID)
	})
	if err != nil {
		return entities.Quote{}, err
	}
	return s.GetByID(ctx, cmd.QuoteID)
}

func (s *QuoteRepository) Decline(ctx context.Context, id, proID string, now time.Time) (entities.Quote, error) {
	err := guarded(ctx, s.db, interfaces.EntityQuote,
		`UPDATE quotes SET status=?, updated_at=? WHERE id=? AND pro_id=? AND status=?`,
		entities.QuoteStatusDeclined, ms(now), id, proID, entities.QuoteStatusSubmitted)
	if err != nil {
		return entities.Quote{}, err
	}
	return s.GetByID(ctx, id)
}

func (s *QuoteRepository) ListLapsed(ctx context.Context, now time.Time, limit int) ([]entities.Quote, error) {
	return s.list(ctx, `SELECT `+quoteColumns+` FROM quotes
		WHERE status=? AND confirmation_timer_expires_at <= ?
		ORDER BY confirmation_timer_expires_at LIMIT ?`,
		entities.QuoteStatusPendingConfirmation, ms(now), limit)
}

func (s *QuoteRepository) ListAwaitingConfirmation(ctx context.Context) ([]entities.Quote, error) {
	return s.list(ctx, `SELECT `+quoteColumns+` FROM quotes
		WHERE status=? ORDER BY confirmation_timer_expires_at`,
		entities.QuoteStatusPendingConfirmation)
}

// Expire is a no-op unless the quote is still pending and lapsed at now.
// Siblings only move from the state the cascade expects.
func (s *QuoteRepository) Expire(ctx context.Context, q entities.Quote, now time.Time) (bool, error) {
	at := ms(now)
	expired := false
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		n, err := affected(ctx, tx,
			`UPDATE quotes SET status=?, updated_at=? WHERE id=? AND status=? AND confirmation_timer_expires_at <= ?`,
			entities.QuoteStatusExpired, at, q.ID, entities.QuoteStatusPendingConfirmation, at)
		if err != nil || n == 0 {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE appointments SET status=?, updated_at=? WHERE id=? AND status=?`,
			entities.AppointmentStatusExpired, at, q.ID, entities.AppointmentStatusPendingConfirmation); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE referral_fees SET status=?, updated_at=? WHERE id=? AND status=?`,
			entities.ReferralFeeStatusExpired, at, q.ID, entities.ReferralFeeStatusPending); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE service_requests SET pending_quote_id=NULL, updated_at=? WHERE id=? AND pending_quote_id=?`,
			at, q.RequestID, q.ID); err != nil {
			return err
		}
		expired = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return expired, nil
}

func (s *QuoteRepository) list(ctx context.Context, query string, args ...any) ([]entities.Quote, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []entities.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, q)
	}
	return res, rows.Err()
}
