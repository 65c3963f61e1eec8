package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"automarket/internal/domain/entities"
	"automarket/internal/usecase/interfaces"
)

const serviceRequestColumns = `id,customer_id,vehicle,category_id,address,zip,status,accepted_pro_id,accept_expires_at,pending_quote_id,created_at,updated_at`

type ServiceRequestRepository struct {
	db *sql.DB
}

var _ interfaces.IServiceRequestRepository = (*ServiceRequestRepository)(nil)

func NewServiceRequestRepository(db *sql.DB) *ServiceRequestRepository {
	return &ServiceRequestRepository{db: db}
}

func scanServiceRequest(row scanner) (entities.ServiceRequest, error) {
	var (
		r         entities.ServiceRequest
		proID     sql.NullString
		expiresAt sql.NullInt64
		pending   sql.NullString
		created   int64
		updated   int64
	)
	err := row.Scan(&r.ID, &r.CustomerID, &r.Vehicle, &r.CategoryID, &r.Address, &r.Zip, &r.Status,
		&proID, &expiresAt, &pending, &created, &updated)
	if err != nil {
		return entities.ServiceRequest{}, err
	}
	r.AcceptedProID = proID.String
	r.AcceptExpiresAt = fromNullMs(expiresAt)
	r.PendingQuoteID = pending.String
	r.CreatedAt = fromMs(created)
	r.UpdatedAt = fromMs(updated)
	return r, nil
}

func (s *ServiceRequestRepository) Create(ctx context.Context, r entities.ServiceRequest) (entities.ServiceRequest, error) {
	err := guarded(ctx, s.db, interfaces.EntityServiceRequest,
		`INSERT INTO service_requests(`+serviceRequestColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?) ON CONFLICT(id) DO NOTHING`,
		r.ID, r.CustomerID, r.Vehicle, r.CategoryID, r.Address, r.Zip, r.Status,
		nullable(r.AcceptedProID), msPtr(r.AcceptExpiresAt), nullable(r.PendingQuoteID), ms(r.CreatedAt), ms(r.UpdatedAt))
	if err != nil {
		return entities.ServiceRequest{}, err
	}
	return r, nil
}

func (s *ServiceRequestRepository) GetByID(ctx context.Context, id string) (entities.ServiceRequest, error) {
	r, err := scanServiceRequest(s.db.QueryRowContext(ctx, `SELECT `+serviceRequestColumns+` FROM service_requests WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return entities.ServiceRequest{}, nil
	}
	return r, err
}

func (s *ServiceRequestRepository) ListByCustomer(ctx context.Context, customerID string) ([]entities.ServiceRequest, error) {
	return s.list(ctx, `SELECT `+serviceRequestColumns+` FROM service_requests WHERE customer_id=? ORDER BY created_at DESC`, customerID)
}

func (s *ServiceRequestRepository) TransitionStatus(ctx context.Context, id string, from []entities.ServiceRequestStatus, to entities.ServiceRequestStatus, now time.Time) (entities.ServiceRequest, error) {
	if len(from) == 0 {
		return entities.ServiceRequest{}, interfaces.ConditionFailed(interfaces.EntityServiceRequest)
	}
	args := []any{to, ms(now), id}
	for _, st := range from {
		args = append(args, st)
	}
	in := strings.TrimSuffix(strings.Repeat("?,", len(from)), ",")
	err := guarded(ctx, s.db, interfaces.EntityServiceRequest,
		`UPDATE service_requests SET status=?, updated_at=? WHERE id=? AND status IN (`+in+`)`, args...)
	if err != nil {
		return entities.ServiceRequest{}, err
	}
	return s.GetByID(ctx, id)
}

// AcquireLock accepts the lead before touching the request so a missing or
// declined lead is reported ahead of a held lock.
func (s *ServiceRequestRepository) AcquireLock(ctx context.Context, cmd interfaces.AcquireLockCommand) (entities.ServiceRequest, error) {
	now := ms(cmd.Now)
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := guarded(ctx, tx, interfaces.EntityLead,
			`UPDATE leads SET status=?, updated_at=? WHERE id=? AND pro_id=? AND status IN (?,?)`,
			entities.LeadStatusAccepted, now, cmd.LeadID, cmd.ProID,
			entities.LeadStatusNew, entities.LeadStatusAccepted); err != nil {
			return err
		}
		return guarded(ctx, tx, interfaces.EntityServiceRequest,
			`UPDATE service_requests
			    SET accepted_pro_id=?, accept_expires_at=?, status=?, updated_at=?
			  WHERE id=? AND status IN (?,?,?) AND pending_quote_id IS NULL
			    AND (accepted_pro_id IS NULL OR accept_expires_at <= ?)`,
			cmd.ProID, ms(cmd.ExpiresAt), entities.ServiceRequestStatusAccepted, now,
			cmd.RequestID,
			entities.ServiceRequestStatusOpen, entities.ServiceRequestStatusDispatched, entities.ServiceRequestStatusAccepted,
			now)
	})
	if err != nil {
		return entities.ServiceRequest{}, err
	}
	return s.GetByID(ctx, cmd.RequestID)
}

func (s *ServiceRequestRepository) ListExpiredLocks(ctx context.Context, now time.Time, limit int) ([]entities.ServiceRequest, error) {
	return s.list(ctx, `SELECT `+serviceRequestColumns+` FROM service_requests
		WHERE status=? AND accept_expires_at <= ? AND pending_quote_id IS NULL
		ORDER BY accept_expires_at LIMIT ?`,
		entities.ServiceRequestStatusAccepted, ms(now), limit)
}

func (s *ServiceRequestRepository) ReleaseExpiredLock(ctx context.Context, id, proID string, now time.Time) (bool, error) {
	n, err := affected(ctx, s.db,
		`UPDATE service_requests
		    SET status=?, accepted_pro_id=NULL, accept_expires_at=NULL, updated_at=?
		  WHERE id=? AND status=? AND accepted_pro_id=? AND accept_expires_at <= ? AND pending_quote_id IS NULL`,
		entities.ServiceRequestStatusDispatched, ms(now),
		id, entities.ServiceRequestStatusAccepted, proID, ms(now))
	return n > 0, err
}

func (s *ServiceRequestRepository) DeleteCompleted(ctx context.Context, id, customerID string) error {
	return guarded(ctx, s.db, interfaces.EntityServiceRequest,
		`DELETE FROM service_requests WHERE id=? AND customer_id=? AND status=?`,
		id, customerID, entities.ServiceRequestStatusCompleted)
}

func (s *ServiceRequestRepository) list(ctx context.Context, query string, args ...any) ([]entities.ServiceRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []entities.ServiceRequest
	for rows.Next() {
		r, err := scanServiceRequest(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}
