package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"automarket/internal/domain/entities"
	"automarket/internal/usecase/interfaces"
)

const leadColumns = `id,request_id,pro_id,status,created_at,updated_at`

type LeadRepository struct {
	db *sql.DB
}

var _ interfaces.ILeadRepository = (*LeadRepository)(nil)

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func scanLead(row scanner) (entities.Lead, error) {
	var (
		l                entities.Lead
		created, updated int64
	)
	if err := row.Scan(&l.ID, &l.RequestID, &l.ProID, &l.Status, &created, &updated); err != nil {
		return entities.Lead{}, err
	}
	l.CreatedAt = fromMs(created)
	l.UpdatedAt = fromMs(updated)
	return l, nil
}

// CreateBatch skips leads that already exist for the same (request, pro).
func (s *LeadRepository) CreateBatch(ctx context.Context, leads []entities.Lead) ([]entities.Lead, error) {
	created := make([]entities.Lead, 0, len(leads))
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, l := range leads {
			n, err := affected(ctx, tx,
				`INSERT INTO leads(`+leadColumns+`) VALUES (?,?,?,?,?,?) ON CONFLICT DO NOTHING`,
				l.ID, l.RequestID, l.ProID, l.Status, ms(l.CreatedAt), ms(l.UpdatedAt))
			if err != nil {
				return err
			}
			if n > 0 {
				created = append(created, l)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *LeadRepository) GetByID(ctx context.Context, id string) (entities.Lead, error) {
	l, err := scanLead(s.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Lead{}, nil
	}
	return l, err
}

func (s *LeadRepository) ListByPro(ctx context.Context, proID string) ([]entities.Lead, error) {
	return s.list(ctx, `SELECT `+leadColumns+` FROM leads WHERE pro_id=? ORDER BY created_at DESC`, proID)
}

func (s *LeadRepository) ListByRequest(ctx context.Context, requestID string) ([]entities.Lead, error) {
	return s.list(ctx, `SELECT `+leadColumns+` FROM leads WHERE request_id=? ORDER BY created_at`, requestID)
}

func (s *LeadRepository) Decline(ctx context.Context, id, proID string, now time.Time) (entities.Lead, error) {
	err := guarded(ctx, s.db, interfaces.EntityLead,
		`UPDATE leads SET status=?, updated_at=? WHERE id=? AND pro_id=? AND status=?`,
		entities.LeadStatusDeclined, ms(now), id, proID, entities.LeadStatusNew)
	if err != nil {
		return entities.Lead{}, err
	}
	return s.GetByID(ctx, id)
}

func (s *LeadRepository) list(ctx context.Context, query string, args ...any) ([]entities.Lead, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []entities.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, rows.Err()
}
