package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"automarket/internal/domain/entities"
	"automarket/internal/usecase/interfaces"
)

const appointmentColumns = `id,request_id,quote_id,customer_id,pro_id,starts_at,status,confirmation_expires_at,created_at,updated_at`

type AppointmentRepository struct {
	db *sql.DB
}

var _ interfaces.IAppointmentRepository = (*AppointmentRepository)(nil)

func NewAppointmentRepository(db *sql.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func scanAppointment(row scanner) (entities.Appointment, error) {
	var (
		a                                   entities.Appointment
		startsAt, expiresAt, created, updtd int64
	)
	err := row.Scan(&a.ID, &a.RequestID, &a.QuoteID, &a.CustomerID, &a.ProID, &startsAt, &a.Status, &expiresAt, &created, &updtd)
	if err != nil {
		return entities.Appointment{}, err
	}
	a.StartsAt = fromMs(startsAt)
	a.ConfirmationExpiresAt = fromMs(expiresAt)
	a.CreatedAt = fromMs(created)
	a.UpdatedAt = fromMs(updtd)
	return a, nil
}

func (s *AppointmentRepository) GetByID(ctx context.Context, id string) (entities.Appointment, error) {
	a, err := scanAppointment(s.db.QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Appointment{}, nil
	}
	return a, err
}

func (s *AppointmentRepository) ListByPro(ctx context.Context, proID string) ([]entities.Appointment, error) {
	return s.list(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE pro_id=? ORDER BY starts_at`, proID)
}

func (s *AppointmentRepository) ListByCustomer(ctx context.Context, customerID string) ([]entities.Appointment, error) {
	return s.list(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE customer_id=? ORDER BY starts_at`, customerID)
}

func (s *AppointmentRepository) Transition(ctx context.Context, id string, from, to entities.AppointmentStatus, now time.Time) (entities.Appointment, error) {
	err := guarded(ctx, s.db, interfaces.EntityAppointment,
		`UPDATE appointments SET status=?, updated_at=? WHERE id=? AND status=?`,
		to, ms(now), id, from)
	if err != nil {
		return entities.Appointment{}, err
	}
	return s.GetByID(ctx, id)
}

func (s *AppointmentRepository) Close(ctx context.Context, a entities.Appointment, from, to entities.AppointmentStatus, requestTo entities.ServiceRequestStatus, now time.Time) (entities.Appointment, error) {
	at := ms(now)
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := guarded(ctx, tx, interfaces.EntityAppointment,
			`UPDATE appointments SET status=?, updated_at=? WHERE id=? AND status=?`,
			to, at, a.ID, from); err != nil {
			return err
		}
		return guarded(ctx, tx, interfaces.EntityServiceRequest,
			`UPDATE service_requests SET status=?, updated_at=? WHERE id=? AND status=?`,
			requestTo, at, a.RequestID, entities.ServiceRequestStatusScheduled)
	})
	if err != nil {
		return entities.Appointment{}, err
	}
	return s.GetByID(ctx, a.ID)
}

func (s *AppointmentRepository) list(ctx context.Context, query string, args ...any) ([]entities.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []entities.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}
