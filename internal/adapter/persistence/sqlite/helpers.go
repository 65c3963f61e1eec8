package sqlite

import (
	"context"
	"database/sql"
	"time"

	"automarket/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
)

type scanner interface {
	Scan(dest ...any) error
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// guarded runs a conditional statement and reports a condition failure on
// entity when it touched no row.
func guarded(ctx context.Context, db execer, entity, query string, args ...any) error {
	n, err := affected(ctx, db, query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return interfaces.ConditionFailed(entity)
	}
	return nil
}

func affected(ctx context.Context, db execer, query string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Timestamps are stored as unix milliseconds so conditions compare integers.
func ms(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func msPtr(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: ms(*t), Valid: true}
}

func fromMs(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func fromNullMs(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMs(v.Int64)
	return &t
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
