package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/jwalitptl/clinic-schedule/pkg/errors"
	"github.com/jwalitptl/clinic-schedule/pkg/metrics"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB, m *metrics.Metrics) BaseRepository {
	return BaseRepository{db: db, metrics: m}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// observe starts timing one database operation. The returned func records
// the outcome held in *errp and must be deferred.
func (r *BaseRepository) observe(operation string) func(errp *error) {
	start := time.Now()
	return func(errp *error) {
		if r.metrics == nil {
			return
		}
		err := *errp
		if errors.Is(err, apperrors.ErrRecordNotFound) {
			err = nil
		}
		r.metrics.DatabaseOperations.WithLabelValues(operation, metrics.Status(err)).Inc()
		r.metrics.DatabaseLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// notFound maps sql.ErrNoRows onto the repository sentinel
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ErrRecordNotFound
	}
	return err
}

func checkAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.ErrRecordNotFound
	}
	return nil
}
