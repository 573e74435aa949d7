package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"runnerly-backend/internal/domain"
	"runnerly-backend/internal/repository"
)

type compensationRepository struct {
	db *sql.DB
}

func NewCompensationRepository(db *sql.DB) repository.CompensationRepository {
	return &compensationRepository{db: db}
}

func (r *compensationRepository) Create(ctx context.Context, c *domain.CancellationCompensation) error {
	c.CreatedOn = time.Now()
	query := `INSERT INTO cancellation_compensations
	          (id, booking_id, runner_id, amount_cents, reason, was_accepted, was_started, status, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.BookingID, c.RunnerID, c.AmountCents, c.Reason,
		c.WasAccepted, c.WasStarted, c.Status, c.CreatedOn)
	if err != nil {
		// unique_violation on booking_id: a compensation already exists.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateCompensation
		}
		return err
	}
	return nil
}

func (r *compensationRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.CancellationCompensation, error) {
	c := &domain.CancellationCompensation{}
	query := `SELECT id, booking_id, runner_id, amount_cents, reason, was_accepted, was_started, status, created_on
	          FROM cancellation_compensations WHERE booking_id = $1`
	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(
		&c.ID, &c.BookingID, &c.RunnerID, &c.AmountCents, &c.Reason,
		&c.WasAccepted, &c.WasStarted, &c.Status, &c.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
