package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"runnerly-backend/internal/domain"
	"runnerly-backend/internal/repository"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, status, status_version, negotiation_status, counter_message,
	service_type, distance_km, hours, scheduled_start,
	base_price_cents, distance_fee_cents, addons, total_price_cents,
	driver_earnings_cents, platform_fee_cents, proposed_price_cents, customer_offered_price_cents,
	customer_email, customer_phone, customer_name,
	assigned_runner_id, assigned_runner_name, assigned_runner_phone,
	completed_date, archived_date, created_on, updated_on`

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	addons, err := json.Marshal(b.Addons)
	if err != nil {
		return fmt.Errorf("marshal addons: %w", err)
	}
	now := time.Now()
	b.CreatedOn = now
	b.UpdatedOn = now
	query := `INSERT INTO bookings (id, status, status_version, negotiation_status, counter_message,
	          service_type, distance_km, hours, scheduled_start,
	          base_price_cents, distance_fee_cents, addons, total_price_cents,
	          driver_earnings_cents, platform_fee_cents, proposed_price_cents, customer_offered_price_cents,
	          customer_email, customer_phone, customer_name,
	          assigned_runner_id, assigned_runner_name, assigned_runner_phone,
	          created_on, updated_on)
	          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)`
	_, err = r.db.ExecContext(ctx, query,
		b.ID, b.Status, b.StatusVersion, b.NegotiationStatus, b.CounterMessage,
		b.ServiceType, b.DistanceKm, b.Hours, b.ScheduledStart,
		b.BasePriceCents, b.DistanceFeeCents, addons, b.TotalPriceCents,
		b.DriverEarningsCents, b.PlatformFeeCents, b.ProposedPriceCents, b.CustomerOfferedPriceCents,
		b.CustomerEmail, b.CustomerPhone, b.CustomerName,
		b.AssignedRunnerID, b.AssignedRunnerName, b.AssignedRunnerPhone,
		b.CreatedOn, b.UpdatedOn)
	return err
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	history, err := r.History(ctx, id)
	if err != nil {
		return nil, err
	}
	b.StatusHistory = history
	return b, nil
}

func (r *bookingRepository) CommitTransition(ctx context.Context, b *domain.Booking, from domain.BookingStatus, fromVersion int32, entry domain.StatusHistoryEntry) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// completed_date and archived_date are write-once: COALESCE keeps the
	// first value even if the row is somehow revisited.
	var completedAt, archivedAt sql.NullTime
	if entry.Status == domain.BookingStatusCompleted {
		completedAt = sql.NullTime{Time: entry.Timestamp, Valid: true}
	}
	if entry.Status == domain.BookingStatusArchived {
		archivedAt = sql.NullTime{Time: entry.Timestamp, Valid: true}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE bookings SET status = $1,
		       status_version = status_version + 1,
		       completed_date = COALESCE(completed_date, $2),
		       archived_date = COALESCE(archived_date, $3),
		       updated_on = $4
		WHERE id = $5 AND status = $6 AND status_version = $7`,
		entry.Status, completedAt, archivedAt, entry.Timestamp, b.ID, from, fromVersion)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		// Lost the race: someone else committed against this version.
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO booking_status_history (booking_id, status, changed_at, changed_by, reason)
		VALUES ($1, $2, $3, $4, $5)`,
		b.ID, entry.Status, entry.Timestamp, entry.ChangedBy, entry.Reason)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	b.Status = entry.Status
	b.StatusVersion = fromVersion + 1
	b.StatusHistory = append(b.StatusHistory, entry)
	b.UpdatedOn = entry.Timestamp
	if completedAt.Valid && b.CompletedDate == nil {
		t := completedAt.Time
		b.CompletedDate = &t
	}
	if archivedAt.Valid && b.ArchivedDate == nil {
		t := archivedAt.Time
		b.ArchivedDate = &t
	}
	return true, nil
}

func (r *bookingRepository) UpdateNegotiation(ctx context.Context, b *domain.Booking) error {
	query := `UPDATE bookings SET negotiation_status = $1, counter_message = $2,
	          total_price_cents = $3, driver_earnings_cents = $4, platform_fee_cents = $5,
	          proposed_price_cents = $6, customer_offered_price_cents = $7, updated_on = $8
	          WHERE id = $9`
	res, err := r.db.ExecContext(ctx, query,
		b.NegotiationStatus, b.CounterMessage,
		b.TotalPriceCents, b.DriverEarningsCents, b.PlatformFeeCents,
		b.ProposedPriceCents, b.CustomerOfferedPriceCents, time.Now(), b.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *bookingRepository) History(ctx context.Context, bookingID string) ([]domain.StatusHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, changed_at, changed_by, reason
		FROM booking_status_history WHERE booking_id = $1 ORDER BY id ASC`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.StatusHistoryEntry
	for rows.Next() {
		var e domain.StatusHistoryEntry
		var reason sql.NullString
		if err := rows.Scan(&e.Status, &e.Timestamp, &e.ChangedBy, &reason); err != nil {
			return nil, err
		}
		e.Reason = reason.String
		history = append(history, e)
	}
	return history, rows.Err()
}

func (r *bookingRepository) ListByCustomer(ctx context.Context, customerEmail string, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "customer_email = $1", customerEmail, status, page, pageSize)
}

func (r *bookingRepository) ListByRunner(ctx context.Context, runnerID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "assigned_runner_id = $1", runnerID, status, page, pageSize)
}

func (r *bookingRepository) list(ctx context.Context, where string, whereArg interface{}, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + where

	args := []interface{}{whereArg}
	argIdx := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return bookings, count, nil
}

func (r *bookingRepository) ListCompletedBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE status = $1 AND completed_date < $2`
	rows, err := r.db.QueryContext(ctx, query, domain.BookingStatusCompleted, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *bookingRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE scheduled_start >= $1 AND scheduled_start < $2
	          AND status NOT IN ($3, $4)`
	rows, err := r.db.QueryContext(ctx, query, from, to, domain.BookingStatusCancelled, domain.BookingStatusArchived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	var (
		negotiation   sql.NullString
		counterMsg    sql.NullString
		scheduled     sql.NullTime
		addons        []byte
		runnerID      sql.NullInt32
		runnerName    sql.NullString
		runnerPhone   sql.NullString
		completedDate sql.NullTime
		archivedDate  sql.NullTime
	)
	err := row.Scan(
		&b.ID, &b.Status, &b.StatusVersion, &negotiation, &counterMsg,
		&b.ServiceType, &b.DistanceKm, &b.Hours, &scheduled,
		&b.BasePriceCents, &b.DistanceFeeCents, &addons, &b.TotalPriceCents,
		&b.DriverEarningsCents, &b.PlatformFeeCents, &b.ProposedPriceCents, &b.CustomerOfferedPriceCents,
		&b.CustomerEmail, &b.CustomerPhone, &b.CustomerName,
		&runnerID, &runnerName, &runnerPhone,
		&completedDate, &archivedDate, &b.CreatedOn, &b.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	b.NegotiationStatus = domain.NegotiationStatus(negotiation.String)
	b.CounterMessage = counterMsg.String
	if scheduled.Valid {
		t := scheduled.Time
		b.ScheduledStart = &t
	}
	if len(addons) > 0 {
		if err := json.Unmarshal(addons, &b.Addons); err != nil {
			return nil, fmt.Errorf("unmarshal addons: %w", err)
		}
	}
	if runnerID.Valid {
		id := runnerID.Int32
		b.AssignedRunnerID = &id
	}
	b.AssignedRunnerName = runnerName.String
	b.AssignedRunnerPhone = runnerPhone.String
	if completedDate.Valid {
		t := completedDate.Time
		b.CompletedDate = &t
	}
	if archivedDate.Valid {
		t := archivedDate.Time
		b.ArchivedDate = &t
	}
	return b, nil
}

func collectBookings(rows *sql.Rows) ([]domain.Booking, error) {
	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
