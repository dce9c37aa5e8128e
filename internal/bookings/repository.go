package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campus-rcs/site-coordination/internal/models"
	"github.com/campus-rcs/site-coordination/pkg/database"
)

const bookingColumns = `id, email, first_name, last_name, project, timeslot_raw, duration_weeks, status, created_at`

// SearchColumns are matched by the free-text filter of List.
var SearchColumns = []string{"email", "first_name", "last_name", "project", "timeslot_raw", "status"}

// Repository handles booking persistence.
type Repository struct {
	pool database.Pool
}

// NewRepository creates a bookings repository.
func NewRepository(pool database.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(&b.ID, &b.Email, &b.FirstName, &b.LastName, &b.Project, &b.TimeslotRaw, &b.DurationWeeks, &b.Status, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a pending booking.
func (r *Repository) Create(ctx context.Context, b *models.Booking) error {
	const q = `INSERT INTO bookings (email, first_name, last_name, project, timeslot_raw, duration_weeks, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING id, status, created_at`
	return r.pool.QueryRow(ctx, q, b.Email, b.FirstName, b.LastName, b.Project, b.TimeslotRaw, b.DurationWeeks).
		Scan(&b.ID, &b.Status, &b.CreatedAt)
}

// GetByID returns a booking by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// List returns bookings, newest first, optionally filtered by a substring of any search column.
func (r *Repository) List(ctx context.Context, q string) ([]*models.Booking, error) {
	sql, args := database.SearchQuery(bookingColumns, "bookings", SearchColumns, q)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// Transition moves a pending booking to status to and returns the updated row.
func (r *Repository) Transition(ctx context.Context, id int64, to string) (*models.Booking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx,
		`UPDATE bookings SET status = $2 WHERE id = $1 AND status = $3 RETURNING `+bookingColumns,
		id, to, models.BookingStatusPending))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("booking is %s: %w", current.Status, models.ErrNotPending)
}

func collect(rows pgx.Rows) ([]*models.Booking, error) {
	list := make([]*models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}
