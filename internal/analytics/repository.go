package analytics

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-rcs/site-coordination/internal/models"
)

// Filter narrows analysis rows. Zero values disable a condition; dates are inclusive.
type Filter struct {
	Email string
	Start *time.Time
	End   *time.Time
}

// Repository reads the rows the summaries are built from.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an analytics repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// filtered appends bound conditions for f to a base SELECT.
func filtered(base string, f Filter, withEmail bool) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(base)
	sb.WriteString(" WHERE TRUE")
	add := func(cond string, v any) {
		args = append(args, v)
		sb.WriteString(" AND ")
		sb.WriteString(cond)
		sb.WriteString(" $")
		sb.WriteString(strconv.Itoa(len(args)))
	}
	if withEmail && f.Email != "" {
		add("email =", f.Email)
	}
	if f.Start != nil {
		add("(created_at AT TIME ZONE 'UTC')::date >=", *f.Start)
	}
	if f.End != nil {
		add("(created_at AT TIME ZONE 'UTC')::date <=", *f.End)
	}
	sb.WriteString(" ORDER BY created_at")
	return sb.String(), args
}

// Bookings returns the bookings matching f.
func (r *Repository) Bookings(ctx context.Context, f Filter) ([]models.Booking, error) {
	sql, args := filtered(`SELECT id, email, project, timeslot_raw, status, created_at FROM bookings`, f, true)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]models.Booking, 0)
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.ID, &b.Email, &b.Project, &b.TimeslotRaw, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// ResearchActivity returns researcher events matching f.
func (r *Repository) ResearchActivity(ctx context.Context, f Filter) ([]models.ResearchActivity, error) {
	sql, args := filtered(`SELECT id, email, project, presence, created_at FROM activity_research`, f, true)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]models.ResearchActivity, 0)
	for rows.Next() {
		var a models.ResearchActivity
		if err := rows.Scan(&a.ID, &a.Email, &a.Project, &a.Presence, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// ServiceActivity returns service provider events in the date range of f. The
// email condition does not apply to this table.
func (r *Repository) ServiceActivity(ctx context.Context, f Filter) ([]models.ServiceActivity, error) {
	sql, args := filtered(`SELECT id, name, company, service, presence, created_at FROM activity_service_provider`, f, false)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]models.ServiceActivity, 0)
	for rows.Next() {
		var a models.ServiceActivity
		if err := rows.Scan(&a.ID, &a.Name, &a.Company, &a.Service, &a.Presence, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
