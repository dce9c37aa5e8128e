package registrations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campus-rcs/site-coordination/internal/models"
	"github.com/campus-rcs/site-coordination/internal/users"
	"github.com/campus-rcs/site-coordination/pkg/database"
)

const registrationColumns = `email, first_name, last_name, affiliation, project, phone, status, created_at`

// SearchColumns are matched by the free-text filter of List.
var SearchColumns = []string{"email", "first_name", "last_name", "affiliation", "project", "status"}

// Repository handles registration persistence.
type Repository struct {
	pool database.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool database.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanRegistration(row pgx.Row) (*models.Registration, error) {
	var reg models.Registration
	err := row.Scan(&reg.Email, &reg.FirstName, &reg.LastName, &reg.Affiliation, &reg.Project, &reg.Phone, &reg.Status, &reg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// Create inserts a pending registration. The email is the key; a second
// submission for the same email is rejected with ErrRegistrationExists.
func (r *Repository) Create(ctx context.Context, reg *models.Registration) error {
	const q = `INSERT INTO registrations (email, first_name, last_name, affiliation, project, phone, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		ON CONFLICT (email) DO NOTHING
		RETURNING status, created_at`
	err := r.pool.QueryRow(ctx, q, reg.Email, reg.FirstName, reg.LastName, reg.Affiliation, reg.Project, reg.Phone).
		Scan(&reg.Status, &reg.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrRegistrationExists
	}
	return err
}

// GetByEmail returns a registration by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Registration, error) {
	reg, err := scanRegistration(r.pool.QueryRow(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

// List returns registrations, newest first, optionally filtered by a substring of any search column.
func (r *Repository) List(ctx context.Context, q string) ([]*models.Registration, error) {
	sql, args := database.SearchQuery(registrationColumns, "registrations", SearchColumns, q)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]*models.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}

// Approve provisions a user from the pending registration and marks it registriert.
// The registration row is locked for the duration of the transaction; an existing
// user with the same email aborts the whole transaction and leaves the registration pending.
func (r *Repository) Approve(ctx context.Context, email, password string) (*models.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin approve: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	reg, err := scanRegistration(tx.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE email = $1 FOR UPDATE`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock registration: %w", err)
	}

	exists, err := users.Exists(ctx, tx, reg.Email)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if exists {
		return nil, models.ErrUserExists
	}
	if !reg.IsPending() {
		return nil, fmt.Errorf("registration is %s: %w", reg.Status, models.ErrNotPending)
	}

	u := models.UserFromRegistration(reg, password)
	if err := users.Insert(ctx, tx, u); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE registrations SET status = $2 WHERE email = $1`,
		reg.Email, models.RegistrationStatusRegistered); err != nil {
		return nil, fmt.Errorf("update registration status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit approve: %w", err)
	}
	return u, nil
}

// Deny moves a pending registration to denied.
func (r *Repository) Deny(ctx context.Context, email string) (*models.Registration, error) {
	reg, err := scanRegistration(r.pool.QueryRow(ctx,
		`UPDATE registrations SET status = $2 WHERE email = $1 AND status = $3 RETURNING `+registrationColumns,
		email, models.RegistrationStatusDenied, models.RegistrationStatusPending))
	if err == nil {
		return reg, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("deny registration: %w", err)
	}
	current, getErr := r.GetByEmail(ctx, email)
	if getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("registration is %s: %w", current.Status, models.ErrNotPending)
}
