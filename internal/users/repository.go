package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campus-rcs/site-coordination/internal/models"
	"github.com/campus-rcs/site-coordination/pkg/database"
)

const userColumns = `email, password, first_name, last_name, affiliation, project, phone, credentials_sent, created_at`

// SearchColumns are matched by the free-text filter of List.
var SearchColumns = []string{"email", "first_name", "last_name", "affiliation", "project", "phone"}

// Repository handles user persistence.
type Repository struct {
	pool database.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool database.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Affiliation, &u.Project, &u.Phone, &u.CredentialsSent, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Insert creates a user row. It accepts a transaction so registration approval
// can insert the user and update the registration atomically.
func Insert(ctx context.Context, db database.DBTX, u *models.User) error {
	const q = `INSERT INTO users (email, password, first_name, last_name, affiliation, project, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING credentials_sent, created_at`
	err := db.QueryRow(ctx, q, u.Email, u.Password, u.FirstName, u.LastName, u.Affiliation, u.Project, u.Phone).
		Scan(&u.CredentialsSent, &u.CreatedAt)
	if database.IsUniqueViolation(err) {
		return models.ErrUserExists
	}
	return err
}

// Exists reports whether a user with this email is stored.
func Exists(ctx context.Context, db database.DBTX, email string) (bool, error) {
	var ok bool
	err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&ok)
	return ok, err
}

// Exists reports whether a user with this email is stored.
func (r *Repository) Exists(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	return Exists(ctx, r.pool, email)
}

// GetByEmail returns a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// List returns users, newest first, optionally filtered by a substring of any search column.
func (r *Repository) List(ctx context.Context, q string) ([]*models.User, error) {
	sql, args := database.SearchQuery(userColumns, "users", SearchColumns, q)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// ListEmails returns all user emails in alphabetical order.
func (r *Repository) ListEmails(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT email FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]string, 0)
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// IncrementCredentialsSent bumps the credentials_sent counter and returns the new value.
func (r *Repository) IncrementCredentialsSent(ctx context.Context, email string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET credentials_sent = credentials_sent + 1 WHERE email = $1 RETURNING credentials_sent`,
		email).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, models.ErrUserNotFound
	}
	return n, err
}
