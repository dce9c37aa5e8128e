package emaillogs

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-rcs/site-coordination/internal/models"
	"github.com/campus-rcs/site-coordination/pkg/database"
)

const emailLogColumns = `id, email_type, recipient_email, subject, reference, status, error_message, created_at`

var searchColumns = []string{"email_type", "recipient_email", "reference", "status"}

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create records one notification attempt.
func (r *Repository) Create(ctx context.Context, el *models.EmailLog) error {
	const q = `INSERT INTO email_logs (email_type, recipient_email, subject, reference, status, error_message)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, NULLIF($6, ''))
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, el.EmailType, el.RecipientEmail, el.Subject, el.Reference, el.Status, el.ErrorMessage).
		Scan(&el.ID, &el.CreatedAt)
}

// List returns email logs, newest first, optionally filtered.
func (r *Repository) List(ctx context.Context, q string) ([]*models.EmailLog, error) {
	sql, args := database.SearchQuery(emailLogColumns, "email_logs", searchColumns, q)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]*models.EmailLog, 0)
	for rows.Next() {
		var el models.EmailLog
		var subject, reference, errMsg *string
		if err := rows.Scan(&el.ID, &el.EmailType, &el.RecipientEmail, &subject, &reference, &el.Status, &errMsg, &el.CreatedAt); err != nil {
			return nil, err
		}
		if subject != nil {
			el.Subject = *subject
		}
		if reference != nil {
			el.Reference = *reference
		}
		if errMsg != nil {
			el.ErrorMessage = *errMsg
		}
		list = append(list, &el)
	}
	return list, rows.Err()
}
