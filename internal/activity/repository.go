package activity

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-rcs/site-coordination/internal/models"
	"github.com/campus-rcs/site-coordination/pkg/database"
)

// Table selectors accepted by the activities endpoints.
const (
	TableResearch = "research"
	TableService  = "service"
)

const (
	researchColumns = `id, email, project, presence, created_at`
	serviceColumns  = `id, name, company, service, presence, created_at`
)

var (
	researchSearchColumns = []string{"email", "project", "presence"}
	serviceSearchColumns  = []string{"name", "company", "service", "presence"}
)

// NormalizeTable maps any unknown selector to the research table.
func NormalizeTable(table string) string {
	if table == TableService {
		return TableService
	}
	return TableResearch
}

// Repository handles the append-only activity tables. Rows are never updated or deleted.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an activity repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertResearch records a researcher check-in or check-out.
func (r *Repository) InsertResearch(ctx context.Context, a *models.ResearchActivity) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO activity_research (email, project, presence) VALUES ($1, $2, $3) RETURNING id, created_at`,
		a.Email, a.Project, a.Presence).Scan(&a.ID, &a.CreatedAt)
}

// InsertService records a service provider check-in or check-out.
func (r *Repository) InsertService(ctx context.Context, a *models.ServiceActivity) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO activity_service_provider (name, company, service, presence) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		a.Name, a.Company, a.Service, a.Presence).Scan(&a.ID, &a.CreatedAt)
}

// ListResearch returns researcher activity, newest first, optionally filtered.
func (r *Repository) ListResearch(ctx context.Context, q string) ([]models.ResearchActivity, error) {
	sql, args := database.SearchQuery(researchColumns, "activity_research", researchSearchColumns, q)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResearch(rows)
}

// ListService returns service provider activity, newest first, optionally filtered.
func (r *Repository) ListService(ctx context.Context, q string) ([]models.ServiceActivity, error) {
	sql, args := database.SearchQuery(serviceColumns, "activity_service_provider", serviceSearchColumns, q)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectService(rows)
}

func collectResearch(rows pgx.Rows) ([]models.ResearchActivity, error) {
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

func collectService(rows pgx.Rows) ([]models.ServiceActivity, error) {
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
