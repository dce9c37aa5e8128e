package users

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-rcs/site-coordination/internal/models"
)

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock), mock
}

func TestRepository_ListSearchesEveryUserColumn(t *testing.T) {
	repo, mock := newMockRepo(t)

	filter := ""
	for _, col := range []string{"email", "first_name", "last_name", "affiliation", "project", "phone"} {
		filter += ".*" + regexp.QuoteMeta("strpos("+col+", $1) > 0")
	}
	mock.ExpectQuery("FROM users WHERE" + filter).
		WithArgs("smith").
		WillReturnRows(pgxmock.NewRows([]string{"email", "password", "first_name", "last_name", "affiliation", "project", "phone", "credentials_sent", "created_at"}).
			AddRow("j.smith@example.org", "pw", "Jo", "Smith", "RWTH", "Engines", "", 2, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)))

	list, err := repo.List(context.Background(), "smith")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].CredentialsSent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_IncrementCredentialsSent(t *testing.T) {
	repo, mock := newMockRepo(t)
	increment := regexp.QuoteMeta("UPDATE users SET credentials_sent = credentials_sent + 1 WHERE email = $1")

	mock.ExpectQuery(increment).WithArgs("ada@example.org").WillReturnRows(pgxmock.NewRows([]string{"credentials_sent"}).AddRow(3))
	n, err := repo.IncrementCredentialsSent(context.Background(), "ada@example.org")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	mock.ExpectQuery(increment).WithArgs("ghost@example.org").WillReturnError(pgx.ErrNoRows)
	_, err = repo.IncrementCredentialsSent(context.Background(), "ghost@example.org")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ExistsSkipsEmptyEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	ok, err := repo.Exists(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
