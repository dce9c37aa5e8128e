//go:build integration

package users

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-rcs/site-coordination/internal/models"
	"github.com/campus-rcs/site-coordination/pkg/database"
)

// Runs against SITE_COORDINATION_TEST_DATABASE_URL inside a transaction that is rolled back.
func TestRepository_ListSmithAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("SITE_COORDINATION_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SITE_COORDINATION_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, database.Migrate(ctx, pool, zap.NewNop()))

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback(ctx) })

	seed := []*models.User{
		{Email: "smith@itest.example", FirstName: "A"},
		{Email: "a1@itest.example", FirstName: "Smithers"},
		{Email: "a2@itest.example", LastName: "Goldsmith"},
		{Email: "a3@itest.example", Affiliation: "smith institute"},
		{Email: "a4@itest.example", Project: "blacksmith"},
		{Email: "a5@itest.example", Phone: "smith-ext-12"},
		{Email: "a6@itest.example", FirstName: "Jo", LastName: "Doe", Project: "Engines"},
		{Email: "a7@itest.example", FirstName: "SMITH"},
	}
	for _, u := range seed {
		u.Password = "pw"
		require.NoError(t, Insert(ctx, tx, u))
	}

	list, err := NewRepository(tx).List(ctx, "smith")
	require.NoError(t, err)

	got := make(map[string]bool)
	for _, u := range list {
		got[u.Email] = true
	}
	for _, want := range []string{"smith@itest.example", "a2@itest.example", "a3@itest.example", "a4@itest.example", "a5@itest.example"} {
		assert.True(t, got[want], want)
	}
	// strpos is case-sensitive.
	assert.False(t, got["a1@itest.example"])
	assert.False(t, got["a6@itest.example"])
	assert.False(t, got["a7@itest.example"])
}
