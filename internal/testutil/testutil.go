package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mfreitas/memflash/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations
// applied, configured the same way as the production database.
func NewTestDB(t *testing.T) *sql.DB {
	database, err := db.Open("file::memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, database.Close())
	})
	return database.DB
}
