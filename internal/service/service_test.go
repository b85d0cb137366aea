package service

import (
	"testing"
	"time"

	"github.com/AdamBeresnev/bracketd/internal/db"
	"github.com/AdamBeresnev/bracketd/internal/logging"
	"github.com/AdamBeresnev/bracketd/internal/store"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates an in-memory SQLite database and applies migrations
func setupTestRepo(t *testing.T) store.Repository {
	t.Helper()

	database, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, db.DriverSQLite), "Failed to apply migrations")
	return store.NewSQLStore(database)
}

type services struct {
	repo        store.Repository
	tournaments *TournamentService
	matches     *MatchService
	players     *PlayerService
}

func newServices(repo store.Repository) *services {
	logger := logging.Discard()
	ts := NewTournamentService(repo, logger)
	ts.now = func() time.Time { return time.Date(2024, time.March, 9, 17, 30, 0, 0, time.UTC) }
	return &services{
		repo:        repo,
		tournaments: ts,
		matches:     NewMatchService(repo, logger),
		players:     NewPlayerService(repo, logger),
	}
}

func forEachRepository(t *testing.T, test func(t *testing.T, s *services)) {
	t.Run("sql", func(t *testing.T) {
		test(t, newServices(setupTestRepo(t)))
	})
	t.Run("memory", func(t *testing.T) {
		test(t, newServices(store.NewMemoryStore()))
	})
}
