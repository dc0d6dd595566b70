package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/banksync/internal/client/store/drivers/sqlite"
	"github.com/aussiebroadwan/banksync/internal/client/store/storetest"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(sqlite.DSN(path))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestStore(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "banksync.db"))
	defer s.Close()

	require.NoError(t, s.Ping(context.Background()))
	storetest.Run(t, s)
}

func TestSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banksync.db")
	ctx := context.Background()

	s := openStore(t, path)
	require.NoError(t, s.Set(ctx, "session", []byte("2")))
	require.NoError(t, s.Close())

	// Migrations are a no-op the second time
	s = openStore(t, path)
	defer s.Close()

	v, err := s.Get(ctx, "session")
	require.NoError(t, err)
	require.Equal(t, []byte("2"), v)
}
