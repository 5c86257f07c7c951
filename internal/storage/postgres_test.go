package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vietfood/internal/db"
	"vietfood/internal/migrate"
)

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrate.Apply(ctx, pool))

	store := NewPostgres(pool, nil)
	t.Cleanup(func() {
		for _, id := range []string{"session-a", "session-b", "session-c", "session-e"} {
			_ = store.Delete(context.Background(), id)
		}
	})
	runStoreContract(t, store)
}
