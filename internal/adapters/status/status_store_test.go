package status

import (
	"context"
	"path/filepath"
	"testing"

	"waypoint-route-service/internal/adapters/repositories"
	"waypoint-route-service/internal/domain"
	"waypoint-route-service/internal/platform/db"
	"waypoint-route-service/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLStore(t *testing.T) ports.StatusStore {
	t.Helper()
	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "status.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitSchema(conn))
	return NewSQLStore(conn, db.SQLite)
}

func newRedisStore(t *testing.T) ports.StatusStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client)
}

func newFileStore(t *testing.T) ports.StatusStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "statuses"))
}

var backends = []struct {
	name string
	open func(t *testing.T) ports.StatusStore
}{
	{"sql", newSQLStore},
	{"redis", newRedisStore},
	{"file", newFileStore},
}

func TestStatusStoreContract(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			store := b.open(t)
			ctx := context.Background()

			got, err := store.Load(ctx, "s1")
			require.NoError(t, err)
			assert.Empty(t, got)

			require.NoError(t, store.Save(ctx, "s1", map[string]domain.Status{
				"Sol":   domain.StatusUnvisited,
				"Alpha": domain.StatusUnvisited,
			}))
			require.NoError(t, store.Save(ctx, "s1", map[string]domain.Status{
				"Sol": domain.StatusVisited,
			}))
			require.NoError(t, store.Save(ctx, "s2", map[string]domain.Status{
				"Sol": domain.StatusSkipped,
			}))

			got, err = store.Load(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, map[string]domain.Status{
				"Sol":   domain.StatusVisited,
				"Alpha": domain.StatusUnvisited,
			}, got)

			got, err = store.Load(ctx, "s2")
			require.NoError(t, err)
			assert.Equal(t, map[string]domain.Status{"Sol": domain.StatusSkipped}, got)

			assert.Error(t, store.Save(ctx, "s1", map[string]domain.Status{"Sol": "Maybe"}))
			require.NoError(t, store.Save(ctx, "s1", nil))
		})
	}
}

func TestFileStoreRejectsPathSessions(t *testing.T) {
	store := NewFileStore(t.TempDir())
	for _, s := range []string{"", "..", "a/b", `a\b`} {
		_, err := store.Load(context.Background(), s)
		assert.Error(t, err, "session %q", s)
	}
}

func TestRedisStoreRejectsCorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	mr.HSet(redisKeyPrefix+"s1", "Sol", "Maybe")

	_, err := NewRedisStore(client).Load(context.Background(), "s1")
	assert.Error(t, err)
}
