package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"secretboard/internal/domain/models"
	"secretboard/internal/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryStorage(t *testing.T) repotest.Storage {
	s, err := NewStorage(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStorage_Contract(t *testing.T) {
	repotest.RunPostStorage(t, newMemoryStorage)
}

func TestSQLiteStorage_Rollback(t *testing.T) {
	repotest.RunRollback(t, newMemoryStorage)
}

func TestSQLiteStorage_FilePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "board.db")

	s, err := NewStorage(ctx, path)
	require.NoError(t, err)
	created, err := s.PostCreate(ctx, models.Post{Content: "persist", PostedBy: "alice", CreatedAt: time.Now(), UpdatedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewStorage(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.PostGetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "persist", got.Content)
}

func TestBuildDSN(t *testing.T) {
	assert.Equal(t, ":memory:", buildDSN(":memory:"))
	assert.Equal(t, "file:x.db?mode=ro", buildDSN("file:x.db?mode=ro"))
	assert.Equal(t, "file:/tmp/b.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", buildDSN("/tmp/b.db"))
}
