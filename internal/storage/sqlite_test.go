package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dompetku/internal/common"
)

// createTestMedium opens a migrated SQLite medium in a temp directory.
func createTestMedium(t *testing.T, quota int64) (*SQLiteMedium, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	medium, err := NewSQLiteMedium(context.Background(), dbPath, quota)
	require.NoError(t, err)
	t.Cleanup(func() { _ = medium.Close() })

	return medium, dbPath
}

func TestSQLiteMedium_CRUD(t *testing.T) {
	medium, _ := createTestMedium(t, 0)

	_, ok, err := medium.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, medium.Set("b", "2"))
	require.NoError(t, medium.Set("a", "1"))
	require.NoError(t, medium.Set("a", "one"))

	value, ok, err := medium.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "one", value)

	keys, err := medium.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, medium.Delete("a"))
	require.NoError(t, medium.Delete("a"))
	keys, err = medium.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)
}

func TestSQLiteMedium_Quota(t *testing.T) {
	medium, _ := createTestMedium(t, 12)

	require.NoError(t, medium.Set("key", "12345"))
	require.NoError(t, medium.Set("key", "123456789"), "overwrite should not count the old value")
	assert.ErrorIs(t, medium.Set("other", "x"), common.ErrQuotaExceeded)
}

func TestSQLiteMedium_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	medium, dbPath := createTestMedium(t, 0)

	client := NewClient(medium, "")
	require.NoError(t, client.Save("savingsTarget", map[string]float64{"percentage": 20}))
	require.NoError(t, medium.Close())

	reopened, err := NewSQLiteMedium(ctx, dbPath, 0)
	require.NoError(t, err)
	defer reopened.Close()

	var got map[string]float64
	found, err := NewClient(reopened, "").Load("savingsTarget", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 20.0, got["percentage"])
}

func TestSQLiteMedium_UnavailableAfterClose(t *testing.T) {
	medium, _ := createTestMedium(t, 0)
	assert.True(t, medium.Available())

	require.NoError(t, medium.Close())
	assert.False(t, medium.Available())

	err := NewClient(medium, "").Save("transactions", []string{})
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
}

func TestSQLiteMedium_Migrate(t *testing.T) {
	ctx := context.Background()
	medium, _ := createTestMedium(t, 0)

	// Running again is a no-op.
	require.NoError(t, medium.Migrate(ctx))

	var version int
	require.NoError(t, medium.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestNewSQLiteMedium_RequiresPath(t *testing.T) {
	_, err := NewSQLiteMedium(context.Background(), " ", 0)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}
