package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/frank/internal/expert"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sample(id string) expert.Expert {
	return expert.Expert{
		ID:           id,
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		Type:         expert.TypeExternal,
		Availability: expert.AvailabilityAvailable,
		Expertise:    []string{"Analytics"},
		Rating:       expert.Ptr(4.5),
		LastContact:  expert.Ptr(expert.NewDate(2024, time.March, 1)),
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "x")
	assert.ErrorContains(t, err, "unsupported storage driver")

	_, err = Open(DriverSQLite, "")
	assert.Error(t, err)
}

func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := OpenDir(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := OpenDir(dir)
	require.NoError(t, err)
	defer s2.Close()

	versions, err := s2.appliedVersions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, versions)
	schema, err := s2.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, schema)
	assert.FileExists(t, filepath.Join(dir, "frank.db"))
}

func TestMigrationVersion(t *testing.T) {
	v, err := migrationVersion("001_experts.sql")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	for _, bad := range []string{"experts.sql", "x1_experts.sql", "000_empty.sql"} {
		_, err = migrationVersion(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadMigrations(t *testing.T) {
	ms, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, ms)
	assert.Equal(t, 1, ms[0].version)
	assert.Contains(t, ms[0].body, "CREATE TABLE")
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: DriverPostgres}
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))

	lite := &Store{driver: DriverSQLite}
	assert.Equal(t, "x = ?", lite.rebind("x = ?"))
}

func TestSaveAndGetExpert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := sample("ext-100")
	require.NoError(t, s.SaveExpert(ctx, want))

	got, err := s.GetExpert(ctx, "ext-100")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveExpert_Upsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e := sample("ext-100")
	require.NoError(t, s.SaveExpert(ctx, e))
	e.Name = "Ada King"
	e.IsAIGenerated = true
	require.NoError(t, s.SaveExpert(ctx, e))

	n, err := s.CountExperts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.GetExpert(ctx, "ext-100")
	require.NoError(t, err)
	assert.Equal(t, "Ada King", got.Name)
	assert.True(t, got.IsAIGenerated)
}

func TestSaveExpert_EmptyID(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.SaveExpert(context.Background(), expert.Expert{Name: "x"}))
}

func TestGetExpert_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetExpert(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadExperts_InsertionOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.SaveExpert(ctx, sample(id)))
	}
	// Updating an early record keeps its position.
	require.NoError(t, s.SaveExpert(ctx, sample("c")))

	got, err := s.LoadExperts(ctx)
	require.NoError(t, err)
	ids := make([]string, len(got))
	for i, e := range got {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestSaveExperts_Batch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveExperts(ctx, []expert.Expert{sample("a"), sample("b")}))
	n, err := s.CountExperts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSaveExperts_RollsBackOnFailure(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// The second record has no ID, so the first must not be kept either.
	err := s.SaveExperts(ctx, []expert.Expert{sample("ai-a"), sample(""), sample("ai-c")})
	require.Error(t, err)

	n, err := s.CountExperts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = s.GetExpert(ctx, "ai-a")
	assert.ErrorIs(t, err, ErrNotFound)

	// The store is still usable after the rollback.
	require.NoError(t, s.SaveExpert(ctx, sample("ai-a")))
}

func TestLoadExperts_Empty(t *testing.T) {
	got, err := openTestStore(t).LoadExperts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHealthCheck(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveExpert(ctx, sample("x")))

	h := s.HealthCheck(ctx)
	assert.Equal(t, StatusHealthy, h.Status)
	assert.Equal(t, 1, h.Experts)
	assert.Equal(t, 1, h.Schema)
	assert.Empty(t, h.Error)
	assert.False(t, h.Timestamp.IsZero())

	require.NoError(t, s.Close())
	h = s.HealthCheck(ctx)
	assert.Equal(t, StatusUnhealthy, h.Status)
	assert.NotEmpty(t, h.Error)
}
