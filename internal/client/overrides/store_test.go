package overrides

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/premiumkeeper/internal/common"
	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "state", "overrides.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func backends(t *testing.T) map[string]func(t *testing.T) Backend {
	t.Helper()
	return map[string]func(t *testing.T) Backend{
		"memory": func(t *testing.T) Backend { return NewMemoryBackend() },
		"sqlite": func(t *testing.T) Backend { return NewSQLiteBackend(openSQLite(t)) },
	}
}

func newStore(b Backend) *Store {
	s := NewStore(b)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestStore_DefaultIsAbsent(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(open(t))
			m, err := s.Get(context.Background(), "Tryg")
			require.NoError(t, err)
			assert.Empty(t, m)
		})
	}
}

func TestStore_CheckThenPremium(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(open(t))
			ctx := context.Background()

			o, err := s.Set(ctx, "Tryg", "AB12345", premium.OverrideUpdate{Checked: ptr(true)})
			require.NoError(t, err)
			assert.True(t, o.Checked)
			assert.Zero(t, o.Premium)
			require.NotNil(t, o.Timestamp)

			_, err = s.Set(ctx, "Tryg", "AB12345", premium.OverrideUpdate{Premium: ptr(500.0)})
			require.NoError(t, err)

			m, err := s.Get(ctx, "Tryg")
			require.NoError(t, err)
			require.Contains(t, m, "AB12345")
			assert.True(t, m["AB12345"].Checked)
			assert.Equal(t, 500.0, m["AB12345"].Premium)
			require.NotNil(t, m["AB12345"].Timestamp)
			assert.True(t, fixedNow.Equal(*m["AB12345"].Timestamp))

			_, err = s.Set(ctx, "Tryg", "AB12345", premium.OverrideUpdate{Checked: ptr(false)})
			require.NoError(t, err)
			m, err = s.Get(ctx, "Tryg")
			require.NoError(t, err)
			assert.False(t, m["AB12345"].Checked)
			assert.Nil(t, m["AB12345"].Timestamp)
			assert.Equal(t, 500.0, m["AB12345"].Premium)
		})
	}
}

func TestStore_CompaniesAreIsolated(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(open(t))
			ctx := context.Background()

			_, err := s.Set(ctx, "Tryg", "AB1", premium.OverrideUpdate{Premium: ptr(100.0)})
			require.NoError(t, err)
			_, err = s.Set(ctx, "Alm", "AB1", premium.OverrideUpdate{Premium: ptr(200.0)})
			require.NoError(t, err)

			tryg, err := s.Get(ctx, "Tryg")
			require.NoError(t, err)
			assert.Equal(t, 100.0, tryg["AB1"].Premium)

			snap, err := s.Export(ctx)
			require.NoError(t, err)
			assert.Len(t, snap, 2)
			assert.Equal(t, 200.0, snap["Alm"]["AB1"].Premium)
		})
	}
}

func TestStore_ImportIsIdempotent(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(open(t))
			ctx := context.Background()

			_, err := s.Set(ctx, "Codan", "ZZ1", premium.OverrideUpdate{Premium: ptr(50.0)})
			require.NoError(t, err)
			_, err = s.Set(ctx, "Tryg", "OLD1", premium.OverrideUpdate{Premium: ptr(1.0)})
			require.NoError(t, err)

			ts := fixedNow.Add(-time.Hour)
			snap := Snapshot{
				"Tryg": {"AB1": {Checked: true, Premium: 500, Timestamp: &ts}},
				"Alm":  {"CD2": {Premium: 250}},
			}

			require.NoError(t, s.Import(ctx, snap))
			once, err := s.Export(ctx)
			require.NoError(t, err)

			require.NoError(t, s.Import(ctx, snap))
			twice, err := s.Export(ctx)
			require.NoError(t, err)

			assert.Equal(t, once, twice)
			assert.NotContains(t, once["Tryg"], "OLD1", "import replaces the company mapping")
			assert.Contains(t, once, "Codan", "companies missing from the payload are kept")
			assert.Equal(t, 500.0, once["Tryg"]["AB1"].Premium)
		})
	}
}

func TestStore_ImportSanitizesPremiums(t *testing.T) {
	s := newStore(NewMemoryBackend())
	require.NoError(t, s.Import(context.Background(), Snapshot{"Tryg": {"AB1": {Premium: -10}}}))

	m, err := s.Get(context.Background(), "Tryg")
	require.NoError(t, err)
	assert.Zero(t, m["AB1"].Premium)
}

func TestStore_Clear(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(open(t))
			ctx := context.Background()

			_, err := s.Set(ctx, "Tryg", "AB1", premium.OverrideUpdate{Checked: ptr(true)})
			require.NoError(t, err)
			require.NoError(t, s.Clear(ctx))

			snap, err := s.Export(ctx)
			require.NoError(t, err)
			assert.Empty(t, snap)
		})
	}
}

func TestStore_SetRequiresKeys(t *testing.T) {
	s := newStore(NewMemoryBackend())
	_, err := s.Set(context.Background(), "", "AB1", premium.OverrideUpdate{})
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestOpenSQLite_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.db")
	ctx := context.Background()

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, NewSQLiteBackend(db).Save(ctx, "Tryg", map[string]premium.PlateOverride{"AB1": {Premium: 10}}))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	m, err := NewSQLiteBackend(db).Load(ctx, "Tryg")
	require.NoError(t, err)
	assert.Equal(t, 10.0, m["AB1"].Premium)
}
