package view

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/premiumkeeper/internal/client/overrides"
	"github.com/dmitrijs2005/premiumkeeper/internal/common"
	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	cat premium.Catalog
	err error
}

func (f *fakeCatalog) Catalog(context.Context) (premium.Catalog, error) { return f.cat, f.err }

func ptr[T any](v T) *T { return &v }

func newRenderer(t *testing.T) (*Renderer, *overrides.Store) {
	t.Helper()
	store := overrides.NewStore(overrides.NewMemoryBackend())
	cat := &fakeCatalog{cat: premium.Catalog{
		"A": {{Plate: "XY12345", Date: "2024-01-01"}, {Plate: "ZZ99999", Date: "2024-02-01"}},
		"B": {{Plate: "BB11111", Date: "2024-03-01"}},
	}}
	return NewRenderer(cat, store), store
}

func TestLoad_UnknownCompanyShowsNoData(t *testing.T) {
	r, _ := newRenderer(t)

	v, err := r.Load(context.Background(), "Nope")
	require.NoError(t, err)
	require.Len(t, v.Rows, 1)
	assert.True(t, v.Rows[0].NoData)
	assert.Equal(t, 0.0, r.Summary())
}

func TestLoad_DefaultsWithoutOverride(t *testing.T) {
	r, _ := newRenderer(t)

	v, err := r.Load(context.Background(), "A")
	require.NoError(t, err)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, "XY12345", v.Rows[0].Plate)
	assert.Equal(t, "2024-01-01", v.Rows[0].Date)
	assert.False(t, v.Rows[0].Checked)
	assert.Equal(t, 0.0, v.Rows[0].Premium)
	assert.Nil(t, v.Rows[0].Timestamp)
}

func TestLoad_StoredOverride(t *testing.T) {
	r, store := newRenderer(t)
	ctx := context.Background()
	require.NoError(t, store.Import(ctx, overrides.Snapshot{
		"A": {"XY12345": {Checked: true, Premium: 500}},
	}))

	v, err := r.Load(ctx, "A")
	require.NoError(t, err)
	assert.True(t, v.Rows[0].Checked)
	assert.Equal(t, 500.0, v.Rows[0].Premium)
	assert.Equal(t, "500 DKK", FormatDKK(r.Summary()))
}

func TestLoad_CatalogFailureIsErrorRow(t *testing.T) {
	r := NewRenderer(&fakeCatalog{err: errors.New("boom")}, overrides.NewStore(overrides.NewMemoryBackend()))

	v, err := r.Load(context.Background(), "A")
	require.Error(t, err)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "boom", v.Rows[0].Err)
	assert.Same(t, v, r.Current())
}

func TestSummaryFollowsEdits(t *testing.T) {
	r, store := newRenderer(t)
	ctx := context.Background()
	_, err := r.Load(ctx, "A")
	require.NoError(t, err)

	_, err = r.SetPremium(ctx, "XY12345", "1000")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, r.Summary())

	_, err = r.SetPremium(ctx, "ZZ99999", "234,5")
	require.NoError(t, err)
	assert.Equal(t, 1234.5, r.Summary())
	assert.Equal(t, "1.234,5 DKK", FormatDKK(r.Summary()))

	row, err := r.SetPremium(ctx, "ZZ99999", "abc")
	require.NoError(t, err)
	assert.Equal(t, 0.0, row.Premium)
	assert.Equal(t, 1000.0, r.Summary())

	m, err := store.Get(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, m["XY12345"].Premium)
	assert.Equal(t, 0.0, m["ZZ99999"].Premium)
}

func TestSetChecked_StampsAndClears(t *testing.T) {
	r, _ := newRenderer(t)
	ctx := context.Background()
	_, err := r.Load(ctx, "A")
	require.NoError(t, err)

	row, err := r.SetChecked(ctx, "XY12345", true)
	require.NoError(t, err)
	assert.True(t, row.Checked)
	assert.NotNil(t, row.Timestamp)
	assert.True(t, r.Current().Rows[0].Checked)

	row, err = r.SetChecked(ctx, "XY12345", false)
	require.NoError(t, err)
	assert.False(t, row.Checked)
	assert.Nil(t, row.Timestamp)
}

func TestUpdateErrors(t *testing.T) {
	r, _ := newRenderer(t)
	ctx := context.Background()

	_, err := r.SetChecked(ctx, "XY12345", true)
	require.ErrorIs(t, err, common.ErrorValidation)

	_, err = r.Load(ctx, "A")
	require.NoError(t, err)
	_, err = r.SetChecked(ctx, "BB11111", true)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestOverview(t *testing.T) {
	r, store := newRenderer(t)
	ctx := context.Background()
	_, err := store.Set(ctx, "B", "BB11111", premium.OverrideUpdate{Premium: ptr(250.0)})
	require.NoError(t, err)

	views, err := r.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "A", views[0].Company)
	assert.Equal(t, "B", views[1].Company)
	assert.Equal(t, 250.0, views[1].Summary())
}

func TestFormatDKK(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0 DKK"},
		{500, "500 DKK"},
		{1500, "1.500 DKK"},
		{1234.5, "1.234,5 DKK"},
		{1234567.891, "1.234.567,891 DKK"},
		{0.1 + 0.2, "0,3 DKK"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDKK(tt.in), "%v", tt.in)
	}
	assert.Equal(t, "1.234,5", FormatAmount(1234.5))
	assert.Equal(t, "0,001", FormatAmount(0.0011))
}
