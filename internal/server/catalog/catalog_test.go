package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/premiumkeeper/internal/common"
	"github.com/dmitrijs2005/premiumkeeper/internal/logging"
	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSource(t *testing.T, body string) (*FileSource, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plates.json")
	if body != "" {
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}
	return NewFileSource(path, logging.Nop{}), path
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	s, _ := newSource(t, "")
	c, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, c)
}

func TestLoad_PreservesOrder(t *testing.T) {
	s, _ := newSource(t, `{"Tryg":[{"plate":"CD2","date":"2024-02-01"},{"plate":"AB1","date":"2024-01-01"}]}`)

	c, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []premium.PlateRecord{
		{Plate: "CD2", Date: "2024-02-01"},
		{Plate: "AB1", Date: "2024-01-01"},
	}, c["Tryg"])
}

func TestLoad_Corrupt(t *testing.T) {
	s, _ := newSource(t, `{"Tryg":[`)
	_, err := s.Load(context.Background())
	require.Error(t, err)
}

func TestMerge_AddsOnlyNewPlates(t *testing.T) {
	s, path := newSource(t, `{"Tryg":[{"plate":"AB1","date":"2024-01-01"}]}`)
	ctx := context.Background()

	added, err := s.Merge(ctx, "Tryg", []premium.PlateRecord{
		{Plate: "AB1", Date: "2024-03-01"},
		{Plate: "CD2", Date: "2024-03-01"},
		{Plate: "CD2", Date: "2024-03-02"},
		{Plate: " ", Date: "2024-03-02"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	added, err = s.Merge(ctx, "Alm", []premium.PlateRecord{{Plate: "AB1", Date: "2024-03-03"}})
	require.NoError(t, err)
	assert.Equal(t, 1, added, "same plate under another company is a separate registration")

	c, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, c["Tryg"], 2)
	assert.Equal(t, "2024-01-01", c["Tryg"][0].Date, "existing records are untouched")
	assert.Len(t, c["Alm"], 1)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(raw), `"Alm"`), strings.Index(string(raw), `"Tryg"`), "keys are sorted")
}

func TestMerge_NothingNewLeavesFileAlone(t *testing.T) {
	s, path := newSource(t, "")

	added, err := s.Merge(context.Background(), "Tryg", nil)
	require.NoError(t, err)
	assert.Zero(t, added)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestMerge_RequiresCompany(t *testing.T) {
	s, _ := newSource(t, "")
	_, err := s.Merge(context.Background(), "  ", []premium.PlateRecord{{Plate: "AB1"}})
	require.ErrorIs(t, err, common.ErrorValidation)
}
