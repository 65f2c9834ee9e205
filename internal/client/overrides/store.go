// Package overrides is the broker's local, per-company plate state: which
// plates are checked and the premium typed for each. Nothing here is sent to
// the server; submissions go through the ledger endpoint instead.
//
// Concurrent CLI processes sharing one database follow last-write-wins per
// company.
package overrides

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/premiumkeeper/internal/common"
	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
)

// Snapshot maps company to plate to override; it is the import/export shape.
type Snapshot map[string]map[string]premium.PlateOverride

type bulkSaver interface {
	SaveAll(ctx context.Context, data map[string]map[string]premium.PlateOverride) error
}

type Store struct {
	backend Backend
	now     func() time.Time
}

func NewStore(b Backend) *Store {
	return &Store{backend: b, now: time.Now}
}

// Get returns the company's overrides; plates never touched are absent.
func (s *Store) Get(ctx context.Context, company string) (map[string]premium.PlateOverride, error) {
	return s.backend.Load(ctx, company)
}

// Set merges u into the plate's override, creating an unchecked zero-premium
// one first when none exists, and writes the company mapping back.
func (s *Store) Set(ctx context.Context, company, plate string, u premium.OverrideUpdate) (premium.PlateOverride, error) {
	if strings.TrimSpace(company) == "" || strings.TrimSpace(plate) == "" {
		return premium.PlateOverride{}, fmt.Errorf("%w: company and plate are required", common.ErrorValidation)
	}

	m, err := s.backend.Load(ctx, company)
	if err != nil {
		return premium.PlateOverride{}, err
	}

	o := m[plate].Apply(u, s.now())
	m[plate] = o

	if err := s.backend.Save(ctx, company, m); err != nil {
		return premium.PlateOverride{}, err
	}
	return o, nil
}

// Import replaces each company present in snap with its mapping. Companies
// not in snap are left alone, so importing twice equals importing once.
func (s *Store) Import(ctx context.Context, snap Snapshot) error {
	clean := make(map[string]map[string]premium.PlateOverride, len(snap))
	for company, m := range snap {
		fixed := make(map[string]premium.PlateOverride, len(m))
		for plate, o := range m {
			o = o.Apply(premium.OverrideUpdate{Premium: &o.Premium}, s.now())
			fixed[plate] = o
		}
		clean[company] = fixed
	}

	if bs, ok := s.backend.(bulkSaver); ok {
		return bs.SaveAll(ctx, clean)
	}
	for company, m := range clean {
		if err := s.backend.Save(ctx, company, m); err != nil {
			return err
		}
	}
	return nil
}

// Export returns every stored company mapping.
func (s *Store) Export(ctx context.Context) (Snapshot, error) {
	companies, err := s.backend.Companies(ctx)
	if err != nil {
		return nil, err
	}
	snap := make(Snapshot, len(companies))
	for _, c := range companies {
		m, err := s.backend.Load(ctx, c)
		if err != nil {
			return nil, err
		}
		snap[c] = m
	}
	return snap, nil
}

// Clear drops all local state, used on logout.
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.Clear(ctx)
}
