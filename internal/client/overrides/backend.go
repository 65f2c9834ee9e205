package overrides

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
)

// Backend persists whole per-company override mappings.
type Backend interface {
	// Load returns the mapping for company; an unknown company is empty.
	Load(ctx context.Context, company string) (map[string]premium.PlateOverride, error)
	// Save replaces the mapping for company.
	Save(ctx context.Context, company string, m map[string]premium.PlateOverride) error
	// Companies lists every company with stored overrides, sorted.
	Companies(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

// MemoryBackend keeps overrides in process memory.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string]map[string]premium.PlateOverride
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: map[string]map[string]premium.PlateOverride{}}
}

func (b *MemoryBackend) Load(_ context.Context, company string) (map[string]premium.PlateOverride, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return clone(b.data[company]), nil
}

func (b *MemoryBackend) Save(_ context.Context, company string, m map[string]premium.PlateOverride) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(m) == 0 {
		delete(b.data, company)
		return nil
	}
	b.data[company] = clone(m)
	return nil
}

func (b *MemoryBackend) Companies(context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.data))
	for c := range b.data {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (b *MemoryBackend) Clear(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = map[string]map[string]premium.PlateOverride{}
	return nil
}

func clone(m map[string]premium.PlateOverride) map[string]premium.PlateOverride {
	out := make(map[string]premium.PlateOverride, len(m))
	for k, v := range m {
		if v.Timestamp != nil {
			ts := *v.Timestamp
			v.Timestamp = &ts
		}
		out[k] = v
	}
	return out
}
