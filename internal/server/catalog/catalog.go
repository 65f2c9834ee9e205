// Package catalog serves the company → plate registrations file.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/dmitrijs2005/premiumkeeper/internal/common"
	"github.com/dmitrijs2005/premiumkeeper/internal/filex"
	"github.com/dmitrijs2005/premiumkeeper/internal/logging"
	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
	json "github.com/goccy/go-json"
)

// Source reads and extends the plate catalog.
type Source interface {
	Load(ctx context.Context) (premium.Catalog, error)
	Merge(ctx context.Context, company string, records []premium.PlateRecord) (int, error)
}

// FileSource keeps the catalog in a single JSON file. A missing file is an
// empty catalog.
type FileSource struct {
	path   string
	logger logging.Logger
	mu     sync.Mutex
}

func NewFileSource(path string, logger logging.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

func (s *FileSource) Load(ctx context.Context) (premium.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

func (s *FileSource) read(ctx context.Context) (premium.Catalog, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug(ctx, "catalog file missing, serving empty catalog", "path", s.path)
		return premium.Catalog{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	c := premium.Catalog{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return c, nil
}

// Merge appends the records whose plate is not yet listed under company and
// returns how many were added. Keys are written sorted.
func (s *FileSource) Merge(ctx context.Context, company string, records []premium.PlateRecord) (int, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return 0, fmt.Errorf("%w: company is required", common.ErrorValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.read(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(c[company]))
	for _, rec := range c[company] {
		seen[rec.Plate] = true
	}

	added := 0
	for _, rec := range records {
		rec.Plate = strings.TrimSpace(rec.Plate)
		if rec.Plate == "" || seen[rec.Plate] {
			continue
		}
		seen[rec.Plate] = true
		c[company] = append(c[company], rec)
		added++
	}
	if added == 0 {
		return 0, nil
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode catalog: %w", err)
	}
	if err := filex.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return 0, fmt.Errorf("write catalog: %w", err)
	}

	s.logger.Info(ctx, "catalog merged", "company", company, "added", added)
	return added, nil
}
