package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/dmitrijs2005/premiumkeeper/internal/filex"
	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
	json "github.com/goccy/go-json"
)

// FileRepository keeps the ledger as one JSON array on disk. Each append
// rewrites the file through a temp file and rename under a mutex.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Append(ctx context.Context, rec premium.SubmissionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read()
	if err != nil {
		return err
	}
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := filex.WriteFileAtomic(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

func (r *FileRepository) List(ctx context.Context) ([]premium.SubmissionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read()
}

func (r *FileRepository) Close() error { return nil }

func (r *FileRepository) read() ([]premium.SubmissionRecord, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []premium.SubmissionRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return []premium.SubmissionRecord{}, nil
	}

	records := []premium.SubmissionRecord{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	return records, nil
}
