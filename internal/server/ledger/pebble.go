package ledger

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
	json "github.com/goccy/go-json"
)

var pebblePrefix = []byte("premium/")

// PebbleRepository stores one key per record, "premium/" followed by a
// big-endian sequence number, so iteration order is append order.
type PebbleRepository struct {
	db  *pebble.DB
	mu  sync.Mutex
	seq uint64
}

func NewPebbleRepository(dir string) (*PebbleRepository, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}

	r := &PebbleRepository{db: db}
	if err := r.loadSeq(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *PebbleRepository) loadSeq() error {
	it, err := r.db.NewIter(prefixBounds())
	if err != nil {
		return fmt.Errorf("pebble iter: %w", err)
	}
	defer it.Close()

	if it.Last() {
		r.seq = binary.BigEndian.Uint64(it.Key()[len(pebblePrefix):])
	}
	return it.Error()
}

func (r *PebbleRepository) Append(ctx context.Context, rec premium.SubmissionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.seq + 1
	if err := r.db.Set(seqKey(next), val, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set: %w", err)
	}
	r.seq = next
	return nil
}

func (r *PebbleRepository) List(ctx context.Context) ([]premium.SubmissionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	it, err := r.db.NewIter(prefixBounds())
	if err != nil {
		return nil, fmt.Errorf("pebble iter: %w", err)
	}
	defer it.Close()

	records := []premium.SubmissionRecord{}
	for it.First(); it.Valid(); it.Next() {
		var rec premium.SubmissionRecord
		if err := json.Unmarshal(it.Value(), &rec); err != nil {
			return nil, fmt.Errorf("decode record %x: %w", it.Key(), err)
		}
		records = append(records, rec)
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("pebble iter: %w", err)
	}
	return records, nil
}

func (r *PebbleRepository) Close() error { return r.db.Close() }

func seqKey(seq uint64) []byte {
	k := make([]byte, len(pebblePrefix)+8)
	copy(k, pebblePrefix)
	binary.BigEndian.PutUint64(k[len(pebblePrefix):], seq)
	return k
}

func prefixBounds() *pebble.IterOptions {
	upper := append([]byte(nil), pebblePrefix...)
	upper[len(upper)-1]++
	return &pebble.IterOptions{LowerBound: pebblePrefix, UpperBound: upper}
}
