// Package ledger is the append-only store of submitted premiums. Every backend
// serializes its appends, so concurrent submissions never overwrite each other.
package ledger

import (
	"context"

	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
)

// Repository appends records and lists them in append order. An empty or
// not-yet-created ledger lists as an empty slice, never nil.
type Repository interface {
	Append(ctx context.Context, rec premium.SubmissionRecord) error
	List(ctx context.Context) ([]premium.SubmissionRecord, error)
	Close() error
}
