package ledger

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/premiumkeeper/internal/server/config"
)

// Open builds the backend selected by cfg.LedgerBackend.
func Open(ctx context.Context, cfg *config.Config) (Repository, error) {
	switch cfg.LedgerBackend {
	case config.LedgerFile:
		return NewFileRepository(cfg.LedgerPath), nil
	case config.LedgerPebble:
		return NewPebbleRepository(cfg.PebbleDir)
	case config.LedgerPostgres:
		return OpenPostgres(ctx, cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}
}
