package interfaces

import (
	"context"

	"signal-trading-bot/internal/types"
)

// ConfigStore holds the per-symbol trading parameters. Reads and writes are
// safe from independent goroutines; Get returns a copy.
type ConfigStore interface {
	Upsert(ctx context.Context, cfg types.TradingConfig) error
	Get(symbol string) (types.TradingConfig, bool)
	All() []types.TradingConfig
}
