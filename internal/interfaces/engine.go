package interfaces

import (
	"context"

	"signal-trading-bot/internal/types"
)

// Engine evaluates a single signal for a symbol. The returned outcome is
// never nil; err is set only when a broker call failed.
type Engine interface {
	Buy(ctx context.Context, symbol string) (*types.Outcome, error)
	Sell(ctx context.Context, symbol string) (*types.Outcome, error)
}
