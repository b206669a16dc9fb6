package interfaces

import (
	"context"

	"signal-trading-bot/internal/types"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, rawSymbol, rawAction string) *types.Outcome
}
