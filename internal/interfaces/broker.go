package interfaces

import (
	"context"

	"signal-trading-bot/internal/types"

	"github.com/shopspring/decimal"
)

// Broker is the gateway the decision engine consults. Every call is blocking
// I/O and is made without holding any configuration lock.
type Broker interface {
	// AvailableFunds returns the cash available for new orders in currency.
	AvailableFunds(ctx context.Context, currency string) (decimal.Decimal, error)

	// Positions returns the open positions held at the brokerage.
	Positions(ctx context.Context) ([]types.Position, error)

	// Quote returns the latest last/bid/ask for a symbol.
	Quote(ctx context.Context, symbol string) (types.Quote, error)

	// SubmitLimitOrder places a resting limit order. Fills are not awaited.
	SubmitLimitOrder(ctx context.Context, intent types.OrderIntent) (types.OrderResp, error)
}
