package brokerobs

import (
	"context"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/trace"
	"signal-trading-bot/internal/types"

	"github.com/shopspring/decimal"
)

// observableBroker wraps a Broker with observability (logging & tracing)
type observableBroker struct {
	broker interfaces.Broker
}

// Compile-time interface check
var _ interfaces.Broker = (*observableBroker)(nil)

// Wrap wraps a broker with observability middleware
func Wrap(broker interfaces.Broker) interfaces.Broker {
	return &observableBroker{
		broker: broker,
	}
}

func (ob *observableBroker) AvailableFunds(ctx context.Context, currency string) (decimal.Decimal, error) {
	ctx, span := trace.StartSpan(ctx, "broker.AvailableFunds")
	defer span.End()

	funds, err := ob.broker.AvailableFunds(ctx, currency)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch available funds", err, "currency", currency)
		return decimal.Zero, err
	}

	logger.DebugSkip(ctx, 1, "Available funds fetched", "currency", currency, "funds", funds.String())
	return funds, nil
}

func (ob *observableBroker) Positions(ctx context.Context) ([]types.Position, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Positions")
	defer span.End()

	positions, err := ob.broker.Positions(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch positions", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Positions fetched", "count", len(positions))
	return positions, nil
}

func (ob *observableBroker) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Quote")
	defer span.End()

	q, err := ob.broker.Quote(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch quote", err, "symbol", symbol)
		return types.Quote{}, err
	}

	logger.DebugSkip(ctx, 1, "Quote fetched",
		"symbol", symbol,
		"last", q.Last.String(),
		"bid", q.Bid.String(),
		"ask", q.Ask.String(),
	)
	return q, nil
}

func (ob *observableBroker) SubmitLimitOrder(ctx context.Context, intent types.OrderIntent) (types.OrderResp, error) {
	ctx, span := trace.StartSpan(ctx, "broker.SubmitLimitOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Placing order",
		"symbol", intent.Symbol,
		"side", string(intent.Side),
		"qty", intent.Quantity,
		"limit_price", intent.LimitPrice.String(),
		"tag", intent.Tag,
	)

	resp, err := ob.broker.SubmitLimitOrder(ctx, intent)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place order", err,
			"symbol", intent.Symbol,
			"side", string(intent.Side),
			"qty", intent.Quantity,
		)
		return types.OrderResp{}, err
	}

	logger.InfoSkip(ctx, 1, "Order placed successfully",
		"symbol", intent.Symbol,
		"order_id", resp.OrderID,
		"status", resp.Status,
	)
	return resp, nil
}
