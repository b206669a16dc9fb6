package engine

import (
	"context"
	"fmt"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/types"
)

type Options struct {
	// Currency the buy path checks funds in.
	Currency string
	// OrderTag is attached to every submitted order.
	OrderTag string
	// SerializeSymbols runs at most one decision per symbol at a time.
	SerializeSymbols bool
}

type Engine struct {
	store    interfaces.ConfigStore
	brk      interfaces.Broker
	risk     *riskManager
	executor *orderExecutor
	locks    *symbolLocks
}

var _ interfaces.Engine = (*Engine)(nil)

func newEngine(st interfaces.ConfigStore, brk interfaces.Broker, opts Options) *Engine {
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	e := &Engine{
		store:    st,
		brk:      brk,
		risk:     newRiskManager(opts.Currency),
		executor: newOrderExecutor(brk, opts.OrderTag),
	}
	if opts.SerializeSymbols {
		e.locks = newSymbolLocks()
	}
	return e
}

// Buy sizes a resting limit buy from the symbol's configured notional.
// Every unmet precondition is a SKIPPED outcome; broker failures are FAILED
// and also returned as err.
func (e *Engine) Buy(ctx context.Context, symbol string) (*types.Outcome, error) {
	symbol = types.NormalizeSymbol(symbol)
	defer e.locks.lock(symbol)()

	// copied out of the store; no lock is held past this call
	cfg, ok := e.store.Get(symbol)
	if !ok {
		return e.skip(ctx, symbol, types.ActionBuy, types.ReasonNoConfig), nil
	}

	available, err := e.brk.AvailableFunds(ctx, e.risk.currency)
	if err != nil {
		return e.fail(ctx, symbol, types.ActionBuy, fmt.Errorf("available funds: %w", err))
	}
	if !e.risk.hasFunds(ctx, symbol, available, cfg.OrderSize) {
		return e.skip(ctx, symbol, types.ActionBuy, types.ReasonInsufficientFunds,
			"available", available.StringFixed(2), "order_size", cfg.OrderSize.String()), nil
	}

	q, err := e.brk.Quote(ctx, symbol)
	if err != nil {
		return e.fail(ctx, symbol, types.ActionBuy, fmt.Errorf("quote: %w", err))
	}
	price := selectPrice(q)
	if !price.IsPositive() {
		return e.skip(ctx, symbol, types.ActionBuy, types.ReasonNoPrice,
			"last", q.Last.String(), "bid", q.Bid.String(), "ask", q.Ask.String()), nil
	}

	qty := quantityFor(cfg.OrderSize, price)
	if qty <= 0 {
		return e.skip(ctx, symbol, types.ActionBuy, types.ReasonZeroQuantity,
			"price", price.String(), "order_size", cfg.OrderSize.String()), nil
	}

	return e.submit(ctx, types.ActionBuy, types.OrderIntent{
		Symbol:     symbol,
		Side:       types.SideBuy,
		Quantity:   qty,
		LimitPrice: price,
	}, map[string]any{
		"available":  available.StringFixed(2),
		"order_size": cfg.OrderSize.String(),
	})
}

// Sell liquidates the whole long position at its market price once the
// unrealized profit strictly exceeds the configured minimum.
func (e *Engine) Sell(ctx context.Context, symbol string) (*types.Outcome, error) {
	symbol = types.NormalizeSymbol(symbol)
	defer e.locks.lock(symbol)()

	cfg, ok := e.store.Get(symbol)
	if !ok {
		return e.skip(ctx, symbol, types.ActionSell, types.ReasonNoConfig), nil
	}

	positions, err := e.brk.Positions(ctx)
	if err != nil {
		return e.fail(ctx, symbol, types.ActionSell, fmt.Errorf("positions: %w", err))
	}
	pos, ok := findLong(positions, symbol)
	if !ok {
		return e.skip(ctx, symbol, types.ActionSell, types.ReasonNoPosition), nil
	}
	if !pos.AverageCost.IsPositive() {
		return e.skip(ctx, symbol, types.ActionSell, types.ReasonNoCostBasis,
			"average_cost", pos.AverageCost.String()), nil
	}

	pct := pnlPct(pos)
	logger.Info(ctx, "Unrealized P/L computed",
		"symbol", symbol,
		"pnl_pct", pct.StringFixed(2),
		"min_profit_pct", cfg.MinProfitPct.String(),
	)
	if !pct.GreaterThan(cfg.MinProfitPct) {
		return e.skip(ctx, symbol, types.ActionSell, types.ReasonBelowThreshold,
			"pnl_pct", pct.StringFixed(4), "min_profit_pct", cfg.MinProfitPct.String()), nil
	}
	if !pos.MarketPrice.IsPositive() {
		return e.skip(ctx, symbol, types.ActionSell, types.ReasonNoPrice,
			"market_price", pos.MarketPrice.String()), nil
	}

	return e.submit(ctx, types.ActionSell, types.OrderIntent{
		Symbol:     symbol,
		Side:       types.SideSell,
		Quantity:   pos.Quantity,
		LimitPrice: pos.MarketPrice,
	}, map[string]any{
		"average_cost":   pos.AverageCost.String(),
		"pnl_pct":        pct.StringFixed(4),
		"min_profit_pct": cfg.MinProfitPct.String(),
	})
}

// submit places intent and journals extra alongside it.
func (e *Engine) submit(ctx context.Context, action types.Action, intent types.OrderIntent, extra map[string]any) (*types.Outcome, error) {
	intent, resp, err := e.executor.place(ctx, intent, extra)
	if err != nil {
		return e.fail(ctx, intent.Symbol, action, fmt.Errorf("submit order: %w", err))
	}

	logger.Decision(ctx, intent.Symbol, string(action), string(types.OutcomeSubmitted), types.ReasonOrderSubmitted,
		"qty", intent.Quantity,
		"limit_price", intent.LimitPrice.String(),
		"order_id", resp.OrderID,
	)
	return &types.Outcome{
		Symbol: intent.Symbol,
		Action: action,
		Status: types.OutcomeSubmitted,
		Reason: types.ReasonOrderSubmitted,
		Order:  &intent,
		Resp:   &resp,
	}, nil
}

func (e *Engine) skip(ctx context.Context, symbol string, action types.Action, reason string, fields ...any) *types.Outcome {
	logger.Decision(ctx, symbol, string(action), string(types.OutcomeSkipped), reason, fields...)
	return &types.Outcome{
		Symbol: symbol,
		Action: action,
		Status: types.OutcomeSkipped,
		Reason: reason,
	}
}

func (e *Engine) fail(ctx context.Context, symbol string, action types.Action, err error) (*types.Outcome, error) {
	logger.Decision(ctx, symbol, string(action), string(types.OutcomeFailed), types.ReasonBrokerError, "error", err.Error())
	return &types.Outcome{
		Symbol: symbol,
		Action: action,
		Status: types.OutcomeFailed,
		Reason: types.ReasonBrokerError,
		Error:  err.Error(),
	}, err
}
