package engineobs

import (
	"context"
	"time"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/trace"
	"signal-trading-bot/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Buy(ctx context.Context, symbol string) (*types.Outcome, error) {
	return oe.observe(ctx, "engine.Buy", symbol, oe.engine.Buy)
}

func (oe *observableEngine) Sell(ctx context.Context, symbol string) (*types.Outcome, error) {
	return oe.observe(ctx, "engine.Sell", symbol, oe.engine.Sell)
}

func (oe *observableEngine) observe(
	ctx context.Context,
	spanName, symbol string,
	next func(context.Context, string) (*types.Outcome, error),
) (*types.Outcome, error) {
	ctx, span := trace.StartSpan(ctx, spanName)
	defer span.End()

	start := time.Now()
	logger.DebugSkip(ctx, 2, "Evaluating signal", "symbol", symbol, "path", spanName)

	outcome, err := next(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 2, "Signal evaluation failed", err,
			"symbol", symbol,
			"path", spanName,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return outcome, err
	}

	logger.InfoSkip(ctx, 2, "Signal evaluated",
		"symbol", symbol,
		"path", spanName,
		"status", string(outcome.Status),
		"reason", outcome.Reason,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return outcome, nil
}
