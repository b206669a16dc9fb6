// Package dispatch validates inbound signals and routes them to the
// decision engine. It holds no state of its own.
package dispatch

import (
	"context"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/types"
)

type Dispatcher struct {
	engine interfaces.Engine
}

var _ interfaces.Dispatcher = (*Dispatcher)(nil)

func New(engine interfaces.Engine) *Dispatcher {
	return &Dispatcher{engine: engine}
}

// Dispatch evaluates one signal. The outcome is informational only: callers
// acknowledge every signal the same way whatever happened downstream, and
// broker errors stop here.
func (d *Dispatcher) Dispatch(ctx context.Context, rawSymbol, rawAction string) *types.Outcome {
	symbol := types.NormalizeSymbol(rawSymbol)
	action := types.ParseAction(rawAction)

	op := logger.StartOperation(ctx, "dispatch.Signal", "symbol", symbol, "action", string(action))
	ctx = op.GetContext()

	logger.Info(ctx, "Signal received", "symbol", symbol, "action", string(action), "raw_action", rawAction)

	var (
		out *types.Outcome
		err error
	)
	switch {
	case symbol == "":
		out = reject(ctx, symbol, action, types.ReasonMissingSymbol, rawAction)
	case action == types.ActionBuy:
		out, err = d.engine.Buy(ctx, symbol)
	case action == types.ActionSell:
		out, err = d.engine.Sell(ctx, symbol)
	default:
		out = reject(ctx, symbol, action, types.ReasonUnknownAction, rawAction)
	}

	if err != nil {
		logger.ErrorWithErr(ctx, "Signal processing failed", err, "symbol", symbol, "action", string(action))
	}
	if out == nil {
		out = &types.Outcome{Symbol: symbol, Action: action, Status: types.OutcomeFailed, Reason: types.ReasonBrokerError}
		if err != nil {
			out.Error = err.Error()
		}
	}

	op.End("status", string(out.Status), "reason", out.Reason)
	return out
}

func reject(ctx context.Context, symbol string, action types.Action, reason, rawAction string) *types.Outcome {
	logger.Warn(ctx, "Signal ignored", "symbol", symbol, "raw_action", rawAction, "reason", reason)
	return &types.Outcome{
		Symbol: symbol,
		Action: action,
		Status: types.OutcomeSkipped,
		Reason: reason,
	}
}
