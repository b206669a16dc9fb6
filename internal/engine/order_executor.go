package engine

import (
	"context"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/tradelog"
	"signal-trading-bot/internal/types"
)

// orderExecutor submits resting limit orders and journals them.
type orderExecutor struct {
	broker interfaces.Broker
	tag    string
}

func newOrderExecutor(broker interfaces.Broker, tag string) *orderExecutor {
	return &orderExecutor{
		broker: broker,
		tag:    tag,
	}
}

// place tags and submits intent once, returning the tagged intent. There is
// no retry; the next signal re-evaluates from scratch. extra is journaled
// with the order.
func (oe *orderExecutor) place(ctx context.Context, intent types.OrderIntent, extra map[string]any) (types.OrderIntent, types.OrderResp, error) {
	intent.Tag = oe.tag

	resp, err := oe.broker.SubmitLimitOrder(ctx, intent)
	if err != nil {
		return intent, types.OrderResp{}, err
	}

	logger.Trade(ctx, intent.Symbol, string(intent.Side), intent.Quantity, intent.LimitPrice.String(), resp.OrderID,
		"status", resp.Status,
		"tag", intent.Tag,
	)

	if err := tradelog.Append(tradelog.Entry{
		Symbol:  intent.Symbol,
		Side:    string(intent.Side),
		Qty:     intent.Quantity,
		Price:   intent.LimitPrice,
		OrderID: resp.OrderID,
		Status:  resp.Status,
		Tag:     intent.Tag,
		Extra:   extra,
	}); err != nil {
		logger.Warn(ctx, "Failed to journal order", "symbol", intent.Symbol, "order_id", resp.OrderID, "error", err)
	}

	return intent, resp, nil
}
