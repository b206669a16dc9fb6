package engine

import (
	"context"

	"signal-trading-bot/internal/logger"

	"github.com/shopspring/decimal"
)

// riskManager is the funds-sufficiency gate in front of every buy.
type riskManager struct {
	currency string
}

func newRiskManager(currency string) *riskManager {
	return &riskManager{currency: currency}
}

// hasFunds reports whether available covers the whole order. Partial orders
// are never placed.
func (rm *riskManager) hasFunds(ctx context.Context, symbol string, available, orderSize decimal.Decimal) bool {
	if available.LessThan(orderSize) {
		logger.Risk(ctx, symbol, "INSUFFICIENT_FUNDS",
			"currency", rm.currency,
			"available", available.StringFixed(2),
			"required", orderSize.String(),
		)
		return false
	}
	return true
}
