package engine

import (
	"strings"

	"signal-trading-bot/internal/types"
)

// findLong returns the broker-reported long position for symbol, if any.
// The engine keeps no cost basis of its own.
func findLong(positions []types.Position, symbol string) (types.Position, bool) {
	for _, p := range positions {
		if strings.EqualFold(p.Symbol, symbol) && p.Quantity > 0 {
			return p, true
		}
	}
	return types.Position{}, false
}
