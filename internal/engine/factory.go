package engine

import (
	"signal-trading-bot/internal/interfaces"
)

// New returns the decision engine. When opts.SerializeSymbols is false two
// signals for the same symbol may be evaluated concurrently.
func New(st interfaces.ConfigStore, brk interfaces.Broker, opts Options) interfaces.Engine {
	return newEngine(st, brk, opts)
}
