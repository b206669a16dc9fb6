// Package dialogue turns a three-step question/answer exchange into a
// validated TradingConfig. A session only touches the configuration store
// when its last step is accepted.
package dialogue

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"signal-trading-bot/internal/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptySymbol      = errors.New("symbol must not be empty")
	ErrInvalidOrderSize = errors.New("order size must be a positive number")
	ErrInvalidProfit    = errors.New("profit percentage must be a number")
	ErrSessionClosed    = errors.New("session is no longer accepting input")
)

type State int

const (
	AwaitingSymbol State = iota
	AwaitingSize
	AwaitingProfit
	Complete
	Cancelled
)

func (s State) String() string {
	switch s {
	case AwaitingSymbol:
		return "AWAITING_SYMBOL"
	case AwaitingSize:
		return "AWAITING_SIZE"
	case AwaitingProfit:
		return "AWAITING_PROFIT"
	case Complete:
		return "COMPLETE"
	case Cancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is one in-flight configuration exchange. Input accepted so far is
// held here and nowhere else until the session completes.
type Session struct {
	ID string

	mu     sync.Mutex
	state  State
	symbol string
	size   decimal.Decimal
	profit decimal.Decimal
}

func NewSession() *Session {
	return &Session{ID: uuid.NewString(), state: AwaitingSymbol}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done reports whether the session has reached a terminal state.
func (s *Session) Done() bool {
	st := s.State()
	return st == Complete || st == Cancelled
}

// Cancel discards any unsaved input. Cancelling a completed session is a no-op.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Complete {
		return
	}
	s.state = Cancelled
	s.symbol = ""
	s.size = decimal.Zero
}

// Config returns the collected configuration once the session is complete.
func (s *Session) Config() (types.TradingConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Complete {
		return types.TradingConfig{}, false
	}
	return s.pending(), true
}

func (s *Session) pending() types.TradingConfig {
	return types.TradingConfig{Symbol: s.symbol, OrderSize: s.size, MinProfitPct: s.profit}
}

func parseSymbol(input string) (string, error) {
	sym := types.NormalizeSymbol(input)
	if sym == "" {
		return "", ErrEmptySymbol
	}
	return sym, nil
}

func parseOrderSize(input string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidOrderSize, input)
	}
	if !v.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidOrderSize, v)
	}
	return v, nil
}

func parseProfit(input string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidProfit, input)
	}
	return v, nil
}
