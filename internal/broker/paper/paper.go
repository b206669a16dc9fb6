// Package paper is an in-memory Broker used for DRY_RUN sessions and tests.
// Orders are recorded but never filled, so funds and positions only change
// through the setters.
package paper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNoQuote      = errors.New("no quote available")
	ErrInvalidOrder = errors.New("invalid order")
)

type Params struct {
	Currency  string
	Funds     decimal.Decimal
	Quotes    map[string]types.Quote
	Positions []types.Position
}

type Broker struct {
	mu        sync.RWMutex
	funds     map[string]decimal.Decimal
	quotes    map[string]types.Quote
	positions map[string]types.Position
	orders    []SubmittedOrder
}

// SubmittedOrder is an accepted intent together with the id it was given.
type SubmittedOrder struct {
	ID     string
	Intent types.OrderIntent
}

var _ interfaces.Broker = (*Broker)(nil)

func New(p Params) *Broker {
	b := &Broker{
		funds:     make(map[string]decimal.Decimal),
		quotes:    make(map[string]types.Quote),
		positions: make(map[string]types.Position),
	}
	currency := p.Currency
	if currency == "" {
		currency = "USD"
	}
	b.funds[strings.ToUpper(currency)] = p.Funds
	for sym, q := range p.Quotes {
		b.quotes[types.NormalizeSymbol(sym)] = q
	}
	for _, pos := range p.Positions {
		b.SetPosition(pos)
	}
	return b
}

func (b *Broker) SetFunds(currency string, amount decimal.Decimal) {
	b.mu.Lock()
	b.funds[strings.ToUpper(currency)] = amount
	b.mu.Unlock()
}

func (b *Broker) SetQuote(symbol string, q types.Quote) {
	b.mu.Lock()
	b.quotes[types.NormalizeSymbol(symbol)] = q
	b.mu.Unlock()
}

// SetPosition replaces the position for pos.Symbol; a zero quantity removes it.
func (b *Broker) SetPosition(pos types.Position) {
	pos.Symbol = types.NormalizeSymbol(pos.Symbol)
	b.mu.Lock()
	defer b.mu.Unlock()
	if pos.Quantity == 0 {
		delete(b.positions, pos.Symbol)
		return
	}
	b.positions[pos.Symbol] = pos
}

// Orders returns a copy of every order submitted so far.
func (b *Broker) Orders() []SubmittedOrder {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]SubmittedOrder(nil), b.orders...)
}

func (b *Broker) AvailableFunds(_ context.Context, currency string) (decimal.Decimal, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	// unknown currencies hold nothing
	return b.funds[strings.ToUpper(currency)], nil
}

func (b *Broker) Positions(_ context.Context) ([]types.Position, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]types.Position, 0, len(b.positions))
	for _, p := range b.positions {
		out = append(out, p)
	}
	return out, nil
}

func (b *Broker) Quote(_ context.Context, symbol string) (types.Quote, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.quotes[types.NormalizeSymbol(symbol)]
	if !ok {
		return types.Quote{}, fmt.Errorf("%w for %s", ErrNoQuote, symbol)
	}
	return q, nil
}

func (b *Broker) SubmitLimitOrder(_ context.Context, intent types.OrderIntent) (types.OrderResp, error) {
	if intent.Quantity <= 0 || !intent.LimitPrice.IsPositive() {
		return types.OrderResp{}, fmt.Errorf("%w: qty=%d price=%s", ErrInvalidOrder, intent.Quantity, intent.LimitPrice)
	}

	id := "SIM-" + uuid.NewString()
	b.mu.Lock()
	b.orders = append(b.orders, SubmittedOrder{ID: id, Intent: intent})
	b.mu.Unlock()

	return types.OrderResp{OrderID: id, Status: "SIMULATED", Message: "paper"}, nil
}
