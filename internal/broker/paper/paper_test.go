package paper

import (
	"context"
	"errors"
	"strings"
	"testing"

	"signal-trading-bot/internal/types"

	"github.com/shopspring/decimal"
)

func TestPaperBrokerReads(t *testing.T) {
	b := New(Params{
		Funds:  decimal.NewFromInt(5000),
		Quotes: map[string]types.Quote{"aapl": {Last: decimal.NewFromInt(150)}},
		Positions: []types.Position{
			{Symbol: "msft", Quantity: 10, AverageCost: decimal.NewFromInt(100), MarketPrice: decimal.NewFromInt(103)},
		},
	})
	ctx := context.Background()

	funds, err := b.AvailableFunds(ctx, "usd")
	if err != nil || !funds.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("Expected 5000 USD, got %s (%v)", funds, err)
	}
	if other, _ := b.AvailableFunds(ctx, "EUR"); !other.IsZero() {
		t.Errorf("Expected zero EUR, got %s", other)
	}

	q, err := b.Quote(ctx, "AAPL")
	if err != nil || !q.Last.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Unexpected quote %+v (%v)", q, err)
	}
	if _, err := b.Quote(ctx, "TSLA"); !errors.Is(err, ErrNoQuote) {
		t.Errorf("Expected ErrNoQuote, got %v", err)
	}

	pos, _ := b.Positions(ctx)
	if len(pos) != 1 || pos[0].Symbol != "MSFT" {
		t.Errorf("Unexpected positions %+v", pos)
	}

	b.SetPosition(types.Position{Symbol: "MSFT"})
	if pos, _ := b.Positions(ctx); len(pos) != 0 {
		t.Errorf("Expected position removed, got %+v", pos)
	}
}

func TestPaperBrokerSubmit(t *testing.T) {
	b := New(Params{})
	ctx := context.Background()

	resp, err := b.SubmitLimitOrder(ctx, types.OrderIntent{Symbol: "AAPL", Side: types.SideBuy, Quantity: 3, LimitPrice: decimal.NewFromInt(333)})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !strings.HasPrefix(resp.OrderID, "SIM-") || resp.Status != "SIMULATED" {
		t.Errorf("Unexpected response %+v", resp)
	}

	if _, err := b.SubmitLimitOrder(ctx, types.OrderIntent{Symbol: "AAPL", Side: types.SideBuy, Quantity: 0, LimitPrice: decimal.NewFromInt(1)}); !errors.Is(err, ErrInvalidOrder) {
		t.Errorf("Expected ErrInvalidOrder, got %v", err)
	}

	orders := b.Orders()
	if len(orders) != 1 || orders[0].ID != resp.OrderID || orders[0].Intent.Quantity != 3 {
		t.Errorf("Unexpected recorded orders %+v", orders)
	}
}
