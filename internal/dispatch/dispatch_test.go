package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"signal-trading-bot/internal/broker/paper"
	"signal-trading-bot/internal/engine"
	"signal-trading-bot/internal/store"
	"signal-trading-bot/internal/types"

	"github.com/shopspring/decimal"
)

type recordingEngine struct {
	mu    sync.Mutex
	calls []string
	err   error
	nilOK bool
}

func (r *recordingEngine) record(action types.Action, symbol string) (*types.Outcome, error) {
	r.mu.Lock()
	r.calls = append(r.calls, string(action)+":"+symbol)
	r.mu.Unlock()
	if r.nilOK {
		return nil, r.err
	}
	status := types.OutcomeSkipped
	if r.err != nil {
		status = types.OutcomeFailed
	}
	return &types.Outcome{Symbol: symbol, Action: action, Status: status}, r.err
}

func (r *recordingEngine) Buy(_ context.Context, symbol string) (*types.Outcome, error) {
	return r.record(types.ActionBuy, symbol)
}

func (r *recordingEngine) Sell(_ context.Context, symbol string) (*types.Outcome, error) {
	return r.record(types.ActionSell, symbol)
}

func TestDispatchRoutesByAction(t *testing.T) {
	eng := &recordingEngine{}
	d := New(eng)

	d.Dispatch(context.Background(), " aapl ", "buy")
	d.Dispatch(context.Background(), "msft", "Sell")

	want := []string{"BUY:AAPL", "SELL:MSFT"}
	if len(eng.calls) != len(want) {
		t.Fatalf("Expected %d engine calls, got %v", len(want), eng.calls)
	}
	for i := range want {
		if eng.calls[i] != want[i] {
			t.Errorf("call %d: expected %s, got %s", i, want[i], eng.calls[i])
		}
	}
}

func TestDispatchUnknownActionIsNoop(t *testing.T) {
	eng := &recordingEngine{}
	d := New(eng)

	for _, action := range []string{"HOLD", "", "buy!", "SHORT"} {
		out := d.Dispatch(context.Background(), "AAPL", action)
		if out == nil || out.Status != types.OutcomeSkipped || out.Reason != types.ReasonUnknownAction {
			t.Errorf("action %q: expected UNKNOWN_ACTION skip, got %+v", action, out)
		}
		if out.Action != types.ActionUnknown {
			t.Errorf("action %q: expected ActionUnknown, got %s", action, out.Action)
		}
	}
	if len(eng.calls) != 0 {
		t.Errorf("Expected no engine calls, got %v", eng.calls)
	}
}

func TestUnknownActionForConfiguredSymbolPlacesNoOrder(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	ctx := context.Background()

	st := store.NewMemoryStore()
	if err := st.Upsert(ctx, types.TradingConfig{Symbol: "AAPL", OrderSize: decimal.NewFromInt(1000), MinProfitPct: decimal.NewFromInt(1)}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	brk := paper.New(paper.Params{
		Currency:  "USD",
		Funds:     decimal.NewFromInt(100000),
		Quotes:    map[string]types.Quote{"AAPL": {Last: decimal.NewFromInt(100)}},
		Positions: []types.Position{{Symbol: "AAPL", Quantity: 10, AverageCost: decimal.NewFromInt(100), MarketPrice: decimal.NewFromInt(120)}},
	})
	d := New(engine.New(st, brk, engine.Options{Currency: "USD", OrderTag: "TEST"}))

	for _, action := range []string{"HOLD", "", "SHORT"} {
		out := d.Dispatch(ctx, "AAPL", action)
		if out.Reason != types.ReasonUnknownAction {
			t.Errorf("action %q: expected UNKNOWN_ACTION, got %s", action, out.Reason)
		}
	}
	if n := len(brk.Orders()); n != 0 {
		t.Fatalf("Expected no orders for unknown actions, got %d", n)
	}

	if out := d.Dispatch(ctx, "AAPL", "BUY"); !out.Submitted() {
		t.Fatalf("Expected BUY to submit, got %s/%s", out.Status, out.Reason)
	}
	if n := len(brk.Orders()); n != 1 {
		t.Errorf("Expected exactly the BUY order, got %d", n)
	}
}

func TestDispatchMissingSymbol(t *testing.T) {
	eng := &recordingEngine{}
	out := New(eng).Dispatch(context.Background(), "  ", "BUY")
	if out.Reason != types.ReasonMissingSymbol {
		t.Errorf("Expected MISSING_SYMBOL, got %s", out.Reason)
	}
	if len(eng.calls) != 0 {
		t.Error("Expected no engine call without a symbol")
	}
}

func TestDispatchSwallowsEngineErrors(t *testing.T) {
	eng := &recordingEngine{err: errors.New("broker down")}
	out := New(eng).Dispatch(context.Background(), "AAPL", "BUY")
	if out.Status != types.OutcomeFailed {
		t.Errorf("Expected FAILED outcome, got %s", out.Status)
	}

	eng.nilOK = true
	out = New(eng).Dispatch(context.Background(), "AAPL", "SELL")
	if out == nil || out.Status != types.OutcomeFailed || out.Error != "broker down" {
		t.Errorf("Expected synthesized FAILED outcome, got %+v", out)
	}
}
