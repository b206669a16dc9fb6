package dialogue

import (
	"context"
	"errors"
	"strings"
	"testing"

	"signal-trading-bot/internal/store"
	"signal-trading-bot/internal/types"

	"github.com/shopspring/decimal"
)

type failingStore struct {
	*store.MemoryStore
	err error
}

func (f *failingStore) Upsert(ctx context.Context, cfg types.TradingConfig) error {
	if f.err != nil {
		return f.err
	}
	return f.MemoryStore.Upsert(ctx, cfg)
}

func TestSessionHappyPath(t *testing.T) {
	st := store.NewMemoryStore()
	u := NewUpdater(st, "USD")
	s := NewSession()
	ctx := context.Background()

	reply, err := u.Feed(ctx, s, " aapl ")
	if err != nil || !strings.HasPrefix(reply, "Ticker set to AAPL.") {
		t.Fatalf("Unexpected symbol step: %q %v", reply, err)
	}
	if _, ok := st.Get("AAPL"); ok {
		t.Fatal("Store must not change before the session completes")
	}

	reply, err = u.Feed(ctx, s, "1000")
	if err != nil || !strings.Contains(reply, "$1000") {
		t.Fatalf("Unexpected size step: %q %v", reply, err)
	}

	reply, err = u.Feed(ctx, s, "2.5")
	if err != nil || !strings.HasPrefix(reply, "Configuration saved for AAPL") {
		t.Fatalf("Unexpected profit step: %q %v", reply, err)
	}
	if s.State() != Complete || !s.Done() {
		t.Errorf("Expected Complete, got %s", s.State())
	}

	cfg, ok := st.Get("AAPL")
	if !ok || !cfg.OrderSize.Equal(decimal.NewFromInt(1000)) || !cfg.MinProfitPct.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("Unexpected stored config %+v", cfg)
	}
}

func TestInvalidInputRepromptsSameStep(t *testing.T) {
	u := NewUpdater(store.NewMemoryStore(), "USD")
	s := NewSession()
	ctx := context.Background()

	if _, err := u.Feed(ctx, s, "   "); !errors.Is(err, ErrEmptySymbol) {
		t.Errorf("Expected ErrEmptySymbol, got %v", err)
	}
	if s.State() != AwaitingSymbol {
		t.Fatalf("Expected to stay on symbol step, got %s", s.State())
	}

	_, _ = u.Feed(ctx, s, "MSFT")
	for _, bad := range []string{"abc", "0", "-5", "", "1e"} {
		reply, err := u.Feed(ctx, s, bad)
		if !errors.Is(err, ErrInvalidOrderSize) {
			t.Errorf("size %q: expected ErrInvalidOrderSize, got %v", bad, err)
		}
		if !strings.HasPrefix(reply, "Invalid number.") {
			t.Errorf("size %q: unexpected reply %q", bad, reply)
		}
	}
	if s.State() != AwaitingSize {
		t.Fatalf("Expected to stay on size step, got %s", s.State())
	}

	_, _ = u.Feed(ctx, s, "500")
	if _, err := u.Feed(ctx, s, "lots"); !errors.Is(err, ErrInvalidProfit) {
		t.Errorf("Expected ErrInvalidProfit, got %v", err)
	}
	if s.State() != AwaitingProfit {
		t.Fatalf("Expected to stay on profit step, got %s", s.State())
	}

	// negative thresholds are allowed
	if _, err := u.Feed(ctx, s, "-1.5"); err != nil {
		t.Errorf("Expected negative profit to be accepted, got %v", err)
	}
}

func TestCancelledSessionNeverWrites(t *testing.T) {
	st := store.NewMemoryStore()
	u := NewUpdater(st, "USD")
	s := NewSession()
	ctx := context.Background()

	_, _ = u.Feed(ctx, s, "TSLA")
	_, _ = u.Feed(ctx, s, "100")
	s.Cancel()

	if _, err := u.Feed(ctx, s, "3"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Expected ErrSessionClosed after cancel, got %v", err)
	}
	if _, ok := st.Get("TSLA"); ok {
		t.Error("Cancelled session must not write to the store")
	}
	if _, ok := s.Config(); ok {
		t.Error("Cancelled session has no config")
	}
}

func TestFailedUpsertKeepsProfitStep(t *testing.T) {
	fs := &failingStore{MemoryStore: store.NewMemoryStore(), err: errors.New("disk full")}
	u := NewUpdater(fs, "USD")
	s := NewSession()
	ctx := context.Background()

	_, _ = u.Feed(ctx, s, "AAPL")
	_, _ = u.Feed(ctx, s, "100")
	if _, err := u.Feed(ctx, s, "2"); err == nil {
		t.Fatal("Expected upsert error")
	}
	if s.State() != AwaitingProfit {
		t.Fatalf("Expected AwaitingProfit after failed save, got %s", s.State())
	}

	fs.err = nil
	if _, err := u.Feed(ctx, s, "2"); err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if _, ok := fs.Get("AAPL"); !ok {
		t.Error("Expected config after retry")
	}
}

func TestConfigure(t *testing.T) {
	st := store.NewMemoryStore()
	u := NewUpdater(st, "INR")

	cfg, err := u.Configure(context.Background(), "infy", "25000", "1")
	if err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if cfg.Symbol != "INFY" {
		t.Errorf("Expected INFY, got %s", cfg.Symbol)
	}

	if _, err := u.Configure(context.Background(), "infy", "zero", "1"); !errors.Is(err, ErrInvalidOrderSize) {
		t.Errorf("Expected ErrInvalidOrderSize, got %v", err)
	}
	got, _ := st.Get("INFY")
	if !got.OrderSize.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("Failed configure must not overwrite, got %s", got.OrderSize)
	}
}

func TestManager(t *testing.T) {
	m := NewManager()

	first := m.Begin("42")
	second := m.Begin("42")
	if first.State() != Cancelled {
		t.Errorf("Expected replaced session to be cancelled, got %s", first.State())
	}
	if s, ok := m.Active("42"); !ok || s != second {
		t.Error("Expected second session to be active")
	}

	m.End("42", first)
	if _, ok := m.Active("42"); !ok {
		t.Error("Ending a stale session must not remove the active one")
	}

	if !m.Cancel("42") {
		t.Error("Expected Cancel to report an open session")
	}
	if second.State() != Cancelled {
		t.Errorf("Expected Cancelled, got %s", second.State())
	}
	if m.Cancel("42") {
		t.Error("Expected no session after cancel")
	}
}
