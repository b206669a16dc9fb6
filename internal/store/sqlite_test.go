package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "configs.db")

	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := s.Upsert(ctx, cfg("aapl", "1000", "2.5")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := s.Upsert(ctx, cfg("AAPL", "1500", "3.25")); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}
	if err := s.Upsert(ctx, cfg("MSFT", "200", "-1")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	got, ok := reopened.Get("AAPL")
	if !ok {
		t.Fatal("Expected AAPL after reopen")
	}
	if !got.OrderSize.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Expected order size 1500, got %s", got.OrderSize)
	}
	if !got.MinProfitPct.Equal(decimal.RequireFromString("3.25")) {
		t.Errorf("Expected min profit 3.25, got %s", got.MinProfitPct)
	}
	if n := len(reopened.All()); n != 2 {
		t.Errorf("Expected 2 configs, got %d", n)
	}
}

func TestSQLiteStoreRejectsInvalidWithoutWriting(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "configs.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	if err := s.Upsert(ctx, cfg("AAPL", "0", "1")); err == nil {
		t.Fatal("Expected error for zero order size")
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM trading_configs`).Scan(&count); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no rows, got %d", count)
	}
}
