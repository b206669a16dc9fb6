package eod

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"signal-trading-bot/internal/tradelog"

	"github.com/shopspring/decimal"
)

func journal(t *testing.T, entries ...tradelog.Entry) {
	t.Helper()
	for _, e := range entries {
		if err := tradelog.Append(e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
}

func TestSummarizeDay(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	journal(t,
		tradelog.Entry{Symbol: "MSFT", Side: "SELL", Qty: 10, Price: decimal.NewFromInt(103)},
		tradelog.Entry{Symbol: "AAPL", Side: "BUY", Qty: 3, Price: decimal.NewFromInt(100)},
		tradelog.Entry{Symbol: "AAPL", Side: "BUY", Qty: 1, Price: decimal.NewFromInt(104)},
	)
	f, _ := os.OpenFile(tradelog.DailyFilepath(time.Now()), os.O_APPEND|os.O_WRONLY, 0o644)
	f.WriteString("garbage\n")
	f.Close()

	path, err := NewSummarizer(Options{}).SummarizeDay(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("SummarizeDay failed: %v", err)
	}
	if path != CSVPath(time.Now()) {
		t.Errorf("Unexpected path %s", path)
	}

	in, err := os.Open(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer in.Close()
	recs, err := csv.NewReader(in).ReadAll()
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	if len(recs) != 4 {
		t.Fatalf("Expected header, 2 symbols and total, got %d rows", len(recs))
	}
	aapl := recs[1]
	if aapl[0] != "AAPL" || aapl[1] != "2" || aapl[2] != "4" || aapl[3] != "101.0000" || aapl[4] != "404.00" {
		t.Errorf("Unexpected AAPL row %v", aapl)
	}
	msft := recs[2]
	if msft[0] != "MSFT" || msft[5] != "1" || msft[6] != "10" || msft[8] != "1030.00" {
		t.Errorf("Unexpected MSFT row %v", msft)
	}
	total := recs[3]
	if total[0] != "TOTAL" || total[4] != "404.00" || total[8] != "1030.00" || total[3] != "" {
		t.Errorf("Unexpected TOTAL row %v", total)
	}
}

func TestSummarizeDayWithoutJournal(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	path, err := NewSummarizer(Options{}).SummarizeDay(context.Background(), time.Now())
	if err != nil || path != "" {
		t.Errorf("Expected no report, got %q %v", path, err)
	}
}

func TestShouldRunNow(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	s := NewSummarizer(Options{Cutoff: 21 * time.Hour})

	before := time.Date(2026, 3, 2, 20, 59, 0, 0, time.UTC)
	if ok, _ := s.ShouldRunNow(before); ok {
		t.Error("Expected no run before cutoff")
	}

	after := time.Date(2026, 3, 2, 21, 1, 0, 0, time.UTC)
	ok, path := s.ShouldRunNow(after)
	if !ok {
		t.Fatal("Expected run after cutoff")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.ShouldRunNow(after); ok {
		t.Error("Expected no run once the report exists")
	}
}
