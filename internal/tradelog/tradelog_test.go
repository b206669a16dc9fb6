package tradelog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestAppendWritesJSONLine(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	err := Append(Entry{Symbol: "AAPL", Side: "BUY", Qty: 3, Price: decimal.NewFromInt(333), OrderID: "SIM-1", Status: "SIMULATED"})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	_ = Append(Entry{Symbol: "MSFT", Side: "SELL", Qty: 10, Price: decimal.NewFromInt(103), OrderID: "SIM-2"})

	f, err := os.Open(DailyFilepath(time.Now()))
	if err != nil {
		t.Fatalf("Expected journal file: %v", err)
	}
	defer f.Close()

	var lines []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("Invalid JSON line: %v", err)
		}
		lines = append(lines, e)
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0].Symbol != "AAPL" || lines[0].Qty != 3 || !lines[0].Price.Equal(decimal.NewFromInt(333)) {
		t.Errorf("Unexpected first entry: %+v", lines[0])
	}
	if lines[0].Time == "" {
		t.Error("Expected timestamp to be set")
	}
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	old := filepath.Join(dir, "2020-01-01.txt")
	fresh := filepath.Join(dir, "2099-01-01.txt")
	for _, p := range []string{old, fresh} {
		if err := os.WriteFile(p, []byte("{}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	if err := CompressOlder(7); err != nil {
		t.Fatalf("CompressOlder failed: %v", err)
	}

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("Expected old journal to be removed")
	}
	if _, err := os.Stat(old + ".gz"); err != nil {
		t.Errorf("Expected gzip file: %v", err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("Expected fresh journal to remain: %v", err)
	}
}
