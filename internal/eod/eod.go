// Package eod summarizes the order journal per symbol at the end of the
// trading day. The journal records submissions, so the report totals
// submitted quantity and limit notional; it is not a fill or P/L report.
package eod

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/tradelog"

	"github.com/shopspring/decimal"
)

type Options struct {
	// Cutoff is the UTC time of day after which the day's report is due.
	Cutoff time.Duration
}

type summarizer struct {
	cutoff time.Duration
}

var _ interfaces.EodSummarizer = (*summarizer)(nil)

func NewSummarizer(opts Options) interfaces.EodSummarizer {
	return &summarizer{cutoff: opts.Cutoff}
}

type aggRow struct {
	Symbol       string
	BuyOrders    int
	BuyQty       int64
	BuyNotional  decimal.Decimal
	SellOrders   int
	SellQty      int64
	SellNotional decimal.Decimal
}

var csvHeader = []string{
	"symbol",
	"buy_orders", "buy_qty", "buy_avg_limit", "buy_notional",
	"sell_orders", "sell_qty", "sell_avg_limit", "sell_notional",
}

// CSVPath is where the report for day is written.
func CSVPath(day time.Time) string {
	return filepath.Join(tradelog.Dir(), "eod", day.UTC().Format("2006-01-02")+".csv")
}

func (s *summarizer) SummarizeDay(ctx context.Context, day time.Time) (string, error) {
	rows, err := aggregate(tradelog.DailyFilepath(day))
	if err != nil || len(rows) == 0 {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	outPath := CSVPath(day)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	total := aggRow{Symbol: "TOTAL"}
	for _, r := range rows {
		if err := w.Write(r.record()); err != nil {
			return "", err
		}
		total.BuyOrders += r.BuyOrders
		total.BuyQty += r.BuyQty
		total.BuyNotional = total.BuyNotional.Add(r.BuyNotional)
		total.SellOrders += r.SellOrders
		total.SellQty += r.SellQty
		total.SellNotional = total.SellNotional.Add(r.SellNotional)
	}
	rec := total.record()
	// averages across symbols are meaningless
	rec[3], rec[7] = "", ""
	if err := w.Write(rec); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return outPath, nil
}

func (s *summarizer) ShouldRunNow(now time.Time) (bool, string) {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	outPath := CSVPath(now)
	if now.Before(midnight.Add(s.cutoff)) {
		return false, outPath
	}
	if _, err := os.Stat(outPath); errors.Is(err, os.ErrNotExist) {
		return true, outPath
	}
	return false, outPath
}

// aggregate reads one journal file. A missing file means no orders.
// Lines that do not decode are skipped.
func aggregate(path string) ([]*aggRow, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	aggs := map[string]*aggRow{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e tradelog.Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil || e.Symbol == "" {
			continue
		}
		row := aggs[e.Symbol]
		if row == nil {
			row = &aggRow{Symbol: e.Symbol}
			aggs[e.Symbol] = row
		}
		notional := e.Price.Mul(decimal.NewFromInt(e.Qty))
		switch e.Side {
		case "BUY":
			row.BuyOrders++
			row.BuyQty += e.Qty
			row.BuyNotional = row.BuyNotional.Add(notional)
		case "SELL":
			row.SellOrders++
			row.SellQty += e.Qty
			row.SellNotional = row.SellNotional.Add(notional)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	rows := make([]*aggRow, 0, len(aggs))
	for _, r := range aggs {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Symbol < rows[j].Symbol })
	return rows, nil
}

func (r *aggRow) record() []string {
	return []string{
		r.Symbol,
		strconv.Itoa(r.BuyOrders), strconv.FormatInt(r.BuyQty, 10), avg(r.BuyNotional, r.BuyQty), r.BuyNotional.StringFixed(2),
		strconv.Itoa(r.SellOrders), strconv.FormatInt(r.SellQty, 10), avg(r.SellNotional, r.SellQty), r.SellNotional.StringFixed(2),
	}
}

func avg(notional decimal.Decimal, qty int64) string {
	if qty == 0 {
		return "0.0000"
	}
	return notional.Div(decimal.NewFromInt(qty)).StringFixed(4)
}
