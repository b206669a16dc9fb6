package zerodha

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/types"

	"github.com/shopspring/decimal"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

var (
	ErrUnsupportedCurrency = errors.New("kite accounts are denominated in INR")
	ErrMissingCredentials  = errors.New("missing API key/access token")
	ErrNoQuote             = errors.New("no quote returned")
)

type Params struct {
	Mode        string
	APIKey      string
	AccessToken string
	Exchange    string
	Product     string
	BaseURI     string
}

type Zerodha struct {
	p  Params
	kc kiteClient
}

var _ interfaces.Broker = (*Zerodha)(nil)

func newZerodha(p Params, kc kiteClient) *Zerodha {
	if p.Exchange == "" {
		p.Exchange = kiteconnect.ExchangeNSE
	}
	if p.Product == "" {
		p.Product = kiteconnect.ProductCNC
	}
	return &Zerodha{p: p, kc: kc}
}

func (z *Zerodha) checkCredentials() error {
	if z.p.APIKey == "" || z.p.AccessToken == "" {
		return ErrMissingCredentials
	}
	return nil
}

// AvailableFunds reports the net equity margin. Kite has a single INR ledger.
func (z *Zerodha) AvailableFunds(ctx context.Context, currency string) (decimal.Decimal, error) {
	if !strings.EqualFold(currency, "INR") {
		return decimal.Zero, fmt.Errorf("%w, requested %s", ErrUnsupportedCurrency, currency)
	}
	if err := z.checkCredentials(); err != nil {
		return decimal.Zero, err
	}

	margins, err := z.kc.GetUserMargins()
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch margins: %w", err)
	}
	return decimal.NewFromFloat(margins.Equity.Net), nil
}

// Positions returns long net positions on the configured exchange.
func (z *Zerodha) Positions(ctx context.Context) ([]types.Position, error) {
	if err := z.checkCredentials(); err != nil {
		return nil, err
	}

	pos, err := z.kc.GetPositions()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch positions: %w", err)
	}

	out := make([]types.Position, 0, len(pos.Net))
	for _, p := range pos.Net {
		if !strings.EqualFold(p.Exchange, z.p.Exchange) || p.Quantity <= 0 {
			continue
		}
		out = append(out, types.Position{
			Symbol:      types.NormalizeSymbol(p.Tradingsymbol),
			Quantity:    int64(p.Quantity),
			AverageCost: decimal.NewFromFloat(p.AveragePrice),
			MarketPrice: decimal.NewFromFloat(p.LastPrice),
		})
	}
	return out, nil
}

// Quote returns the last traded price and the best bid/ask from market depth.
func (z *Zerodha) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	if err := z.checkCredentials(); err != nil {
		return types.Quote{}, err
	}

	key := z.instrument(symbol)
	quotes, err := z.kc.GetQuote(key)
	if err != nil {
		return types.Quote{}, fmt.Errorf("failed to fetch quote for %s: %w", key, err)
	}
	q, ok := quotes[key]
	if !ok {
		return types.Quote{}, fmt.Errorf("%w for %s", ErrNoQuote, key)
	}

	return types.Quote{
		Last: decimal.NewFromFloat(q.LastPrice),
		Bid:  decimal.NewFromFloat(q.Depth.Buy[0].Price),
		Ask:  decimal.NewFromFloat(q.Depth.Sell[0].Price),
	}, nil
}

// SubmitLimitOrder places a regular LIMIT order. Kite has no good-till-cancel
// validity for regular orders, so the order rests for the trading day.
func (z *Zerodha) SubmitLimitOrder(ctx context.Context, intent types.OrderIntent) (types.OrderResp, error) {
	if z.p.Mode == "DRY_RUN" {
		return types.OrderResp{
			OrderID: fmt.Sprintf("SIM-%d", time.Now().UnixNano()),
			Status:  "SIMULATED",
			Message: "dry-run",
		}, nil
	}
	if err := z.checkCredentials(); err != nil {
		return types.OrderResp{}, err
	}

	txn := kiteconnect.TransactionTypeBuy
	if intent.Side == types.SideSell {
		txn = kiteconnect.TransactionTypeSell
	}

	price, _ := intent.LimitPrice.Float64()
	resp, err := z.kc.PlaceOrder(kiteconnect.VarietyRegular, kiteconnect.OrderParams{
		Exchange:        z.p.Exchange,
		Tradingsymbol:   types.NormalizeSymbol(intent.Symbol),
		Validity:        kiteconnect.ValidityDay,
		Product:         z.p.Product,
		OrderType:       kiteconnect.OrderTypeLimit,
		TransactionType: txn,
		Quantity:        int(intent.Quantity),
		Price:           price,
		Tag:             intent.Tag,
	})
	if err != nil {
		return types.OrderResp{}, fmt.Errorf("failed to place %s order for %s: %w", intent.Side, intent.Symbol, err)
	}

	return types.OrderResp{OrderID: resp.OrderID, Status: "PLACED", Message: "ok"}, nil
}

func (z *Zerodha) instrument(symbol string) string {
	return strings.ToUpper(z.p.Exchange) + ":" + types.NormalizeSymbol(symbol)
}
