package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/types"
)

const (
	PromptSymbol = "Please enter the ticker symbol (e.g., AAPL):"
	ReplyCancel  = "Configuration canceled."
)

// Updater validates dialogue input step by step and writes completed
// sessions into the configuration store.
type Updater struct {
	store    interfaces.ConfigStore
	currency string
}

func NewUpdater(store interfaces.ConfigStore, currency string) *Updater {
	if currency == "" {
		currency = "USD"
	}
	return &Updater{store: store, currency: strings.ToUpper(currency)}
}

// Feed applies one line of user input to s and returns the reply to show.
// A validation error leaves s on the same step; the reply re-prompts for it.
func (u *Updater) Feed(ctx context.Context, s *Session, input string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case AwaitingSymbol:
		sym, err := parseSymbol(input)
		if err != nil {
			return PromptSymbol, err
		}
		s.symbol = sym
		s.state = AwaitingSize
		return fmt.Sprintf("Ticker set to %s.\nEnter order size in %s (e.g., 1000):", sym, u.currency), nil

	case AwaitingSize:
		size, err := parseOrderSize(input)
		if err != nil {
			return fmt.Sprintf("Invalid number. Please enter a numeric order size in %s:", u.currency), err
		}
		s.size = size
		s.state = AwaitingProfit
		return fmt.Sprintf("Order size set to %s.\nNow enter minimum profit percentage (e.g., 2.5):", u.money(size.String())), nil

	case AwaitingProfit:
		pct, err := parseProfit(input)
		if err != nil {
			return "Invalid percentage. Please enter a numeric profit percentage:", err
		}
		s.profit = pct
		cfg := s.pending()
		if err := u.store.Upsert(ctx, cfg); err != nil {
			logger.ErrorWithErr(ctx, "Failed to save trading config", err, "symbol", cfg.Symbol, "session_id", s.ID)
			return "Could not save configuration. Please enter the minimum profit percentage again:", err
		}
		s.state = Complete
		logger.Info(ctx, "Trading config saved",
			"symbol", cfg.Symbol,
			"order_size", cfg.OrderSize.String(),
			"min_profit_pct", cfg.MinProfitPct.String(),
			"session_id", s.ID,
		)
		return fmt.Sprintf("Configuration saved for %s:\n • Order size: %s\n • Min profit: %s%%\nBot is now ready to handle webhooks for this ticker.",
			cfg.Symbol, u.money(cfg.OrderSize.String()), cfg.MinProfitPct.String()), nil

	default:
		return "", fmt.Errorf("%w: %s", ErrSessionClosed, s.state)
	}
}

// Configure runs a fresh session through all three steps with the given
// answers.
func (u *Updater) Configure(ctx context.Context, symbol, size, profit string) (types.TradingConfig, error) {
	s := NewSession()
	for _, input := range []string{symbol, size, profit} {
		if _, err := u.Feed(ctx, s, input); err != nil {
			return types.TradingConfig{}, err
		}
	}
	cfg, ok := s.Config()
	if !ok {
		return types.TradingConfig{}, errors.New("session did not complete")
	}
	return cfg, nil
}

func (u *Updater) money(amount string) string {
	switch u.currency {
	case "USD":
		return "$" + amount
	case "INR":
		return "₹" + amount
	default:
		return amount + " " + u.currency
	}
}
