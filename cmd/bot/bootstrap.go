package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"signal-trading-bot/internal/broker/brokerobs"
	"signal-trading-bot/internal/broker/paper"
	"signal-trading-bot/internal/broker/zerodha"
	"signal-trading-bot/internal/dialogue"
	"signal-trading-bot/internal/dispatch"
	"signal-trading-bot/internal/engine"
	"signal-trading-bot/internal/engine/engineobs"
	"signal-trading-bot/internal/eod"
	"signal-trading-bot/internal/eod/eodobs"
	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/store"
	"signal-trading-bot/internal/telegram"
	"signal-trading-bot/internal/trace"
	"signal-trading-bot/internal/tradelog"
	"signal-trading-bot/internal/types"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// app holds the wired components shared by every subcommand.
type app struct {
	cfg        *store.Config
	store      interfaces.ConfigStore
	closeStore func() error
	broker     interfaces.Broker
	engine     interfaces.Engine
	dispatcher interfaces.Dispatcher
	updater    *dialogue.Updater
	eod        interfaces.EodSummarizer
}

// initializeSystem loads .env and starts the logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func shutdownSystem() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = trace.Shutdown(ctx)
	logger.Sync()
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs gzips order journals older than TRADER_LOG_RETENTION_DAYS
func compressOldLogs(ctx context.Context) {
	v := os.Getenv("TRADER_LOG_RETENTION_DAYS")
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn(ctx, "Ignoring invalid TRADER_LOG_RETENTION_DAYS", "value", v)
		return
	}
	if err := tradelog.CompressOlder(n); err != nil {
		logger.Warn(ctx, "Failed to compress old logs", "error", err)
	}
}

func initializeStore(ctx context.Context, cfg *store.Config) (interfaces.ConfigStore, func() error, error) {
	switch cfg.ConfigStore.Driver {
	case "SQLITE":
		st, err := store.OpenSQLite(ctx, cfg.ConfigStore.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info(ctx, "Using SQLite config store", "path", cfg.ConfigStore.Path, "symbols", len(st.All()))
		return st, st.Close, nil
	default:
		logger.Info(ctx, "Using in-memory config store")
		return store.NewMemoryStore(), func() error { return nil }, nil
	}
}

// initializeBroker builds the configured gateway wrapped with observability
func initializeBroker(ctx context.Context, cfg *store.Config) (interfaces.Broker, error) {
	var brk interfaces.Broker

	switch cfg.Broker {
	case "ZERODHA":
		apiKey, token := os.Getenv("KITE_API_KEY"), os.Getenv("KITE_ACCESS_TOKEN")
		if apiKey == "" || token == "" {
			return nil, zerodha.ErrMissingCredentials
		}
		brk = zerodha.NewZerodha(zerodha.Params{
			Mode:        cfg.Mode,
			APIKey:      apiKey,
			AccessToken: token,
			Exchange:    cfg.Exchange,
			Product:     cfg.Product,
		})
		logger.Info(ctx, "Using Zerodha Kite gateway", "exchange", cfg.Exchange, "product", cfg.Product)
		if cfg.Mode == "DRY_RUN" {
			logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
		}
	default:
		brk = paper.New(paperParams(cfg))
		logger.Warn(ctx, "Using paper broker - no real orders are placed", "funds", cfg.PaperFunds().String(), "currency", cfg.Currency)
	}

	return brokerobs.Wrap(brk), nil
}

func paperParams(cfg *store.Config) paper.Params {
	p := paper.Params{
		Currency: cfg.Currency,
		Funds:    cfg.PaperFunds(),
		Quotes:   make(map[string]types.Quote, len(cfg.Paper.Quotes)),
	}
	for sym, q := range cfg.Paper.Quotes {
		p.Quotes[sym] = types.Quote{
			Last: decimal.NewFromFloat(q.Last),
			Bid:  decimal.NewFromFloat(q.Bid),
			Ask:  decimal.NewFromFloat(q.Ask),
		}
	}
	for _, pos := range cfg.Paper.Positions {
		p.Positions = append(p.Positions, types.Position{
			Symbol:      pos.Symbol,
			Quantity:    pos.Quantity,
			AverageCost: decimal.NewFromFloat(pos.AverageCost),
			MarketPrice: decimal.NewFromFloat(pos.MarketPrice),
		})
	}
	return p
}

func initializeEngine(cfg *store.Config, st interfaces.ConfigStore, brk interfaces.Broker) interfaces.Engine {
	eng := engine.New(st, brk, engine.Options{
		Currency:         cfg.Currency,
		OrderTag:         cfg.Engine.OrderTag,
		SerializeSymbols: cfg.Engine.SerializeSymbols,
	})
	return engineobs.Wrap(eng)
}

// initializeEOD builds the journal summarizer wrapped with observability
func initializeEOD(cfg *store.Config) interfaces.EodSummarizer {
	return eodobs.Wrap(eod.NewSummarizer(eod.Options{Cutoff: cfg.EodCutoff()}))
}

func initializeTelegram(cfg *store.Config, updater *dialogue.Updater, st interfaces.ConfigStore) (*telegram.Bot, error) {
	return telegram.New(telegram.Options{
		Token:          os.Getenv(cfg.Telegram.TokenEnv),
		PollTimeout:    time.Duration(cfg.Telegram.PollTimeoutSeconds) * time.Second,
		AllowedChatIDs: cfg.Telegram.AllowedChatIDs,
	}, updater, st)
}

// buildApp wires store, broker, engine, dispatcher and updater from the config file.
func buildApp(ctx context.Context, path string) (*app, error) {
	cfg, err := loadConfig(ctx, path)
	if err != nil {
		return nil, err
	}
	compressOldLogs(ctx)

	st, closeStore, err := initializeStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	brk, err := initializeBroker(ctx, cfg)
	if err != nil {
		_ = closeStore()
		return nil, err
	}
	eng := initializeEngine(cfg, st, brk)

	return &app{
		cfg:        cfg,
		store:      st,
		closeStore: closeStore,
		broker:     brk,
		engine:     eng,
		dispatcher: dispatch.New(eng),
		updater:    dialogue.NewUpdater(st, cfg.Currency),
		eod:        initializeEOD(cfg),
	}, nil
}

func (a *app) Close() {
	if err := a.closeStore(); err != nil {
		logger.Warn(context.Background(), "Failed to close config store", "error", err)
	}
}
