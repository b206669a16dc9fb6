package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/types"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// SQLiteStore persists trading configs to SQLite and serves reads from an
// in-memory copy loaded at open time. Writes go to disk first, then memory.
type SQLiteStore struct {
	db    *sql.DB
	cache *MemoryStore

	// serializes writers so disk and cache agree on the last write
	writeMu sync.Mutex
}

var _ interfaces.ConfigStore = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database at path and loads every stored config.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.ExecContext(ctx, `
    CREATE TABLE IF NOT EXISTS trading_configs (
        symbol TEXT PRIMARY KEY,
        order_size TEXT NOT NULL,
        min_profit_pct TEXT NOT NULL,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create trading_configs table: %w", err)
	}

	s := &SQLiteStore{db: db, cache: NewMemoryStore()}
	if err := s.load(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, order_size, min_profit_pct FROM trading_configs`)
	if err != nil {
		return fmt.Errorf("failed to load trading configs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var symbol, size, profit string
		if err := rows.Scan(&symbol, &size, &profit); err != nil {
			return fmt.Errorf("failed to scan trading config: %w", err)
		}
		cfg := types.TradingConfig{Symbol: symbol}
		if cfg.OrderSize, err = decimal.NewFromString(size); err != nil {
			return fmt.Errorf("corrupt order_size for %s: %w", symbol, err)
		}
		if cfg.MinProfitPct, err = decimal.NewFromString(profit); err != nil {
			return fmt.Errorf("corrupt min_profit_pct for %s: %w", symbol, err)
		}
		if err := s.cache.Upsert(ctx, cfg); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) Upsert(ctx context.Context, cfg types.TradingConfig) error {
	cfg, err := normalize(cfg)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO trading_configs (symbol, order_size, min_profit_pct, updated_at)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(symbol) DO UPDATE SET
            order_size = excluded.order_size,
            min_profit_pct = excluded.min_profit_pct,
            updated_at = CURRENT_TIMESTAMP
    `, cfg.Symbol, cfg.OrderSize.String(), cfg.MinProfitPct.String())
	if err != nil {
		return fmt.Errorf("failed to persist config for %s: %w", cfg.Symbol, err)
	}

	return s.cache.Upsert(ctx, cfg)
}

func (s *SQLiteStore) Get(symbol string) (types.TradingConfig, bool) {
	return s.cache.Get(symbol)
}

func (s *SQLiteStore) All() []types.TradingConfig {
	return s.cache.All()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
