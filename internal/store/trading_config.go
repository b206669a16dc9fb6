package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/types"
)

var ErrInvalidConfig = errors.New("invalid trading config")

// MemoryStore keeps trading configs in a map guarded by a single RWMutex.
// The lock is only held for the map access itself.
type MemoryStore struct {
	mu      sync.RWMutex
	configs map[string]types.TradingConfig
}

var _ interfaces.ConfigStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		configs: make(map[string]types.TradingConfig),
	}
}

// Upsert replaces any existing entry for cfg.Symbol.
func (s *MemoryStore) Upsert(_ context.Context, cfg types.TradingConfig) error {
	cfg, err := normalize(cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.configs[cfg.Symbol] = cfg
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(symbol string) (types.TradingConfig, bool) {
	symbol = types.NormalizeSymbol(symbol)

	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[symbol]
	return cfg, ok
}

// All returns every stored config sorted by symbol.
func (s *MemoryStore) All() []types.TradingConfig {
	s.mu.RLock()
	out := make([]types.TradingConfig, 0, len(s.configs))
	for _, cfg := range s.configs {
		out = append(out, cfg)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func normalize(cfg types.TradingConfig) (types.TradingConfig, error) {
	cfg.Symbol = types.NormalizeSymbol(cfg.Symbol)
	if cfg.Symbol == "" {
		return cfg, fmt.Errorf("%w: empty symbol", ErrInvalidConfig)
	}
	if !cfg.OrderSize.IsPositive() {
		return cfg, fmt.Errorf("%w: order size must be positive, got %s", ErrInvalidConfig, cfg.OrderSize)
	}
	return cfg, nil
}
