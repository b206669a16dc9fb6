package engine

import "sync"

// symbolLocks serializes whole decisions per symbol. A nil *symbolLocks
// disables serialization.
type symbolLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSymbolLocks() *symbolLocks {
	return &symbolLocks{locks: make(map[string]*sync.Mutex)}
}

func (s *symbolLocks) lock(symbol string) (unlock func()) {
	if s == nil {
		return func() {}
	}
	s.mu.Lock()
	l, ok := s.locks[symbol]
	if !ok {
		l = &sync.Mutex{}
		s.locks[symbol] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
