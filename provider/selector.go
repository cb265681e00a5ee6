package provider

import "sync"

// Selector holds the process-wide vendor choice. Runs call Current once and
// keep the returned adapter, so a later Select never changes a run in flight.
type Selector struct {
	mu      sync.RWMutex
	current Provider
}

// NewSelector returns a Selector with no vendor selected.
func NewSelector() *Selector {
	return &Selector{}
}

// Select builds an adapter for cfg and makes it current. On error the
// previous selection is kept.
func (s *Selector) Select(cfg Config, opts ...Option) error {
	p, err := New(cfg, opts...)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
	return nil
}

// Current returns the selected adapter.
func (s *Selector) Current() (Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoProviderSelected
	}
	return s.current, nil
}
