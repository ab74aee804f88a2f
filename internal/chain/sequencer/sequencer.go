// Package sequencer serializes state-mutating operations into a strict total
// order. The source environment executes one call at a time with no internal
// suspension points; under real parallelism that guarantee is preserved by
// funnelling every mutating operation, including its external transfer,
// through a single writer lock.
package sequencer

import (
	"context"
	"sync"
)

// Sequencer is the single serialization point for core mutations. Reads do
// not take the lock: stores guard their own maps, and the invariants reads
// depend on are only changed inside sequenced operations.
type Sequencer struct {
	mu sync.Mutex
}

// New returns a Sequencer. One instance is shared by all core services.
func New() *Sequencer {
	return &Sequencer{}
}

// Do runs fn exclusively. The operation either completes in full or, when fn
// returns an error before committing, leaves no observable state change.
// Context cancellation is checked before entry only; once started, an
// operation runs to completion.
func (s *Sequencer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx)
}
