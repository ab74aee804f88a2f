// Package store holds the escrow table.
package store

import (
	"context"
	"fmt"
	"sync"

	"patrolfund/internal/escrow/models"
	id "patrolfund/pkg/domain"
	"patrolfund/pkg/platform/sentinel"
)

// InMemoryEscrowStore keeps one escrow per proposal. The one-way released
// flag is guarded here so no call site can flip it twice.
type InMemoryEscrowStore struct {
	mu      sync.RWMutex
	escrows map[id.ProposalID]*models.Escrow
}

func New() *InMemoryEscrowStore {
	return &InMemoryEscrowStore{escrows: make(map[id.ProposalID]*models.Escrow)}
}

// Create inserts the escrow. A second lock for the same proposal fails with
// ErrConflict whether or not the first was released; escrow history is never
// overwritten.
func (s *InMemoryEscrowStore) Create(_ context.Context, escrow *models.Escrow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.escrows[escrow.ProposalID]; exists {
		return fmt.Errorf("escrow for proposal %d exists: %w", escrow.ProposalID, sentinel.ErrConflict)
	}
	stored := *escrow
	s.escrows[escrow.ProposalID] = &stored
	return nil
}

// MarkReleased flips the one-way released flag. Fails with ErrConflict when
// already released.
func (s *InMemoryEscrowStore) MarkReleased(_ context.Context, proposalID id.ProposalID, height uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	escrow, ok := s.escrows[proposalID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if escrow.Released {
		return fmt.Errorf("escrow for proposal %d already released: %w", proposalID, sentinel.ErrConflict)
	}
	escrow.Released = true
	escrow.ReleasedAt = height
	return nil
}

// Get returns a copy of the escrow.
func (s *InMemoryEscrowStore) Get(_ context.Context, proposalID id.ProposalID) (models.Escrow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	escrow, ok := s.escrows[proposalID]
	if !ok {
		return models.Escrow{}, sentinel.ErrNotFound
	}
	return *escrow, nil
}
