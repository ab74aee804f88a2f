// Package store holds the proposal table.
package store

import (
	"context"
	"fmt"
	"sync"

	"patrolfund/internal/proposal/models"
	id "patrolfund/pkg/domain"
	"patrolfund/pkg/platform/sentinel"
)

// InMemoryProposalStore assigns sequential ids and guards the legal
// transition set on every status change.
type InMemoryProposalStore struct {
	mu        sync.RWMutex
	proposals map[id.ProposalID]*models.Proposal
	nextID    id.ProposalID
}

func New() *InMemoryProposalStore {
	return &InMemoryProposalStore{proposals: make(map[id.ProposalID]*models.Proposal)}
}

// Create assigns the next sequential id and inserts the proposal.
func (s *InMemoryProposalStore) Create(_ context.Context, proposal *models.Proposal) (id.ProposalID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *proposal
	stored.ID = s.nextID
	s.proposals[stored.ID] = &stored
	s.nextID++
	return stored.ID, nil
}

// SetStatus applies a status change, enforcing the legal transition set.
func (s *InMemoryProposalStore) SetStatus(_ context.Context, proposalID id.ProposalID, next models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	proposal, ok := s.proposals[proposalID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !proposal.Status.CanTransitionTo(next) {
		return fmt.Errorf("proposal %d status %s to %s: %w",
			proposalID, proposal.Status, next, sentinel.ErrInvalidState)
	}
	proposal.Status = next
	return nil
}

// Get returns a copy of the proposal.
func (s *InMemoryProposalStore) Get(_ context.Context, proposalID id.ProposalID) (models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposal, ok := s.proposals[proposalID]
	if !ok {
		return models.Proposal{}, sentinel.ErrNotFound
	}
	return *proposal, nil
}

// Count returns the number of proposals ever created.
func (s *InMemoryProposalStore) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.proposals)), nil
}
