// Package store holds the vote tallies.
package store

import (
	"context"
	"fmt"
	"sync"

	"patrolfund/internal/voting/models"
	id "patrolfund/pkg/domain"
	"patrolfund/pkg/platform/sentinel"
)

// InMemoryTallyStore keeps one tally per proposal.
type InMemoryTallyStore struct {
	mu      sync.RWMutex
	tallies map[id.ProposalID]*models.Tally
}

func New() *InMemoryTallyStore {
	return &InMemoryTallyStore{tallies: make(map[id.ProposalID]*models.Tally)}
}

// AddVote accumulates stake on one side of the tally, creating it on the
// first vote, and resets the end height. Fails once the tally is resolved.
func (s *InMemoryTallyStore) AddVote(_ context.Context, proposalID id.ProposalID, voteYes bool, stake, endHeight uint64) (models.Tally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tally, ok := s.tallies[proposalID]
	if !ok {
		tally = &models.Tally{ProposalID: proposalID}
		s.tallies[proposalID] = tally
	}
	if tally.Resolved {
		return models.Tally{}, fmt.Errorf("tally for proposal %d is resolved: %w",
			proposalID, sentinel.ErrInvalidState)
	}
	if voteYes {
		tally.YesStake += stake
	} else {
		tally.NoStake += stake
	}
	tally.EndHeight = endHeight
	return *tally, nil
}

// MarkResolved freezes the tally with its outcome. Idempotent for the same
// outcome; a different outcome after resolution is an invariant violation
// upstream and is rejected.
func (s *InMemoryTallyStore) MarkResolved(_ context.Context, proposalID id.ProposalID, outcome models.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tally, ok := s.tallies[proposalID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if tally.Resolved {
		if tally.Outcome != outcome {
			return fmt.Errorf("tally for proposal %d already resolved %s: %w",
				proposalID, tally.Outcome, sentinel.ErrInvalidState)
		}
		return nil
	}
	tally.Resolved = true
	tally.Outcome = outcome
	return nil
}

// Get returns a copy of the tally.
func (s *InMemoryTallyStore) Get(_ context.Context, proposalID id.ProposalID) (models.Tally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tally, ok := s.tallies[proposalID]
	if !ok {
		return models.Tally{}, sentinel.ErrNotFound
	}
	return *tally, nil
}

// HasTally reports whether any vote has been cast on the proposal. The
// proposal service uses it as the authority handoff marker.
func (s *InMemoryTallyStore) HasTally(_ context.Context, proposalID id.ProposalID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tallies[proposalID]
	return ok, nil
}
