// Package store holds the verification records.
package store

import (
	"context"
	"fmt"
	"sync"

	"patrolfund/internal/verification/models"
	id "patrolfund/pkg/domain"
	"patrolfund/pkg/platform/sentinel"
)

// InMemoryRecordStore keeps one attestation record per proposal.
type InMemoryRecordStore struct {
	mu      sync.RWMutex
	records map[id.ProposalID]*models.Record
}

func New() *InMemoryRecordStore {
	return &InMemoryRecordStore{records: make(map[id.ProposalID]*models.Record)}
}

// AddSigner appends a distinct signer, creating the record on first
// signature. A repeat signer fails with ErrConflict, a full signer set with
// ErrCapacity. When the distinct count reaches threshold the record flips
// verified permanently.
func (s *InMemoryRecordStore) AddSigner(_ context.Context, proposalID id.ProposalID, signer id.Principal, threshold, maxSigners int) (models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[proposalID]
	if !ok {
		record = &models.Record{ProposalID: proposalID}
		s.records[proposalID] = record
	}
	if record.HasSigner(signer) {
		return models.Record{}, fmt.Errorf("signer %s already recorded: %w", signer, sentinel.ErrConflict)
	}
	if len(record.Signers) >= maxSigners {
		return models.Record{}, fmt.Errorf("signer set full: %w", sentinel.ErrCapacity)
	}

	record.Signers = append(record.Signers, signer)
	if len(record.Signers) >= threshold {
		record.Verified = true
	}
	return s.copyOf(record), nil
}

// Get returns a copy of the record.
func (s *InMemoryRecordStore) Get(_ context.Context, proposalID id.ProposalID) (models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[proposalID]
	if !ok {
		return models.Record{}, sentinel.ErrNotFound
	}
	return s.copyOf(record), nil
}

func (s *InMemoryRecordStore) copyOf(record *models.Record) models.Record {
	out := *record
	out.Signers = append([]id.Principal{}, record.Signers...)
	return out
}
