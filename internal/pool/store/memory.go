// Package store holds the registry's mutable tables: pools, the name index,
// cumulative donations, update audit entries, and the administrative
// settings. All commits happen under one lock so a snapshot taken between
// operations always satisfies the registry invariants.
package store

import (
	"context"
	"fmt"
	"sync"

	"patrolfund/internal/pool/models"
	id "patrolfund/pkg/domain"
	"patrolfund/pkg/platform/sentinel"
)

type donationKey struct {
	pool  id.PoolID
	donor id.Principal
}

// InMemoryPoolStore is the registry state store.
type InMemoryPoolStore struct {
	mu        sync.RWMutex
	pools     map[id.PoolID]*models.Pool
	nameIndex map[string]id.PoolID
	donations map[donationKey]*models.Donation
	updates   map[id.PoolID][]models.PoolUpdate
	nextID    id.PoolID
	grand     uint64

	// Administrative settings. Authority is one-way: once set it can never
	// be replaced, a deliberate bootstrap guard against takeover.
	authority   id.Principal
	creationFee uint64
	maxPools    uint64
}

// New creates a pool store seeded with the configured creation fee and pool
// ceiling. The authority starts unset.
func New(creationFee, maxPools uint64) *InMemoryPoolStore {
	return &InMemoryPoolStore{
		pools:     make(map[id.PoolID]*models.Pool),
		nameIndex: make(map[string]id.PoolID),
		donations: make(map[donationKey]*models.Donation),
		updates:   make(map[id.PoolID][]models.PoolUpdate),

		creationFee: creationFee,
		maxPools:    maxPools,
	}
}

// CreateIfNameAvailable assigns the next sequential id and inserts the pool,
// enforcing name uniqueness and the pool-count ceiling.
func (s *InMemoryPoolStore) CreateIfNameAvailable(_ context.Context, pool *models.Pool) (id.PoolID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if uint64(len(s.pools)) >= s.maxPools {
		return 0, sentinel.ErrCapacity
	}
	if _, taken := s.nameIndex[pool.Name]; taken {
		return 0, fmt.Errorf("pool name %q: %w", pool.Name, sentinel.ErrConflict)
	}

	stored := *pool
	stored.ID = s.nextID
	s.pools[stored.ID] = &stored
	s.nameIndex[stored.Name] = stored.ID
	s.nextID++
	return stored.ID, nil
}

// Update applies a creator-approved rename/bounds change and records the
// audit entry, keeping the name index in sync.
func (s *InMemoryPoolStore) Update(_ context.Context, poolID id.PoolID, entry models.PoolUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool, ok := s.pools[poolID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if other, taken := s.nameIndex[entry.NewName]; taken && other != poolID {
		return fmt.Errorf("pool name %q: %w", entry.NewName, sentinel.ErrConflict)
	}

	delete(s.nameIndex, pool.Name)
	pool.Name = entry.NewName
	pool.MinDonation = entry.NewMin
	pool.MaxDonation = entry.NewMax
	s.nameIndex[pool.Name] = poolID
	s.updates[poolID] = append(s.updates[poolID], entry)
	return nil
}

// RecordDonation commits one accepted donation: the donor's cumulative
// record, the pool total, and the grand total move together or not at all.
func (s *InMemoryPoolStore) RecordDonation(_ context.Context, poolID id.PoolID, donor id.Principal, amount, height uint64) (models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool, ok := s.pools[poolID]
	if !ok {
		return models.Donation{}, sentinel.ErrNotFound
	}

	key := donationKey{poolID, donor}
	record, ok := s.donations[key]
	if !ok {
		record = &models.Donation{PoolID: poolID, Donor: donor}
		s.donations[key] = record
	}
	record.Amount += amount
	record.Height = height
	pool.TotalDonations += amount
	s.grand += amount
	return *record, nil
}

// Get returns a copy of the pool.
func (s *InMemoryPoolStore) Get(_ context.Context, poolID id.PoolID) (models.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pool, ok := s.pools[poolID]
	if !ok {
		return models.Pool{}, sentinel.ErrNotFound
	}
	return *pool, nil
}

// IDByName resolves a pool name to its id.
func (s *InMemoryPoolStore) IDByName(_ context.Context, name string) (id.PoolID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	poolID, ok := s.nameIndex[name]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	return poolID, nil
}

// Donation returns the cumulative donation of donor to poolID.
func (s *InMemoryPoolStore) Donation(_ context.Context, poolID id.PoolID, donor id.Principal) (models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.donations[donationKey{poolID, donor}]
	if !ok {
		return models.Donation{}, sentinel.ErrNotFound
	}
	return *record, nil
}

// Updates returns the audit history for a pool, oldest first.
func (s *InMemoryPoolStore) Updates(_ context.Context, poolID id.PoolID) ([]models.PoolUpdate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PoolUpdate{}, s.updates[poolID]...), nil
}

// Count returns the number of registered pools.
func (s *InMemoryPoolStore) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.pools)), nil
}

// GrandTotal returns donations accumulated across all pools.
func (s *InMemoryPoolStore) GrandTotal(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grand, nil
}

// Authority returns the configured fee recipient, if any.
func (s *InMemoryPoolStore) Authority(_ context.Context) (id.Principal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authority, !s.authority.IsZero(), nil
}

// SetAuthorityOnce configures the fee recipient. Fails with ErrConflict when
// already configured; the setting is permanent for the process state.
func (s *InMemoryPoolStore) SetAuthorityOnce(_ context.Context, recipient id.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authority.IsZero() {
		return fmt.Errorf("authority already configured: %w", sentinel.ErrConflict)
	}
	s.authority = recipient
	return nil
}

// CreationFee returns the current pool creation fee.
func (s *InMemoryPoolStore) CreationFee(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creationFee, nil
}

// SetCreationFee replaces the pool creation fee.
func (s *InMemoryPoolStore) SetCreationFee(_ context.Context, fee uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creationFee = fee
	return nil
}

// MaxPools returns the registry ceiling.
func (s *InMemoryPoolStore) MaxPools(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxPools, nil
}

// SetMaxPools replaces the registry ceiling. Lowering it below the current
// count stops further creation without touching existing pools.
func (s *InMemoryPoolStore) SetMaxPools(_ context.Context, maxPools uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxPools = maxPools
	return nil
}
