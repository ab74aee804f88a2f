// Package ledger provides the in-process TokenLedger. It backs the default
// server wiring and doubles as the deterministic fake tests substitute for a
// live value-transfer ledger.
package ledger

import (
	"context"
	"sync"

	dErrors "patrolfund/pkg/domain-errors"

	id "patrolfund/pkg/domain"
)

type balanceKey struct {
	asset id.Asset
	who   id.Principal
}

// InMemoryLedger tracks fungible asset balances per (asset, principal) pair.
type InMemoryLedger struct {
	mu       sync.RWMutex
	balances map[balanceKey]uint64
}

func New() *InMemoryLedger {
	return &InMemoryLedger{balances: make(map[balanceKey]uint64)}
}

// Mint credits amount of asset to who. Used to seed balances; the core never
// calls it.
func (l *InMemoryLedger) Mint(asset id.Asset, who id.Principal, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[balanceKey{asset, who}] += amount
}

// Transfer debits from and credits to atomically. A zero-amount transfer and
// an insufficient balance both fail: the hosting ledger treats them as
// declined operations, and the core must observe the decline.
func (l *InMemoryLedger) Transfer(_ context.Context, asset id.Asset, from, to id.Principal, amount uint64) error {
	if amount == 0 {
		return dErrors.New(dErrors.CodeTransferFailed, "zero-amount transfer declined")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fromKey := balanceKey{asset, from}
	if l.balances[fromKey] < amount {
		return dErrors.Newf(dErrors.CodeTransferFailed, "insufficient %s balance for %s", asset, from)
	}
	l.balances[fromKey] -= amount
	l.balances[balanceKey{asset, to}] += amount
	return nil
}

// BalanceOf reports the balance of asset held by who.
func (l *InMemoryLedger) BalanceOf(_ context.Context, asset id.Asset, who id.Principal) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[balanceKey{asset, who}], nil
}
