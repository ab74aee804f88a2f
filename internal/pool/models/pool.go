package models

import (
	id "patrolfund/pkg/domain"
	dErrors "patrolfund/pkg/domain-errors"
)

// Validation bounds for pool fields.
const (
	MaxNameLen     = 100
	MaxLocationLen = 100
	MaxFeeRate     = 10
	MaxGracePeriod = 30
)

// PoolType classifies a funding pool by its deployment cadence.
type PoolType string

const (
	PoolTypeCommunity PoolType = "community"
	PoolTypeEmergency PoolType = "emergency"
	PoolTypeOngoing   PoolType = "ongoing"
)

var validPoolTypes = map[PoolType]bool{
	PoolTypeCommunity: true,
	PoolTypeEmergency: true,
	PoolTypeOngoing:   true,
}

// ParsePoolType constructs a PoolType from external input.
func ParsePoolType(s string) (PoolType, error) {
	t := PoolType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid pool type")
	}
	return t, nil
}

func (t PoolType) IsValid() bool { return validPoolTypes[t] }

// Currency is the symbolic display currency of a pool. No FX logic: value
// moves only in the pool's bound asset.
type Currency string

const (
	CurrencySTX Currency = "STX"
	CurrencyUSD Currency = "USD"
	CurrencyBTC Currency = "BTC"
)

var validCurrencies = map[Currency]bool{
	CurrencySTX: true,
	CurrencyUSD: true,
	CurrencyBTC: true,
}

// ParseCurrency constructs a Currency from external input.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(s)
	if !c.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid currency")
	}
	return c, nil
}

func (c Currency) IsValid() bool { return validCurrencies[c] }

// Pool is a named fund-collection bucket.
//
// Invariants:
//   - Name maps to exactly one pool id; the mapping follows renames
//   - TotalDonations is monotonically non-decreasing and equals the sum of
//     all Donation.Amount for the pool
//   - Creator and Asset are immutable after creation
//   - Pools are never deleted
type Pool struct {
	ID             id.PoolID    `json:"id"`
	Name           string       `json:"name"`
	MinDonation    uint64       `json:"min_donation"`
	MaxDonation    uint64       `json:"max_donation"`
	TotalDonations uint64       `json:"total_donations"`
	Creator        id.Principal `json:"creator"`
	Type           PoolType     `json:"type"`
	FeeRate        uint64       `json:"fee_rate"`
	GracePeriod    uint64       `json:"grace_period"`
	Location       string       `json:"location"`
	Currency       Currency     `json:"currency"`
	Asset          id.Asset     `json:"asset"`
	Active         bool         `json:"active"`
	CreatedAt      uint64       `json:"created_at"`
}

// Donation is the cumulative contribution of one donor to one pool. Amount
// only grows; Height records the last donation.
type Donation struct {
	PoolID id.PoolID    `json:"pool_id"`
	Donor  id.Principal `json:"donor"`
	Amount uint64       `json:"amount"`
	Height uint64       `json:"height"`
}

// PoolUpdate is an audit entry recording who updated which pool, to what,
// and at which height.
type PoolUpdate struct {
	PoolID    id.PoolID    `json:"pool_id"`
	UpdatedBy id.Principal `json:"updated_by"`
	OldName   string       `json:"old_name"`
	NewName   string       `json:"new_name"`
	NewMin    uint64       `json:"new_min"`
	NewMax    uint64       `json:"new_max"`
	Height    uint64       `json:"height"`
}

// ValidateName enforces the pool name bounds shared by create and update.
func ValidateName(name string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "pool name cannot be empty")
	}
	if len(name) > MaxNameLen {
		return dErrors.New(dErrors.CodeValidation, "pool name exceeds maximum length")
	}
	return nil
}

// ValidateBounds enforces the donation bound rules shared by create and
// update. Both bounds must be positive; the contracts never required
// min <= max, so neither does this port.
func ValidateBounds(minDonation, maxDonation uint64) error {
	if minDonation == 0 {
		return dErrors.New(dErrors.CodeValidation, "minimum donation must be positive")
	}
	if maxDonation == 0 {
		return dErrors.New(dErrors.CodeValidation, "maximum donation must be positive")
	}
	return nil
}
