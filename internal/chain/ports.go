// Package chain defines the capability ports connecting the core to its
// hosting ledger environment: the logical height clock and the value transfer
// ledger. The core never assumes a transfer succeeds; every call site treats
// failure as an immediate abort of the enclosing operation.
package chain

import (
	"context"

	id "patrolfund/pkg/domain"
)

// Clock supplies the current logical height. Height is a monotonically
// increasing counter observed from the hosting environment, used in place of
// wall-clock time for voting windows and record timestamps.
type Clock interface {
	Height() uint64
}

// TokenLedger moves value between principals on behalf of the core. It is an
// external collaborator: debits and credits happen outside the core's state,
// and a returned error means no value moved.
type TokenLedger interface {
	// Transfer moves amount of asset from one principal to another.
	Transfer(ctx context.Context, asset id.Asset, from, to id.Principal, amount uint64) error

	// BalanceOf reports the current balance of asset held by who.
	BalanceOf(ctx context.Context, asset id.Asset, who id.Principal) (uint64, error)
}
