package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "patrolfund/pkg/domain"
	dErrors "patrolfund/pkg/domain-errors"
)

func TestInMemoryLedger(t *testing.T) {
	ctx := context.Background()
	stx := id.Asset("stx-token")
	alice := id.Principal("wallet-alice-00000000000001")
	bob := id.Principal("wallet-bob-0000000000000001")

	t.Run("transfer moves funds between principals", func(t *testing.T) {
		l := New()
		l.Mint(stx, alice, 500)

		require.NoError(t, l.Transfer(ctx, stx, alice, bob, 200))

		from, _ := l.BalanceOf(ctx, stx, alice)
		to, _ := l.BalanceOf(ctx, stx, bob)
		assert.Equal(t, uint64(300), from)
		assert.Equal(t, uint64(200), to)
	})

	t.Run("insufficient balance declines the transfer", func(t *testing.T) {
		l := New()
		l.Mint(stx, alice, 100)

		err := l.Transfer(ctx, stx, alice, bob, 200)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTransferFailed))

		balance, _ := l.BalanceOf(ctx, stx, alice)
		assert.Equal(t, uint64(100), balance)
	})

	t.Run("zero-amount transfer is declined", func(t *testing.T) {
		l := New()
		err := l.Transfer(ctx, stx, alice, bob, 0)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTransferFailed))
	})

	t.Run("balances are tracked per asset", func(t *testing.T) {
		l := New()
		l.Mint(stx, alice, 100)
		l.Mint(id.Asset("btc-token"), alice, 7)

		stxBalance, _ := l.BalanceOf(ctx, stx, alice)
		btcBalance, _ := l.BalanceOf(ctx, id.Asset("btc-token"), alice)
		assert.Equal(t, uint64(100), stxBalance)
		assert.Equal(t, uint64(7), btcBalance)
	})

	t.Run("unknown balance reads as zero", func(t *testing.T) {
		l := New()
		balance, err := l.BalanceOf(ctx, stx, alice)
		assert.NoError(t, err)
		assert.Zero(t, balance)
	})
}
