package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patrolfund/internal/escrow/models"
	id "patrolfund/pkg/domain"
	"patrolfund/pkg/platform/sentinel"
)

func TestInMemoryEscrowStore(t *testing.T) {
	ctx := context.Background()
	escrow := &models.Escrow{
		ProposalID:  id.ProposalID(0),
		Amount:      5_000,
		Beneficiary: id.Principal("wallet-captain-000000000001"),
		Asset:       id.Asset("stx-token"),
		LockedAt:    10,
	}

	t.Run("one escrow per proposal, ever", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Create(ctx, escrow))

		err := s.Create(ctx, escrow)
		assert.ErrorIs(t, err, sentinel.ErrConflict)

		require.NoError(t, s.MarkReleased(ctx, escrow.ProposalID, 20))
		err = s.Create(ctx, escrow)
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("released flag is one-way", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Create(ctx, escrow))
		require.NoError(t, s.MarkReleased(ctx, escrow.ProposalID, 20))

		err := s.MarkReleased(ctx, escrow.ProposalID, 30)
		assert.ErrorIs(t, err, sentinel.ErrConflict)

		stored, err := s.Get(ctx, escrow.ProposalID)
		require.NoError(t, err)
		assert.True(t, stored.Released)
		assert.Equal(t, uint64(20), stored.ReleasedAt)
	})

	t.Run("missing escrow is not found", func(t *testing.T) {
		s := New()
		_, err := s.Get(ctx, id.ProposalID(9))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		err = s.MarkReleased(ctx, id.ProposalID(9), 20)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
