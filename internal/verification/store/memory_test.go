package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "patrolfund/pkg/domain"
	"patrolfund/pkg/platform/sentinel"
)

func TestAddSigner(t *testing.T) {
	ctx := context.Background()
	proposalID := id.ProposalID(0)
	signer := func(n int) id.Principal {
		return id.Principal(fmt.Sprintf("wallet-signer-%012d", n))
	}

	t.Run("verified flips at the threshold and stays set", func(t *testing.T) {
		s := New()

		record, err := s.AddSigner(ctx, proposalID, signer(1), 2, 5)
		require.NoError(t, err)
		assert.False(t, record.Verified)

		record, err = s.AddSigner(ctx, proposalID, signer(2), 2, 5)
		require.NoError(t, err)
		assert.True(t, record.Verified)

		record, err = s.AddSigner(ctx, proposalID, signer(3), 2, 5)
		require.NoError(t, err)
		assert.True(t, record.Verified)
		assert.Len(t, record.Signers, 3)
	})

	t.Run("repeat signer conflicts without mutating", func(t *testing.T) {
		s := New()
		_, err := s.AddSigner(ctx, proposalID, signer(1), 3, 5)
		require.NoError(t, err)

		_, err = s.AddSigner(ctx, proposalID, signer(1), 3, 5)
		assert.ErrorIs(t, err, sentinel.ErrConflict)

		record, err := s.Get(ctx, proposalID)
		require.NoError(t, err)
		assert.Len(t, record.Signers, 1)
	})

	t.Run("signer set is capped", func(t *testing.T) {
		s := New()
		for n := 1; n <= 2; n++ {
			_, err := s.AddSigner(ctx, proposalID, signer(n), 5, 2)
			require.NoError(t, err)
		}

		_, err := s.AddSigner(ctx, proposalID, signer(3), 5, 2)
		assert.ErrorIs(t, err, sentinel.ErrCapacity)
	})

	t.Run("returned record is a copy", func(t *testing.T) {
		s := New()
		record, err := s.AddSigner(ctx, proposalID, signer(1), 3, 5)
		require.NoError(t, err)

		record.Signers[0] = id.Principal("wallet-mutated-00000000001")

		stored, err := s.Get(ctx, proposalID)
		require.NoError(t, err)
		assert.Equal(t, signer(1), stored.Signers[0])
	})
}
