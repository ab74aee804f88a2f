package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patrolfund/internal/pool/models"
	id "patrolfund/pkg/domain"
	"patrolfund/pkg/platform/sentinel"
)

func newPool(name string) *models.Pool {
	return &models.Pool{
		Name:        name,
		MinDonation: 10,
		MaxDonation: 1_000,
		Creator:     id.Principal("wallet-creator-000000000001"),
		Type:        models.PoolTypeCommunity,
		Currency:    models.CurrencySTX,
		Asset:       id.Asset("stx-token"),
		Active:      true,
	}
}

func TestCreateIfNameAvailable(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns sequential ids from zero", func(t *testing.T) {
		s := New(0, 10)

		first, err := s.CreateIfNameAvailable(ctx, newPool("alpha"))
		require.NoError(t, err)
		assert.Equal(t, id.PoolID(0), first)

		second, err := s.CreateIfNameAvailable(ctx, newPool("beta"))
		require.NoError(t, err)
		assert.Equal(t, id.PoolID(1), second)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		s := New(0, 10)
		_, err := s.CreateIfNameAvailable(ctx, newPool("alpha"))
		require.NoError(t, err)

		_, err = s.CreateIfNameAvailable(ctx, newPool("alpha"))
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("ceiling stops creation", func(t *testing.T) {
		s := New(0, 1)
		_, err := s.CreateIfNameAvailable(ctx, newPool("alpha"))
		require.NoError(t, err)

		_, err = s.CreateIfNameAvailable(ctx, newPool("beta"))
		assert.ErrorIs(t, err, sentinel.ErrCapacity)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("rename moves the name index", func(t *testing.T) {
		s := New(0, 10)
		poolID, err := s.CreateIfNameAvailable(ctx, newPool("alpha"))
		require.NoError(t, err)

		err = s.Update(ctx, poolID, models.PoolUpdate{
			PoolID: poolID, OldName: "alpha", NewName: "omega", NewMin: 20, NewMax: 2_000,
		})
		require.NoError(t, err)

		found, err := s.IDByName(ctx, "omega")
		require.NoError(t, err)
		assert.Equal(t, poolID, found)

		_, err = s.IDByName(ctx, "alpha")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		updates, err := s.Updates(ctx, poolID)
		require.NoError(t, err)
		assert.Len(t, updates, 1)
	})

	t.Run("rename onto another pool's name conflicts", func(t *testing.T) {
		s := New(0, 10)
		poolID, err := s.CreateIfNameAvailable(ctx, newPool("alpha"))
		require.NoError(t, err)
		_, err = s.CreateIfNameAvailable(ctx, newPool("beta"))
		require.NoError(t, err)

		err = s.Update(ctx, poolID, models.PoolUpdate{PoolID: poolID, NewName: "beta"})
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("renaming to the same name is allowed", func(t *testing.T) {
		s := New(0, 10)
		poolID, err := s.CreateIfNameAvailable(ctx, newPool("alpha"))
		require.NoError(t, err)

		err = s.Update(ctx, poolID, models.PoolUpdate{PoolID: poolID, NewName: "alpha", NewMin: 5, NewMax: 50})
		assert.NoError(t, err)
	})
}

func TestRecordDonation(t *testing.T) {
	ctx := context.Background()
	donor := id.Principal("wallet-donor-00000000000001")

	t.Run("cumulative record and both totals move together", func(t *testing.T) {
		s := New(0, 10)
		poolID, err := s.CreateIfNameAvailable(ctx, newPool("alpha"))
		require.NoError(t, err)

		first, err := s.RecordDonation(ctx, poolID, donor, 100, 5)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), first.Amount)

		second, err := s.RecordDonation(ctx, poolID, donor, 200, 6)
		require.NoError(t, err)
		assert.Equal(t, uint64(300), second.Amount)
		assert.Equal(t, uint64(6), second.Height)

		pool, err := s.Get(ctx, poolID)
		require.NoError(t, err)
		assert.Equal(t, uint64(300), pool.TotalDonations)

		grand, err := s.GrandTotal(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(300), grand)
	})

	t.Run("unknown pool is not found", func(t *testing.T) {
		s := New(0, 10)
		_, err := s.RecordDonation(ctx, id.PoolID(7), donor, 100, 5)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestAdminSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("authority is one-way", func(t *testing.T) {
		s := New(100, 10)

		_, configured, err := s.Authority(ctx)
		require.NoError(t, err)
		assert.False(t, configured)

		first := id.Principal("wallet-authority-0000000001")
		require.NoError(t, s.SetAuthorityOnce(ctx, first))

		err = s.SetAuthorityOnce(ctx, id.Principal("wallet-usurper-000000000001"))
		assert.ErrorIs(t, err, sentinel.ErrConflict)

		got, configured, err := s.Authority(ctx)
		require.NoError(t, err)
		assert.True(t, configured)
		assert.Equal(t, first, got)
	})

	t.Run("fee and ceiling are replaceable", func(t *testing.T) {
		s := New(100, 10)

		require.NoError(t, s.SetCreationFee(ctx, 250))
		fee, err := s.CreationFee(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(250), fee)

		require.NoError(t, s.SetMaxPools(ctx, 3))
		ceiling, err := s.MaxPools(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), ceiling)
	})
}
