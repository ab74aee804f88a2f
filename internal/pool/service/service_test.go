package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"patrolfund/internal/chain"
	"patrolfund/internal/chain/ledger"
	"patrolfund/internal/chain/sequencer"
	eventsmemory "patrolfund/internal/events/store/memory"
	"patrolfund/internal/events/publisher"
	"patrolfund/internal/pool/models"
	poolStore "patrolfund/internal/pool/store"
	id "patrolfund/pkg/domain"
	dErrors "patrolfund/pkg/domain-errors"
	"patrolfund/pkg/requestcontext"
)

const (
	testFee      = 1_000
	testMaxPools = 3
)

var (
	creator   = id.Principal("wallet-creator-000000000001")
	donor     = id.Principal("wallet-donor-00000000000001")
	authority = id.Principal("wallet-authority-0000000001")
	stx       = id.Asset("stx-token")
)

type PoolServiceSuite struct {
	suite.Suite
	store   *poolStore.InMemoryPoolStore
	ledger  *ledger.InMemoryLedger
	clock   *chain.HeightClock
	events  *eventsmemory.InMemoryStore
	service *Service
}

func TestPoolServiceSuite(t *testing.T) {
	suite.Run(t, new(PoolServiceSuite))
}

func (s *PoolServiceSuite) SetupTest() {
	s.store = poolStore.New(testFee, testMaxPools)
	s.ledger = ledger.New()
	s.clock = chain.NewHeightClock(10)
	s.events = eventsmemory.NewInMemoryStore()

	var err error
	s.service, err = New(s.store, s.ledger, s.clock, sequencer.New(),
		WithEmitter(publisher.NewPublisher(s.events)),
	)
	s.Require().NoError(err)

	s.ledger.Mint(chain.NativeAsset, creator, 10*testFee)
	s.ledger.Mint(stx, donor, 1_000_000)
}

func (s *PoolServiceSuite) ctxAs(caller id.Principal) context.Context {
	return requestcontext.WithCaller(context.Background(), caller)
}

func (s *PoolServiceSuite) configureAuthority() {
	s.Require().NoError(s.service.SetAuthority(s.ctxAs(authority), authority))
}

func validParams(name string) CreatePoolParams {
	return CreatePoolParams{
		Name:        name,
		MinDonation: 10,
		MaxDonation: 10_000,
		Type:        models.PoolTypeCommunity,
		FeeRate:     5,
		GracePeriod: 14,
		Location:    "Harbor District",
		Currency:    models.CurrencySTX,
		Asset:       stx,
	}
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *PoolServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil, s.ledger, s.clock, sequencer.New())
		s.Error(err)
		s.Contains(err.Error(), "pool store is required")
	})

	s.Run("nil ledger returns error", func() {
		_, err := New(s.store, nil, s.clock, sequencer.New())
		s.Error(err)
		s.Contains(err.Error(), "token ledger is required")
	})
}

// =============================================================================
// CreatePool Tests
// =============================================================================

func (s *PoolServiceSuite) TestCreatePool() {
	s.Run("anonymous caller is rejected", func() {
		_, err := s.service.CreatePool(context.Background(), validParams("anon-pool"))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("fails before authority is configured", func() {
		_, err := s.service.CreatePool(s.ctxAs(creator), validParams("early-pool"))
		s.True(dErrors.HasCode(err, dErrors.CodeNotReady))

		count, countErr := s.service.PoolCount(context.Background())
		s.NoError(countErr)
		s.Zero(count)
	})

	s.Run("sequential ids start at zero and fee flows to authority", func() {
		s.configureAuthority()

		first, err := s.service.CreatePool(s.ctxAs(creator), validParams("harbor-watch"))
		s.NoError(err)
		s.Equal(id.PoolID(0), first)

		second, err := s.service.CreatePool(s.ctxAs(creator), validParams("night-patrol"))
		s.NoError(err)
		s.Equal(id.PoolID(1), second)

		balance, err := s.ledger.BalanceOf(context.Background(), chain.NativeAsset, authority)
		s.NoError(err)
		s.Equal(uint64(2*testFee), balance)

		pool, err := s.service.GetPool(context.Background(), first)
		s.NoError(err)
		s.Equal(creator, pool.Creator)
		s.True(pool.Active)
		s.Equal(uint64(10), pool.CreatedAt)
	})

	s.Run("duplicate name is rejected with no state change", func() {
		countBefore, _ := s.service.PoolCount(context.Background())

		_, err := s.service.CreatePool(s.ctxAs(creator), validParams("harbor-watch"))
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		countAfter, _ := s.service.PoolCount(context.Background())
		s.Equal(countBefore, countAfter)
	})

	s.Run("validation failures abort before any transfer", func() {
		balanceBefore, _ := s.ledger.BalanceOf(context.Background(), chain.NativeAsset, creator)

		cases := map[string]CreatePoolParams{
			"empty name": func() CreatePoolParams {
				p := validParams("")
				return p
			}(),
			"zero minimum": func() CreatePoolParams {
				p := validParams("zero-min")
				p.MinDonation = 0
				return p
			}(),
			"fee rate too high": func() CreatePoolParams {
				p := validParams("high-fee")
				p.FeeRate = models.MaxFeeRate + 1
				return p
			}(),
			"grace period too long": func() CreatePoolParams {
				p := validParams("long-grace")
				p.GracePeriod = models.MaxGracePeriod + 1
				return p
			}(),
			"invalid type": func() CreatePoolParams {
				p := validParams("bad-type")
				p.Type = models.PoolType("festival")
				return p
			}(),
			"invalid currency": func() CreatePoolParams {
				p := validParams("bad-currency")
				p.Currency = models.Currency("EUR")
				return p
			}(),
			"burn asset": func() CreatePoolParams {
				p := validParams("burn-asset")
				p.Asset = id.Asset(id.Burn)
				return p
			}(),
		}
		for name, params := range cases {
			_, err := s.service.CreatePool(s.ctxAs(creator), params)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), "case %q got %v", name, err)
		}

		balanceAfter, _ := s.ledger.BalanceOf(context.Background(), chain.NativeAsset, creator)
		s.Equal(balanceBefore, balanceAfter)
	})

	s.Run("insufficient fee balance aborts creation", func() {
		broke := id.Principal("wallet-broke-00000000000001")
		_, err := s.service.CreatePool(s.ctxAs(broke), validParams("unfunded-pool"))
		s.True(dErrors.HasCode(err, dErrors.CodeTransferFailed))

		_, lookupErr := s.store.IDByName(context.Background(), "unfunded-pool")
		s.Error(lookupErr)
	})

	s.Run("registry ceiling is enforced", func() {
		_, err := s.service.CreatePool(s.ctxAs(creator), validParams("third-pool"))
		s.NoError(err)

		_, err = s.service.CreatePool(s.ctxAs(creator), validParams("fourth-pool"))
		s.True(dErrors.HasCode(err, dErrors.CodeCapacity))
	})
}

// =============================================================================
// UpdatePool Tests
// =============================================================================

func (s *PoolServiceSuite) TestUpdatePool() {
	s.configureAuthority()
	poolID, err := s.service.CreatePool(s.ctxAs(creator), validParams("rename-me"))
	s.Require().NoError(err)

	s.Run("only the creator may update", func() {
		err := s.service.UpdatePool(s.ctxAs(donor), poolID, "stolen-name", 5, 500)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("rename moves the name index and records an audit entry", func() {
		s.clock.Advance(5)
		err := s.service.UpdatePool(s.ctxAs(creator), poolID, "renamed-pool", 20, 20_000)
		s.NoError(err)

		found, err := s.store.IDByName(context.Background(), "renamed-pool")
		s.NoError(err)
		s.Equal(poolID, found)

		_, err = s.store.IDByName(context.Background(), "rename-me")
		s.Error(err)

		updates, err := s.service.GetUpdates(context.Background(), poolID)
		s.NoError(err)
		s.Require().Len(updates, 1)
		s.Equal("rename-me", updates[0].OldName)
		s.Equal("renamed-pool", updates[0].NewName)
		s.Equal(uint64(15), updates[0].Height)
	})

	s.Run("rename onto an existing pool name is rejected", func() {
		_, err := s.service.CreatePool(s.ctxAs(creator), validParams("occupied-name"))
		s.Require().NoError(err)

		err = s.service.UpdatePool(s.ctxAs(creator), poolID, "occupied-name", 20, 20_000)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown pool returns not found", func() {
		err := s.service.UpdatePool(s.ctxAs(creator), id.PoolID(99), "ghost", 1, 10)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Donate Tests
// =============================================================================

func (s *PoolServiceSuite) TestDonate() {
	s.configureAuthority()
	poolID, err := s.service.CreatePool(s.ctxAs(creator), validParams("donation-pool"))
	s.Require().NoError(err)

	s.Run("donations accumulate per donor and in both totals", func() {
		first, err := s.service.Donate(s.ctxAs(donor), poolID, 100, stx)
		s.NoError(err)
		s.Equal(uint64(100), first.Amount)

		second, err := s.service.Donate(s.ctxAs(donor), poolID, 200, stx)
		s.NoError(err)
		s.Equal(uint64(300), second.Amount)

		pool, err := s.service.GetPool(context.Background(), poolID)
		s.NoError(err)
		s.Equal(uint64(300), pool.TotalDonations)

		grand, err := s.service.GrandTotal(context.Background())
		s.NoError(err)
		s.Equal(uint64(300), grand)

		custody, err := s.ledger.BalanceOf(context.Background(), stx, chain.Custody)
		s.NoError(err)
		s.Equal(uint64(300), custody)
	})

	s.Run("donation outside pool bounds is rejected", func() {
		_, err := s.service.Donate(s.ctxAs(donor), poolID, 5, stx)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = s.service.Donate(s.ctxAs(donor), poolID, 20_000, stx)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("asset mismatch is rejected", func() {
		_, err := s.service.Donate(s.ctxAs(donor), poolID, 100, id.Asset("other-token"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("balance shortfall leaves totals untouched", func() {
		poor := id.Principal("wallet-poor-000000000000001")
		grandBefore, _ := s.service.GrandTotal(context.Background())

		_, err := s.service.Donate(s.ctxAs(poor), poolID, 100, stx)
		s.True(dErrors.HasCode(err, dErrors.CodeTransferFailed))

		grandAfter, _ := s.service.GrandTotal(context.Background())
		s.Equal(grandBefore, grandAfter)
	})

	s.Run("unknown pool returns not found", func() {
		_, err := s.service.Donate(s.ctxAs(donor), id.PoolID(99), 100, stx)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Authority and Registry Settings Tests
// =============================================================================

func (s *PoolServiceSuite) TestAuthority() {
	s.Run("burn recipient is rejected", func() {
		err := s.service.SetAuthority(s.ctxAs(authority), id.Burn)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("first set wins permanently", func() {
		s.NoError(s.service.SetAuthority(s.ctxAs(authority), authority))

		err := s.service.SetAuthority(s.ctxAs(creator), creator)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		got, configured, err := s.store.Authority(context.Background())
		s.NoError(err)
		s.True(configured)
		s.Equal(authority, got)
	})
}

func (s *PoolServiceSuite) TestRegistrySettings() {
	s.Run("changes before authority exists are rejected", func() {
		err := s.service.SetCreationFee(s.ctxAs(creator), 50)
		s.True(dErrors.HasCode(err, dErrors.CodeNotReady))
	})

	s.Run("only the authority may change settings", func() {
		s.configureAuthority()

		err := s.service.SetCreationFee(s.ctxAs(creator), 50)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		s.NoError(s.service.SetCreationFee(s.ctxAs(authority), 50))
		fee, err := s.store.CreationFee(context.Background())
		s.NoError(err)
		s.Equal(uint64(50), fee)
	})

	s.Run("zero pool ceiling is rejected", func() {
		err := s.service.SetMaxPools(s.ctxAs(authority), 0)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
