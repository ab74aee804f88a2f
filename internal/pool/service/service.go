// Package service implements the pool registry and its donation path:
// creation behind an ordered precondition chain, creator-only updates,
// cumulative donation accounting, and the one-way authority bootstrap.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"patrolfund/internal/chain"
	"patrolfund/internal/chain/sequencer"
	"patrolfund/internal/events"
	"patrolfund/internal/platform/metrics"
	"patrolfund/internal/pool/models"
	id "patrolfund/pkg/domain"
	dErrors "patrolfund/pkg/domain-errors"
	"patrolfund/pkg/platform/sentinel"
	"patrolfund/pkg/requestcontext"
)

// Store is the registry state the service commits to.
type Store interface {
	CreateIfNameAvailable(ctx context.Context, pool *models.Pool) (id.PoolID, error)
	Update(ctx context.Context, poolID id.PoolID, entry models.PoolUpdate) error
	RecordDonation(ctx context.Context, poolID id.PoolID, donor id.Principal, amount, height uint64) (models.Donation, error)
	Get(ctx context.Context, poolID id.PoolID) (models.Pool, error)
	IDByName(ctx context.Context, name string) (id.PoolID, error)
	Donation(ctx context.Context, poolID id.PoolID, donor id.Principal) (models.Donation, error)
	Updates(ctx context.Context, poolID id.PoolID) ([]models.PoolUpdate, error)
	Count(ctx context.Context) (uint64, error)
	GrandTotal(ctx context.Context) (uint64, error)

	Authority(ctx context.Context) (id.Principal, bool, error)
	SetAuthorityOnce(ctx context.Context, recipient id.Principal) error
	CreationFee(ctx context.Context) (uint64, error)
	SetCreationFee(ctx context.Context, fee uint64) error
	MaxPools(ctx context.Context) (uint64, error)
	SetMaxPools(ctx context.Context, maxPools uint64) error
}

type Service struct {
	store   Store
	ledger  chain.TokenLedger
	clock   chain.Clock
	seq     *sequencer.Sequencer
	emitter events.Emitter
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithEmitter(emitter events.Emitter) Option {
	return func(s *Service) { s.emitter = emitter }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, ledger chain.TokenLedger, clock chain.Clock, seq *sequencer.Sequencer, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("pool store is required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("token ledger is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("height clock is required")
	}
	if seq == nil {
		return nil, fmt.Errorf("sequencer is required")
	}
	svc := &Service{
		store:  store,
		ledger: ledger,
		clock:  clock,
		seq:    seq,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreatePoolParams carries the validated-at-the-boundary creation input.
type CreatePoolParams struct {
	Name        string
	MinDonation uint64
	MaxDonation uint64
	Type        models.PoolType
	FeeRate     uint64
	GracePeriod uint64
	Location    string
	Currency    models.Currency
	Asset       id.Asset
}

// CreatePool registers a new funding pool. Preconditions are checked in
// order and the first failure aborts the whole call with no state change;
// the creation fee transfer to the configured authority happens before the
// pool is committed, so a declined fee aborts creation too.
func (s *Service) CreatePool(ctx context.Context, params CreatePoolParams) (id.PoolID, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}

	var poolID id.PoolID
	err := s.seq.Do(ctx, func(ctx context.Context) error {
		count, err := s.store.Count(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count pools")
		}
		maxPools, err := s.store.MaxPools(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read pool ceiling")
		}
		if count >= maxPools {
			return dErrors.New(dErrors.CodeCapacity, "maximum pool count reached")
		}
		if err := models.ValidateName(params.Name); err != nil {
			return err
		}
		if err := models.ValidateBounds(params.MinDonation, params.MaxDonation); err != nil {
			return err
		}
		if !params.Type.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "invalid pool type")
		}
		if params.FeeRate > models.MaxFeeRate {
			return dErrors.New(dErrors.CodeValidation, "fee rate exceeds maximum")
		}
		if params.GracePeriod > models.MaxGracePeriod {
			return dErrors.New(dErrors.CodeValidation, "grace period exceeds maximum")
		}
		if params.Location == "" || len(params.Location) > models.MaxLocationLen {
			return dErrors.New(dErrors.CodeValidation, "location must be non-empty and within length bounds")
		}
		if !params.Currency.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "invalid currency")
		}
		if params.Asset.IsZero() || id.Principal(params.Asset).IsBurn() {
			return dErrors.New(dErrors.CodeValidation, "pool asset cannot be the burn identity")
		}
		if _, err := s.store.IDByName(ctx, params.Name); err == nil {
			return dErrors.New(dErrors.CodeConflict, "pool name already registered")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check pool name")
		}

		authority, configured, err := s.store.Authority(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read authority")
		}
		if !configured {
			return dErrors.New(dErrors.CodeNotReady, "authority recipient not configured")
		}

		fee, err := s.store.CreationFee(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read creation fee")
		}
		if fee > 0 {
			if err := s.ledger.Transfer(ctx, chain.NativeAsset, caller, authority, fee); err != nil {
				return dErrors.Wrap(err, dErrors.CodeTransferFailed, "creation fee transfer declined")
			}
		}

		height := s.clock.Height()
		pool := &models.Pool{
			Name:        params.Name,
			MinDonation: params.MinDonation,
			MaxDonation: params.MaxDonation,
			Creator:     caller,
			Type:        params.Type,
			FeeRate:     params.FeeRate,
			GracePeriod: params.GracePeriod,
			Location:    params.Location,
			Currency:    params.Currency,
			Asset:       params.Asset,
			Active:      true,
			CreatedAt:   height,
		}
		poolID, err = s.store.CreateIfNameAvailable(ctx, pool)
		if err != nil {
			return s.translate(err, "failed to store pool")
		}

		s.emit(ctx, events.Event{
			Type:   events.TypePoolCreated,
			Height: height,
			Actor:  caller,
			PoolID: &poolID,
			Amount: fee,
			Detail: params.Name,
		})
		if s.metrics != nil {
			s.metrics.PoolsCreated.Inc()
		}
		s.logger.InfoContext(ctx, "pool created",
			"pool_id", poolID,
			"name", params.Name,
			"creator", caller,
			"height", height,
		)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return poolID, nil
}

// UpdatePool renames or re-bounds a pool. Only the original creator may
// call; the name index follows the rename and an audit entry records who
// changed what and when.
func (s *Service) UpdatePool(ctx context.Context, poolID id.PoolID, newName string, newMin, newMax uint64) error {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}

	return s.seq.Do(ctx, func(ctx context.Context) error {
		pool, err := s.store.Get(ctx, poolID)
		if err != nil {
			return s.translate(err, "failed to load pool")
		}
		if pool.Creator != caller {
			return dErrors.New(dErrors.CodeForbidden, "only the pool creator may update the pool")
		}
		if err := models.ValidateName(newName); err != nil {
			return err
		}
		if err := models.ValidateBounds(newMin, newMax); err != nil {
			return err
		}

		height := s.clock.Height()
		entry := models.PoolUpdate{
			PoolID:    poolID,
			UpdatedBy: caller,
			OldName:   pool.Name,
			NewName:   newName,
			NewMin:    newMin,
			NewMax:    newMax,
			Height:    height,
		}
		if err := s.store.Update(ctx, poolID, entry); err != nil {
			return s.translate(err, "failed to update pool")
		}

		s.emit(ctx, events.Event{
			Type:   events.TypePoolUpdated,
			Height: height,
			Actor:  caller,
			PoolID: &poolID,
			Detail: newName,
		})
		if s.metrics != nil {
			s.metrics.PoolUpdates.Inc()
		}
		return nil
	})
}

// Donate accepts a contribution into a pool. The external transfer into
// custody is attempted before any bookkeeping is committed, so a declined
// transfer leaves every table untouched.
func (s *Service) Donate(ctx context.Context, poolID id.PoolID, amount uint64, asset id.Asset) (models.Donation, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return models.Donation{}, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}

	var record models.Donation
	err := s.seq.Do(ctx, func(ctx context.Context) error {
		pool, err := s.store.Get(ctx, poolID)
		if err != nil {
			return s.translate(err, "failed to load pool")
		}
		if !pool.Active {
			return dErrors.New(dErrors.CodeConflict, "pool is not active")
		}
		if asset != pool.Asset {
			return dErrors.New(dErrors.CodeValidation, "asset does not match the pool asset")
		}
		if amount < pool.MinDonation {
			return dErrors.New(dErrors.CodeValidation, "donation below pool minimum")
		}
		if amount > pool.MaxDonation {
			return dErrors.New(dErrors.CodeValidation, "donation above pool maximum")
		}

		balance, err := s.ledger.BalanceOf(ctx, asset, caller)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeTransferFailed, "balance query declined")
		}
		if balance < amount {
			return dErrors.New(dErrors.CodeTransferFailed, "caller balance does not cover donation")
		}
		if err := s.ledger.Transfer(ctx, asset, caller, chain.Custody, amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeTransferFailed, "donation transfer declined")
		}

		height := s.clock.Height()
		record, err = s.store.RecordDonation(ctx, poolID, caller, amount, height)
		if err != nil {
			return s.translate(err, "failed to record donation")
		}

		s.emit(ctx, events.Event{
			Type:   events.TypeDonationReceived,
			Height: height,
			Actor:  caller,
			PoolID: &poolID,
			Amount: amount,
		})
		if s.metrics != nil {
			s.metrics.Donations.Inc()
			s.metrics.DonatedAmount.Add(float64(amount))
		}
		s.logger.InfoContext(ctx, "donation recorded",
			"pool_id", poolID,
			"donor", caller,
			"amount", amount,
			"cumulative", record.Amount,
		)
		return nil
	})
	if err != nil {
		return models.Donation{}, err
	}
	return record, nil
}

// SetAuthority configures the creation-fee recipient. The first successful
// call wins permanently; any later call fails with Conflict regardless of
// caller.
func (s *Service) SetAuthority(ctx context.Context, recipient id.Principal) error {
	if recipient.IsZero() || recipient.IsBurn() {
		return dErrors.New(dErrors.CodeValidation, "authority recipient cannot be the burn identity")
	}
	return s.seq.Do(ctx, func(ctx context.Context) error {
		if err := s.store.SetAuthorityOnce(ctx, recipient); err != nil {
			return s.translate(err, "failed to set authority")
		}
		s.emit(ctx, events.Event{
			Type:   events.TypeAuthorityConfigured,
			Height: s.clock.Height(),
			Actor:  requestcontext.Caller(ctx),
			Detail: recipient.String(),
		})
		return nil
	})
}

// SetCreationFee replaces the pool creation fee. Only the configured
// authority may call, and only once an authority exists.
func (s *Service) SetCreationFee(ctx context.Context, fee uint64) error {
	return s.adminChange(ctx, "creation_fee", func(ctx context.Context) error {
		return s.store.SetCreationFee(ctx, fee)
	})
}

// SetMaxPools replaces the registry ceiling under the same authority rule as
// SetCreationFee.
func (s *Service) SetMaxPools(ctx context.Context, maxPools uint64) error {
	if maxPools == 0 {
		return dErrors.New(dErrors.CodeValidation, "pool ceiling must be positive")
	}
	return s.adminChange(ctx, "max_pools", func(ctx context.Context) error {
		return s.store.SetMaxPools(ctx, maxPools)
	})
}

func (s *Service) adminChange(ctx context.Context, detail string, apply func(ctx context.Context) error) error {
	caller := requestcontext.Caller(ctx)
	return s.seq.Do(ctx, func(ctx context.Context) error {
		authority, configured, err := s.store.Authority(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read authority")
		}
		if !configured {
			return dErrors.New(dErrors.CodeNotReady, "authority recipient not configured")
		}
		if caller != authority {
			return dErrors.New(dErrors.CodeForbidden, "only the configured authority may change registry settings")
		}
		if err := apply(ctx); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to apply registry setting")
		}
		s.emit(ctx, events.Event{
			Type:   events.TypeRegistryConfigChange,
			Height: s.clock.Height(),
			Actor:  caller,
			Detail: detail,
		})
		return nil
	})
}

// GetPool is a pure lookup.
func (s *Service) GetPool(ctx context.Context, poolID id.PoolID) (models.Pool, error) {
	pool, err := s.store.Get(ctx, poolID)
	if err != nil {
		return models.Pool{}, s.translate(err, "failed to load pool")
	}
	return pool, nil
}

// PoolIDByName resolves a pool name to its id, following renames.
func (s *Service) PoolIDByName(ctx context.Context, name string) (id.PoolID, error) {
	poolID, err := s.store.IDByName(ctx, name)
	if err != nil {
		return 0, s.translate(err, "failed to resolve pool name")
	}
	return poolID, nil
}

// GetDonation returns the cumulative donation of one donor to one pool.
func (s *Service) GetDonation(ctx context.Context, poolID id.PoolID, donor id.Principal) (models.Donation, error) {
	record, err := s.store.Donation(ctx, poolID, donor)
	if err != nil {
		return models.Donation{}, s.translate(err, "failed to load donation")
	}
	return record, nil
}

// GetUpdates returns a pool's audit history.
func (s *Service) GetUpdates(ctx context.Context, poolID id.PoolID) ([]models.PoolUpdate, error) {
	return s.store.Updates(ctx, poolID)
}

// PoolCount returns the number of registered pools.
func (s *Service) PoolCount(ctx context.Context) (uint64, error) {
	return s.store.Count(ctx)
}

// GrandTotal returns donations accumulated across all pools.
func (s *Service) GrandTotal(ctx context.Context) (uint64, error) {
	return s.store.GrandTotal(ctx)
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.emitter == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.emitter.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit event",
			"event_type", string(event.Type),
			"error", err,
		)
	}
}

// translate maps store sentinels onto the domain error taxonomy.
func (s *Service) translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, msg)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, msg)
	case errors.Is(err, sentinel.ErrCapacity):
		return dErrors.Wrap(err, dErrors.CodeCapacity, msg)
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeConflict, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
