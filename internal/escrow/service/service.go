// Package service implements escrowed fund custody: lock approved funds for
// a beneficiary, release them exactly once after the verification quorum is
// reached. Release authorization is checked before the payout transfer is
// attempted, never after.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"patrolfund/internal/chain"
	"patrolfund/internal/chain/sequencer"
	escrowModel "patrolfund/internal/escrow/models"
	"patrolfund/internal/events"
	"patrolfund/internal/platform/metrics"
	proposalModel "patrolfund/internal/proposal/models"
	id "patrolfund/pkg/domain"
	dErrors "patrolfund/pkg/domain-errors"
	"patrolfund/pkg/platform/sentinel"
	"patrolfund/pkg/requestcontext"
)

// Store is the escrow table the service commits to.
type Store interface {
	Create(ctx context.Context, escrow *escrowModel.Escrow) error
	MarkReleased(ctx context.Context, proposalID id.ProposalID, height uint64) error
	Get(ctx context.Context, proposalID id.ProposalID) (escrowModel.Escrow, error)
}

// Verifier gates release on the attestation quorum.
type Verifier interface {
	IsVerified(ctx context.Context, proposalID id.ProposalID) (bool, error)
}

// ProposalResolver marks an approved proposal completed on release. Resolve
// is called while the sequencer is held.
type ProposalResolver interface {
	Get(ctx context.Context, proposalID id.ProposalID) (proposalModel.Proposal, error)
	Resolve(ctx context.Context, proposalID id.ProposalID, next proposalModel.Status) error
}

type Service struct {
	store     Store
	verifier  Verifier
	proposals ProposalResolver
	ledger    chain.TokenLedger
	clock     chain.Clock
	seq       *sequencer.Sequencer
	emitter   events.Emitter
	metrics   *metrics.Metrics
	logger    *slog.Logger
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

func New(store Store, verifier Verifier, proposals ProposalResolver, ledger chain.TokenLedger, clock chain.Clock, seq *sequencer.Sequencer, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("escrow store is required")
	}
	if verifier == nil {
		return nil, fmt.Errorf("verifier is required")
	}
	if proposals == nil {
		return nil, fmt.Errorf("proposal resolver is required")
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
		store:     store,
		verifier:  verifier,
		proposals: proposals,
		ledger:    ledger,
		clock:     clock,
		seq:       seq,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Lock pulls funds from the caller into custody for a beneficiary. One lock
// per proposal: a second lock fails with Conflict instead of silently
// overwriting an unreleased escrow.
func (s *Service) Lock(ctx context.Context, proposalID id.ProposalID, amount uint64, beneficiary id.Principal, asset id.Asset) (escrowModel.Escrow, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return escrowModel.Escrow{}, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if amount == 0 {
		return escrowModel.Escrow{}, dErrors.New(dErrors.CodeValidation, "escrow amount must be positive")
	}
	if beneficiary.IsZero() || beneficiary.IsBurn() {
		return escrowModel.Escrow{}, dErrors.New(dErrors.CodeValidation, "beneficiary cannot be the burn identity")
	}
	if asset.IsZero() {
		return escrowModel.Escrow{}, dErrors.New(dErrors.CodeValidation, "escrow asset is required")
	}

	var escrow escrowModel.Escrow
	err := s.seq.Do(ctx, func(ctx context.Context) error {
		if _, err := s.proposals.Get(ctx, proposalID); err != nil {
			return err
		}
		if _, err := s.store.Get(ctx, proposalID); err == nil {
			return dErrors.New(dErrors.CodeConflict, "escrow already exists for proposal")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check escrow")
		}

		if err := s.ledger.Transfer(ctx, asset, caller, chain.Custody, amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeTransferFailed, "escrow lock transfer declined")
		}

		height := s.clock.Height()
		escrow = escrowModel.Escrow{
			ProposalID:  proposalID,
			Amount:      amount,
			Beneficiary: beneficiary,
			Asset:       asset,
			LockedAt:    height,
		}
		if err := s.store.Create(ctx, &escrow); err != nil {
			return dErrors.Wrap(err, dErrors.CodeConflict, "failed to store escrow")
		}

		s.emit(ctx, events.Event{
			Type:       events.TypeFundsLocked,
			Height:     height,
			Actor:      caller,
			ProposalID: &proposalID,
			Amount:     amount,
			Detail:     beneficiary.String(),
		})
		if s.metrics != nil {
			s.metrics.EscrowsLocked.Inc()
		}
		s.logger.InfoContext(ctx, "funds locked",
			"proposal_id", proposalID,
			"amount", amount,
			"beneficiary", beneficiary,
		)
		return nil
	})
	if err != nil {
		return escrowModel.Escrow{}, err
	}
	return escrow, nil
}

// Release pays the escrowed amount to the beneficiary exactly once. The
// verification quorum must already be reached; a second release fails with
// Conflict and transfers nothing.
func (s *Service) Release(ctx context.Context, proposalID id.ProposalID, asset id.Asset) (escrowModel.Escrow, error) {
	var escrow escrowModel.Escrow
	err := s.seq.Do(ctx, func(ctx context.Context) error {
		var err error
		escrow, err = s.store.Get(ctx, proposalID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "no escrow for proposal")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load escrow")
		}
		if escrow.Released {
			return dErrors.New(dErrors.CodeConflict, "escrow already released")
		}
		if asset != escrow.Asset {
			return dErrors.New(dErrors.CodeValidation, "asset does not match the escrowed asset")
		}

		verified, err := s.verifier.IsVerified(ctx, proposalID)
		if err != nil {
			return err
		}
		if !verified {
			return dErrors.New(dErrors.CodeNotReady, "verification quorum not reached")
		}

		if err := s.ledger.Transfer(ctx, escrow.Asset, chain.Custody, escrow.Beneficiary, escrow.Amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeTransferFailed, "release transfer declined")
		}

		height := s.clock.Height()
		if err := s.store.MarkReleased(ctx, proposalID, height); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to flip released flag")
		}
		escrow.Released = true
		escrow.ReleasedAt = height

		// The proposal completes when it was approved through governance.
		// An escrow locked outside the vote flow still pays out, so a
		// non-approved status is logged, not fatal.
		if err := s.proposals.Resolve(ctx, proposalID, proposalModel.StatusCompleted); err != nil {
			s.logger.WarnContext(ctx, "release done but proposal not completed",
				"proposal_id", proposalID,
				"error", err,
			)
		}

		s.emit(ctx, events.Event{
			Type:       events.TypeFundsReleased,
			Height:     height,
			Actor:      requestcontext.Caller(ctx),
			ProposalID: &proposalID,
			Amount:     escrow.Amount,
			Detail:     escrow.Beneficiary.String(),
		})
		if s.metrics != nil {
			s.metrics.EscrowsReleased.Inc()
		}
		s.logger.InfoContext(ctx, "funds released",
			"proposal_id", proposalID,
			"amount", escrow.Amount,
			"beneficiary", escrow.Beneficiary,
		)
		return nil
	})
	if err != nil {
		return escrowModel.Escrow{}, err
	}
	return escrow, nil
}

// Get is a pure lookup.
func (s *Service) Get(ctx context.Context, proposalID id.ProposalID) (escrowModel.Escrow, error) {
	escrow, err := s.store.Get(ctx, proposalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return escrowModel.Escrow{}, dErrors.New(dErrors.CodeNotFound, "no escrow for proposal")
		}
		return escrowModel.Escrow{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load escrow")
	}
	return escrow, nil
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
