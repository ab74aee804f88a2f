// Package service implements stake-weighted governance voting. Stake is
// captured into custody when the vote is cast and is not refunded when the
// voter's side loses; each accepted vote pushes the window end out by the
// configured voting period.
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
	proposalModel "patrolfund/internal/proposal/models"
	"patrolfund/internal/voting/models"
	id "patrolfund/pkg/domain"
	dErrors "patrolfund/pkg/domain-errors"
	"patrolfund/pkg/platform/sentinel"
	"patrolfund/pkg/requestcontext"
)

// Store is the tally table the service commits to.
type Store interface {
	AddVote(ctx context.Context, proposalID id.ProposalID, voteYes bool, stake, endHeight uint64) (models.Tally, error)
	MarkResolved(ctx context.Context, proposalID id.ProposalID, outcome models.Outcome) error
	Get(ctx context.Context, proposalID id.ProposalID) (models.Tally, error)
	HasTally(ctx context.Context, proposalID id.ProposalID) (bool, error)
}

// ProposalResolver is the slice of the proposal service governance needs:
// existence checks and the post-vote status write. Resolve is called while
// the sequencer is held.
type ProposalResolver interface {
	Get(ctx context.Context, proposalID id.ProposalID) (proposalModel.Proposal, error)
	Resolve(ctx context.Context, proposalID id.ProposalID, next proposalModel.Status) error
}

type Service struct {
	store     Store
	proposals ProposalResolver
	ledger    chain.TokenLedger
	clock     chain.Clock
	seq       *sequencer.Sequencer
	period    uint64
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

func New(store Store, proposals ProposalResolver, ledger chain.TokenLedger, clock chain.Clock, seq *sequencer.Sequencer, votingPeriod uint64, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("tally store is required")
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
	if votingPeriod == 0 {
		return nil, fmt.Errorf("voting period must be positive")
	}
	svc := &Service{
		store:     store,
		proposals: proposals,
		ledger:    ledger,
		clock:     clock,
		seq:       seq,
		period:    votingPeriod,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Vote stakes value on one side of a proposal's tally. The stake transfer
// into custody precedes the tally commit; a declined transfer leaves the
// tally untouched. Votes after the window has closed are rejected so the
// resolution, once computable, stays stable.
func (s *Service) Vote(ctx context.Context, proposalID id.ProposalID, voteYes bool, stake uint64, asset id.Asset) (models.Tally, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return models.Tally{}, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if stake == 0 {
		return models.Tally{}, dErrors.New(dErrors.CodeValidation, "stake must be positive")
	}
	if asset.IsZero() {
		return models.Tally{}, dErrors.New(dErrors.CodeValidation, "stake asset is required")
	}

	var tally models.Tally
	err := s.seq.Do(ctx, func(ctx context.Context) error {
		if _, err := s.proposals.Get(ctx, proposalID); err != nil {
			return err
		}
		existing, err := s.store.Get(ctx, proposalID)
		switch {
		case err == nil:
			if existing.Resolved {
				return dErrors.New(dErrors.CodeConflict, "vote already resolved")
			}
			if s.clock.Height() >= existing.EndHeight {
				return dErrors.New(dErrors.CodeConflict, "voting window has closed")
			}
		case errors.Is(err, sentinel.ErrNotFound):
			// First vote creates the tally.
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tally")
		}

		if err := s.ledger.Transfer(ctx, asset, caller, chain.Custody, stake); err != nil {
			return dErrors.Wrap(err, dErrors.CodeTransferFailed, "stake transfer declined")
		}

		height := s.clock.Height()
		tally, err = s.store.AddVote(ctx, proposalID, voteYes, stake, height+s.period)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeConflict, "failed to record vote")
		}

		s.emit(ctx, events.Event{
			Type:       events.TypeVoteCast,
			Height:     height,
			Actor:      caller,
			ProposalID: &proposalID,
			Amount:     stake,
			Detail:     voteDetail(voteYes),
		})
		if s.metrics != nil {
			s.metrics.VotesCast.Inc()
			s.metrics.StakeCaptured.Add(float64(stake))
		}
		s.logger.InfoContext(ctx, "vote cast",
			"proposal_id", proposalID,
			"voter", caller,
			"stake", stake,
			"yes", voteYes,
			"end_height", tally.EndHeight,
		)
		return nil
	})
	if err != nil {
		return models.Tally{}, err
	}
	return tally, nil
}

// Result resolves the tally once the window has closed. The first successful
// resolution freezes the tally and writes the outcome through to the
// proposal; later calls return the same outcome.
func (s *Service) Result(ctx context.Context, proposalID id.ProposalID) (models.Tally, error) {
	var tally models.Tally
	err := s.seq.Do(ctx, func(ctx context.Context) error {
		var err error
		tally, err = s.store.Get(ctx, proposalID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "no votes cast for proposal")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tally")
		}
		if tally.Resolved {
			return nil
		}
		height := s.clock.Height()
		if height < tally.EndHeight {
			return dErrors.New(dErrors.CodeNotReady, "voting window is still open")
		}

		outcome := tally.Decide()
		next := proposalModel.StatusRejected
		if outcome == models.OutcomeApproved {
			next = proposalModel.StatusApproved
		}
		if err := s.proposals.Resolve(ctx, proposalID, next); err != nil {
			return err
		}
		if err := s.store.MarkResolved(ctx, proposalID, outcome); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to freeze tally")
		}
		tally.Resolved = true
		tally.Outcome = outcome

		s.emit(ctx, events.Event{
			Type:       events.TypeVoteResolved,
			Height:     height,
			ProposalID: &proposalID,
			Detail:     string(outcome),
		})
		s.logger.InfoContext(ctx, "vote resolved",
			"proposal_id", proposalID,
			"outcome", outcome,
			"yes_stake", tally.YesStake,
			"no_stake", tally.NoStake,
		)
		return nil
	})
	if err != nil {
		return models.Tally{}, err
	}
	return tally, nil
}

// Tally is a pure lookup of the current tally.
func (s *Service) Tally(ctx context.Context, proposalID id.ProposalID) (models.Tally, error) {
	tally, err := s.store.Get(ctx, proposalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Tally{}, dErrors.New(dErrors.CodeNotFound, "no votes cast for proposal")
		}
		return models.Tally{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tally")
	}
	return tally, nil
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

func voteDetail(voteYes bool) string {
	if voteYes {
		return "yes"
	}
	return "no"
}
