// Package service implements the proposal lifecycle. Status mutation rights
// start with the proposer and transfer to the governance subsystem at the
// first cast vote; after that the proposer can no longer self-transition.
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
	"patrolfund/internal/proposal/models"
	id "patrolfund/pkg/domain"
	dErrors "patrolfund/pkg/domain-errors"
	"patrolfund/pkg/platform/sentinel"
	"patrolfund/pkg/requestcontext"
)

// Store is the proposal table the service commits to.
type Store interface {
	Create(ctx context.Context, proposal *models.Proposal) (id.ProposalID, error)
	SetStatus(ctx context.Context, proposalID id.ProposalID, next models.Status) error
	Get(ctx context.Context, proposalID id.ProposalID) (models.Proposal, error)
	Count(ctx context.Context) (uint64, error)
}

// VoteChecker reports whether governance voting has begun on a proposal. The
// voting store implements it; its presence marks the authority handoff point.
type VoteChecker interface {
	HasTally(ctx context.Context, proposalID id.ProposalID) (bool, error)
}

type Service struct {
	store   Store
	clock   chain.Clock
	seq     *sequencer.Sequencer
	votes   VoteChecker
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

// WithVoteChecker wires the governance handoff guard. Without it, proposer
// updates are only constrained by the transition set.
func WithVoteChecker(votes VoteChecker) Option {
	return func(s *Service) { s.votes = votes }
}

func New(store Store, clock chain.Clock, seq *sequencer.Sequencer, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("proposal store is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("height clock is required")
	}
	if seq == nil {
		return nil, fmt.Errorf("sequencer is required")
	}
	svc := &Service{
		store:  store,
		clock:  clock,
		seq:    seq,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Create registers a patrol-task proposal owned by the caller.
func (s *Service) Create(ctx context.Context, description string, duration, requiredFunds uint64) (id.ProposalID, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if description == "" {
		return 0, dErrors.New(dErrors.CodeValidation, "description cannot be empty")
	}
	if len(description) > models.MaxDescriptionLen {
		return 0, dErrors.New(dErrors.CodeValidation, "description exceeds maximum length")
	}
	if duration == 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "duration must be positive")
	}
	if requiredFunds == 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "required funds must be positive")
	}

	var proposalID id.ProposalID
	err := s.seq.Do(ctx, func(ctx context.Context) error {
		height := s.clock.Height()
		proposal := &models.Proposal{
			Proposer:      caller,
			Description:   description,
			Duration:      duration,
			RequiredFunds: requiredFunds,
			Status:        models.StatusPending,
			CreatedAt:     height,
		}
		var err error
		proposalID, err = s.store.Create(ctx, proposal)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store proposal")
		}

		s.emit(ctx, events.Event{
			Type:       events.TypeProposalCreated,
			Height:     height,
			Actor:      caller,
			ProposalID: &proposalID,
			Amount:     requiredFunds,
		})
		if s.metrics != nil {
			s.metrics.ProposalsCreated.Inc()
		}
		s.logger.InfoContext(ctx, "proposal created",
			"proposal_id", proposalID,
			"proposer", caller,
			"required_funds", requiredFunds,
		)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return proposalID, nil
}

// UpdateStatus lets the proposer move their proposal while it is still
// proposer-owned: status pending and no vote cast yet. Once a tally exists
// the governance subsystem owns the status.
func (s *Service) UpdateStatus(ctx context.Context, proposalID id.ProposalID, next models.Status) error {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}

	return s.seq.Do(ctx, func(ctx context.Context) error {
		proposal, err := s.store.Get(ctx, proposalID)
		if err != nil {
			return s.translate(err, "failed to load proposal")
		}
		if proposal.Proposer != caller {
			return dErrors.New(dErrors.CodeForbidden, "only the proposer may update the proposal")
		}
		if s.votes != nil {
			started, err := s.votes.HasTally(ctx, proposalID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check voting state")
			}
			if started {
				return dErrors.New(dErrors.CodeForbidden, "status is owned by governance once voting begins")
			}
		}
		if err := s.store.SetStatus(ctx, proposalID, next); err != nil {
			return s.translate(err, "illegal status transition")
		}

		s.emit(ctx, events.Event{
			Type:       events.TypeProposalStatusSet,
			Height:     s.clock.Height(),
			Actor:      caller,
			ProposalID: &proposalID,
			Detail:     string(next),
		})
		return nil
	})
}

// Resolve applies a governance or escrow-driven transition. Internal entry
// point for the voting and escrow services; it bypasses the proposer check
// but never the transition set. Callers already hold the sequencer.
func (s *Service) Resolve(ctx context.Context, proposalID id.ProposalID, next models.Status) error {
	if err := s.store.SetStatus(ctx, proposalID, next); err != nil {
		return s.translate(err, "illegal status transition")
	}
	s.emit(ctx, events.Event{
		Type:       events.TypeProposalStatusSet,
		Height:     s.clock.Height(),
		ProposalID: &proposalID,
		Detail:     string(next),
	})
	return nil
}

// Get is a pure lookup.
func (s *Service) Get(ctx context.Context, proposalID id.ProposalID) (models.Proposal, error) {
	proposal, err := s.store.Get(ctx, proposalID)
	if err != nil {
		return models.Proposal{}, s.translate(err, "failed to load proposal")
	}
	return proposal, nil
}

// Count returns the number of proposals ever created.
func (s *Service) Count(ctx context.Context) (uint64, error) {
	return s.store.Count(ctx)
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

func (s *Service) translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, msg)
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeConflict, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
