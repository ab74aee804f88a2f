// Package service implements threshold attestation: distinct signers vouch
// that a patrol task happened, and the record flips verified at the
// configured threshold. The threshold is process-wide configuration, not
// per-proposal.
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
	"patrolfund/internal/verification/models"
	id "patrolfund/pkg/domain"
	dErrors "patrolfund/pkg/domain-errors"
	"patrolfund/pkg/platform/sentinel"
	"patrolfund/pkg/requestcontext"
)

// Store is the attestation table the service commits to.
type Store interface {
	AddSigner(ctx context.Context, proposalID id.ProposalID, signer id.Principal, threshold, maxSigners int) (models.Record, error)
	Get(ctx context.Context, proposalID id.ProposalID) (models.Record, error)
}

// ProposalReader checks proposal existence before accepting a signature.
type ProposalReader interface {
	Get(ctx context.Context, proposalID id.ProposalID) (proposalModel.Proposal, error)
}

type Service struct {
	store      Store
	proposals  ProposalReader
	clock      chain.Clock
	seq        *sequencer.Sequencer
	threshold  int
	maxSigners int
	emitter    events.Emitter
	metrics    *metrics.Metrics
	logger     *slog.Logger
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

func New(store Store, proposals ProposalReader, clock chain.Clock, seq *sequencer.Sequencer, threshold, maxSigners int, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if proposals == nil {
		return nil, fmt.Errorf("proposal reader is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("height clock is required")
	}
	if seq == nil {
		return nil, fmt.Errorf("sequencer is required")
	}
	if threshold <= 0 || maxSigners < threshold {
		return nil, fmt.Errorf("invalid verification threshold %d of %d", threshold, maxSigners)
	}
	svc := &Service{
		store:      store,
		proposals:  proposals,
		clock:      clock,
		seq:        seq,
		threshold:  threshold,
		maxSigners: maxSigners,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Sign records the caller's attestation. A repeat signature never inflates
// the distinct count; it fails with Conflict and changes nothing.
func (s *Service) Sign(ctx context.Context, proposalID id.ProposalID) (models.Record, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return models.Record{}, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}

	var record models.Record
	err := s.seq.Do(ctx, func(ctx context.Context) error {
		if _, err := s.proposals.Get(ctx, proposalID); err != nil {
			return err
		}

		before, err := s.store.Get(ctx, proposalID)
		alreadyVerified := err == nil && before.Verified

		record, err = s.store.AddSigner(ctx, proposalID, caller, s.threshold, s.maxSigners)
		if err != nil {
			switch {
			case errors.Is(err, sentinel.ErrConflict):
				return dErrors.Wrap(err, dErrors.CodeConflict, "signer already recorded")
			case errors.Is(err, sentinel.ErrCapacity):
				return dErrors.Wrap(err, dErrors.CodeCapacity, "signer set is full")
			default:
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record signature")
			}
		}

		height := s.clock.Height()
		s.emit(ctx, events.Event{
			Type:       events.TypeVerificationSigned,
			Height:     height,
			Actor:      caller,
			ProposalID: &proposalID,
			Detail:     fmt.Sprintf("%d/%d", len(record.Signers), s.threshold),
		})
		if record.Verified && !alreadyVerified {
			s.emit(ctx, events.Event{
				Type:       events.TypeVerificationReached,
				Height:     height,
				ProposalID: &proposalID,
			})
			s.logger.InfoContext(ctx, "verification threshold reached",
				"proposal_id", proposalID,
				"signers", len(record.Signers),
			)
		}
		if s.metrics != nil {
			s.metrics.Attestations.Inc()
		}
		return nil
	})
	if err != nil {
		return models.Record{}, err
	}
	return record, nil
}

// IsVerified is a pure read. A proposal nobody signed is simply unverified,
// not an error.
func (s *Service) IsVerified(ctx context.Context, proposalID id.ProposalID) (bool, error) {
	record, err := s.store.Get(ctx, proposalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification record")
	}
	return record.Verified, nil
}

// Record returns the attestation record for inspection.
func (s *Service) Record(ctx context.Context, proposalID id.ProposalID) (models.Record, error) {
	record, err := s.store.Get(ctx, proposalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Record{}, dErrors.New(dErrors.CodeNotFound, "no verification record for proposal")
		}
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification record")
	}
	return record, nil
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
