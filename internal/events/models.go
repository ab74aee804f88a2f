// Package events defines the append-only chain event model. Events are
// emitted by core operations after a successful commit and consumed by
// external indexers; the core never reads them back.
package events

import (
	"context"

	id "patrolfund/pkg/domain"
)

// Type names an event kind.
type Type string

const (
	TypePoolCreated          Type = "pool_created"
	TypePoolUpdated          Type = "pool_updated"
	TypeDonationReceived     Type = "donation_received"
	TypeProposalCreated      Type = "proposal_created"
	TypeProposalStatusSet    Type = "proposal_status_set"
	TypeVoteCast             Type = "vote_cast"
	TypeVoteResolved         Type = "vote_resolved"
	TypeFundsLocked          Type = "funds_locked"
	TypeFundsReleased        Type = "funds_released"
	TypeVerificationSigned   Type = "verification_signed"
	TypeVerificationReached  Type = "verification_reached"
	TypeAuthorityConfigured  Type = "authority_configured"
	TypeRegistryConfigChange Type = "registry_config_change"
)

// Event is a structured notification. Keep it transport-agnostic so stores
// and sinks can fan out.
type Event struct {
	ID         string        `json:"id"`
	Type       Type          `json:"type"`
	Height     uint64        `json:"height"`
	Actor      id.Principal  `json:"actor,omitempty"`
	PoolID     *id.PoolID    `json:"pool_id,omitempty"`
	ProposalID *id.ProposalID `json:"proposal_id,omitempty"`
	Amount     uint64        `json:"amount,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	RequestID  string        `json:"request_id,omitempty"`
}

// Emitter is the write side services see. The publisher implements it.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Store persists events in append order.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Sink receives events for out-of-process consumers (Kafka topic, Redis
// stream). Sinks are best-effort: a sink failure is logged, never propagated
// into the operation that emitted the event.
type Sink interface {
	Send(ctx context.Context, event Event) error
}
