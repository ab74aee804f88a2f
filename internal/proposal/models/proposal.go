package models

import (
	id "patrolfund/pkg/domain"
	dErrors "patrolfund/pkg/domain-errors"
)

// MaxDescriptionLen bounds proposal descriptions.
const MaxDescriptionLen = 500

// Status is the proposal lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

var validStatuses = map[Status]bool{
	StatusPending:   true,
	StatusApproved:  true,
	StatusRejected:  true,
	StatusCompleted: true,
}

// legalTransitions encodes the lifecycle once so every mutation site reuses
// it: pending resolves to approved or rejected, approved completes on escrow
// release. There is no path back to pending and rejected is terminal.
var legalTransitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusCompleted},
}

// ParseStatus constructs a Status from external input.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !validStatuses[st] {
		return "", dErrors.New(dErrors.CodeValidation, "invalid proposal status")
	}
	return st, nil
}

// CanTransitionTo reports whether the lifecycle permits moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Proposal is a patrol-task request tied to a requester and funding target.
//
// Invariants:
//   - Proposer is immutable after creation
//   - Status only moves along the legal transition set
//   - Proposals are never deleted
type Proposal struct {
	ID            id.ProposalID `json:"id"`
	Proposer      id.Principal  `json:"proposer"`
	Description   string        `json:"description"`
	Duration      uint64        `json:"duration"`
	RequiredFunds uint64        `json:"required_funds"`
	Status        Status        `json:"status"`
	CreatedAt     uint64        `json:"created_at"`
}
