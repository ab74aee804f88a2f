package models

import id "patrolfund/pkg/domain"

// Outcome is the result of a resolved vote.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
)

// Tally accumulates stake-weighted yes/no votes for one proposal.
//
// Invariants:
//   - YesStake and NoStake are strictly additive
//   - EndHeight is reset to height+votingPeriod on every accepted vote
//   - Once Resolved the tally is read-only and Outcome never changes
type Tally struct {
	ProposalID id.ProposalID `json:"proposal_id"`
	YesStake   uint64        `json:"yes_stake"`
	NoStake    uint64        `json:"no_stake"`
	EndHeight  uint64        `json:"end_height"`
	Resolved   bool          `json:"resolved"`
	Outcome    Outcome       `json:"outcome,omitempty"`
}

// Decide computes the outcome: a strict yes-majority approves, a tie or
// no-majority rejects.
func (t Tally) Decide() Outcome {
	if t.YesStake > t.NoStake {
		return OutcomeApproved
	}
	return OutcomeRejected
}
