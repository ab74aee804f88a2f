package models

import id "patrolfund/pkg/domain"

// Escrow is value held in custody for a beneficiary pending verification.
//
// Invariants:
//   - Released transitions false to true at most once, and only after the
//     proposal's verification record is verified
//   - Amount, Beneficiary, and Asset are immutable after the lock
//   - Escrows are never deleted
type Escrow struct {
	ProposalID  id.ProposalID `json:"proposal_id"`
	Amount      uint64        `json:"amount"`
	Beneficiary id.Principal  `json:"beneficiary"`
	Asset       id.Asset      `json:"asset"`
	Released    bool          `json:"released"`
	LockedAt    uint64        `json:"locked_at"`
	ReleasedAt  uint64        `json:"released_at,omitempty"`
}
