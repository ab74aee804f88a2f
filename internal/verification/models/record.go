package models

import id "patrolfund/pkg/domain"

// Record is the multisig attestation state for one proposal.
//
// Invariants:
//   - Signers contains no duplicate principal and is bounded
//   - Verified flips true exactly when the distinct-signer count first
//     reaches the threshold and never flips back
type Record struct {
	ProposalID id.ProposalID  `json:"proposal_id"`
	Signers    []id.Principal `json:"signers"`
	Verified   bool           `json:"verified"`
}

// HasSigner reports whether the principal already signed.
func (r Record) HasSigner(signer id.Principal) bool {
	for _, s := range r.Signers {
		if s == signer {
			return true
		}
	}
	return false
}
