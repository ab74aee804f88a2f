package domain

import (
	"strings"

	dErrors "patrolfund/pkg/domain-errors"
)

// Principal identifies a caller on the hosting ledger: a donor, a pool
// creator, a proposer, a signer, or a contract-owned custody account.
//
// Invariant: non-empty, no whitespace, at most 128 characters. Construct via
// ParsePrincipal at trust boundaries; direct casting bypasses validation.
type Principal string

// Burn is the designated unspendable identity. Value sent here is destroyed,
// so it can never be configured as a pool asset owner or fee recipient.
const Burn Principal = "burn-0000000000000000000000"

// MaxPrincipalLen bounds principal length at trust boundaries.
const MaxPrincipalLen = 128

// ParsePrincipal constructs a Principal from external input.
//
// Errors: CodeInvalidInput when empty, oversized, or containing whitespace.
func ParsePrincipal(s string) (Principal, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal cannot be empty")
	}
	if len(s) > MaxPrincipalLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal exceeds maximum length")
	}
	if strings.ContainsAny(s, " \t\n\r") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal contains whitespace")
	}
	return Principal(s), nil
}

// IsZero reports whether the principal is unset.
func (p Principal) IsZero() bool { return p == "" }

// IsBurn reports whether the principal is the burn identity.
func (p Principal) IsBurn() bool { return p == Burn }

func (p Principal) String() string { return string(p) }
