package domain

import (
	"strconv"

	dErrors "patrolfund/pkg/domain-errors"
)

// PoolID and ProposalID are sequential identifiers assigned by their
// registries, starting at zero. Distinct types keep the compiler from
// accepting a pool id where a proposal id is required.
type (
	PoolID     uint64
	ProposalID uint64
)

// ParsePoolID parses a pool id from external input (URL segments, payloads).
//
// Errors: CodeInvalidInput when the value is not a base-10 unsigned integer.
func ParsePoolID(s string) (PoolID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid pool id")
	}
	return PoolID(n), nil
}

// ParseProposalID parses a proposal id from external input.
//
// Errors: CodeInvalidInput when the value is not a base-10 unsigned integer.
func ParseProposalID(s string) (ProposalID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid proposal id")
	}
	return ProposalID(n), nil
}

func (id PoolID) String() string     { return strconv.FormatUint(uint64(id), 10) }
func (id ProposalID) String() string { return strconv.FormatUint(uint64(id), 10) }
