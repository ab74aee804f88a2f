package domain

import dErrors "patrolfund/pkg/domain-errors"

// Asset is the handle of an external fungible asset managed by the value
// transfer ledger. A pool is bound to exactly one asset at creation and every
// donation must present the same handle, preventing cross-asset contamination.
type Asset string

// ParseAsset constructs an Asset from external input.
//
// Errors: CodeInvalidInput when empty, oversized, or the burn identity. The
// burn identity is rejected because an asset owned by the burn principal can
// never honor a transfer back out of custody.
func ParseAsset(s string) (Asset, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "asset cannot be empty")
	}
	if len(s) > MaxPrincipalLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "asset exceeds maximum length")
	}
	if Principal(s).IsBurn() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "asset cannot be the burn identity")
	}
	return Asset(s), nil
}

func (a Asset) IsZero() bool { return a == "" }

func (a Asset) String() string { return string(a) }
