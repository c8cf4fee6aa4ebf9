package domain

import "errors"

// Error kinds surfaced by the core. Callers classify with errors.Is; any
// other error is an infrastructure failure.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrUnavailable      = errors.New("item is not available for booking")
	ErrDuplicateAddress = errors.New("email is already in use")
	ErrInvalidArgument  = errors.New("invalid argument")
)

const (
	KindNotFound         = "NOT_FOUND"
	KindForbidden        = "FORBIDDEN"
	KindUnavailable      = "UNAVAILABLE"
	KindDuplicateAddress = "DUPLICATE_ADDRESS"
	KindInvalidArgument  = "INVALID_ARGUMENT"
	KindInternal         = "INTERNAL"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrNotFound, KindNotFound},
	{ErrForbidden, KindForbidden},
	{ErrUnavailable, KindUnavailable},
	{ErrDuplicateAddress, KindDuplicateAddress},
	{ErrInvalidArgument, KindInvalidArgument},
}

// Kind names the error kind of err, or KindInternal for anything outside the taxonomy.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// RequireOneOf fails with ErrForbidden unless callerID is one of allowed.
func RequireOneOf(callerID int64, allowed ...int64) error {
	for _, id := range allowed {
		if id == callerID {
			return nil
		}
	}
	return ErrForbidden
}
