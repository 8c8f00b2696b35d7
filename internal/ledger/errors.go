// internal/ledger/errors.go
package ledger

import (
	"errors"

	"github.com/rovshanmuradov/genesis-launchpad/internal/safemath"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrAlreadyExists  = errors.New("record already exists")
	ErrConflict       = errors.New("concurrent write conflict")
	ErrSchemaMismatch = errors.New("record schema mismatch")
	ErrReadOnly       = errors.New("write in read-only transaction")
	ErrUnauthorized   = errors.New("unauthorized signer")

	// ErrRetryLater is the parent of every temporal rejection (cooldowns,
	// stale oracle). The same call may succeed at a later time.
	ErrRetryLater = errors.New("temporarily rejected")
)

// IsRetryable reports whether resubmitting the same operation can succeed
// without changing its inputs.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrRetryLater)
}

// IsArithmetic reports whether err is an overflow, underflow or division by zero.
func IsArithmetic(err error) bool {
	return errors.Is(err, safemath.ErrOverflow) ||
		errors.Is(err, safemath.ErrUnderflow) ||
		errors.Is(err, safemath.ErrDivisionByZero)
}
