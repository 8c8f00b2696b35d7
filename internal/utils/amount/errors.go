package amount

import "errors"

var (
	ErrNegative   = errors.New("amount is negative")
	ErrOutOfRange = errors.New("amount exceeds uint64")
)
