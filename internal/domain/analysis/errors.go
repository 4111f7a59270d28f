package analysis

import "errors"

// Input-validation errors, the only failures surfaced to callers.
var (
	ErrEmptyLog   = errors.New("log text is empty")
	ErrLogTooLong = errors.New("log text exceeds maximum length")
)

// IsInputError reports whether err is a rejected-input error, so the
// transport layer can map it to a 400 instead of a 500.
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyLog) || errors.Is(err, ErrLogTooLong)
}
