package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrUnsupportedVersion = errors.New("unsupported index version")
	ErrFrozen             = errors.New("index is frozen")

	// Generation errors
	ErrUnknownWord        = errors.New("word not in model")
	ErrNoPronunciation    = errors.New("no known pronunciation")
	ErrNoRhymeGroup       = errors.New("no rhyme group registered")
	ErrInsufficientRhymes = errors.New("no rhyme group large enough")
)
