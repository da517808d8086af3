// Package errors defines all exported error sentinels for the repcat library.
//
// This is the single source of truth for error values. Both the top-level
// repcat package and the command-line layer import from here, ensuring
// errors.Is checks work across package boundaries.
package errors

import "errors"

// Configuration errors, detected before any I/O starts.
var (
	ErrNoSources           = errors.New("repcat: no input sources given")
	ErrZeroRepeat          = errors.New("repcat: repeat counts must be positive")
	ErrNegativeSourceSize  = errors.New("repcat: source length is negative")
	ErrMemoryLimitTooSmall = errors.New("repcat: memory limit is smaller than one buffer")
	ErrUnknownChecksum     = errors.New("repcat: unknown checksum algorithm")
	ErrSourceMissing       = errors.New("repcat: input path does not exist")
)

// Pipeline errors.
var (
	ErrSizeChanged  = errors.New("repcat: source size changed during run")
	ErrOutputLocked = errors.New("repcat: output file is locked by another process")
)

// Verification errors.
var (
	ErrVerifySize   = errors.New("repcat: output size does not match plan")
	ErrVerifyFailed = errors.New("repcat: output region checksum mismatch")
)
