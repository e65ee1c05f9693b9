package storage

import "errors"

var (
	ErrInvalidPath       = errors.New("storage: invalid path")
	ErrCorrupt           = errors.New("storage: corrupt document")
	ErrLockTimeout       = errors.New("storage: lock timeout")
	ErrLockUnavailable   = errors.New("storage: lock unavailable")
	ErrEncodeFailed      = errors.New("storage: encode failed")
	ErrAtomicWriteFailed = errors.New("storage: atomic write failed")

	// ErrNoChange may be returned from an Update callback to skip the write.
	ErrNoChange = errors.New("storage: no change")
)
