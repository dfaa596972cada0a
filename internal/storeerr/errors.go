// Package storeerr defines the sentinel error kinds returned across stowr's
// storage, index, compression and delta layers.
package storeerr

import "errors"

var (
	ErrNotFound       = errors.New("storeerr: not found")
	ErrAlreadyExists  = errors.New("storeerr: already exists")
	ErrInvalidInput   = errors.New("storeerr: invalid input")
	ErrDecodeCorrupt  = errors.New("storeerr: decode corrupt")
	ErrDeltaCorrupt   = errors.New("storeerr: delta corrupt")
	ErrMissingBase    = errors.New("storeerr: missing base")
	ErrNotImplemented = errors.New("storeerr: not implemented")
	ErrIoError        = errors.New("storeerr: io error")
	ErrIndexError     = errors.New("storeerr: index error")
)
