package tag

import "errors"

var (
	// ErrInvalidData reports structurally required sub-data that is absent or
	// inconsistent, such as a bitmap fill that does not reference an image.
	ErrInvalidData = errors.New("invalid data")

	// ErrNotImplemented reports an optional record sub-kind this engine does not decode.
	ErrNotImplemented = errors.New("not implemented")
)
