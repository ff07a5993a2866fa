package types

import "errors"

// Error taxonomy shared by the extractor, the encoder and the CLI.
// Every one of them is fatal for the whole conversion.
var (
	// ErrConfiguration is a missing or unparsable configuration value.
	ErrConfiguration = errors.New("configuration error")
	// ErrMissingFrame means the expected frame file does not exist.
	ErrMissingFrame = errors.New("input frame missing")
	// ErrDimensionMismatch means a frame's size differs from the declared resolution.
	ErrDimensionMismatch = errors.New("frame dimensions do not match resolution")
	// ErrRange is a coordinate, count or dimension that does not fit its field.
	ErrRange = errors.New("value out of range")
	// ErrSinkWrite wraps any failure of the output sink.
	ErrSinkWrite = errors.New("output write failed")
)
