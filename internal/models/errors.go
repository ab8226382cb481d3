package models

import "errors"

// Error taxonomy shared by every stage of the pipeline. Call sites wrap these
// with context so callers can match them with errors.Is.
var (
	// ErrConfiguration marks a missing or invalid required parameter.
	ErrConfiguration = errors.New("configuration error")

	// ErrDimensionMismatch marks images or volumes of differing shape.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrOutOfBounds marks a crop rectangle that exceeds the image.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrDegenerateTransform marks collinear or non-invertible corner correspondences.
	ErrDegenerateTransform = errors.New("degenerate transform")

	// ErrReconstruction marks a solver failure or an invalid solver result.
	ErrReconstruction = errors.New("reconstruction failure")

	// ErrIO marks a file read or write failure.
	ErrIO = errors.New("io failure")
)
