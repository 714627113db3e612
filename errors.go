package qem

import "errors"

var (
	// A face references a vertex that does not exist, or the flat buffers are
	// not made of whole triples.
	ErrInvalidTopology = errors.New("qem: invalid topology")

	// Too few vertices or faces to work with, or too few would survive the
	// requested reduction.
	ErrInsufficientGeometry = errors.New("qem: insufficient geometry")

	// A configuration value or caller buffer is outside its documented domain.
	ErrInvalidParameter = errors.New("qem: invalid parameter")

	// The driver stalled before reaching its target and removed nothing.
	ErrNoProgress = errors.New("qem: unable to reduce mesh")
)
