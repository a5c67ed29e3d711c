package domain

import "errors"

var (
	// ErrNotFound signals a missing source file.
	ErrNotFound = errors.New("not found")
	// ErrMalformed signals content that is not a well-formed feature collection.
	ErrMalformed = errors.New("malformed input")
	// ErrLocationNotFound signals an unknown location key.
	ErrLocationNotFound = errors.New("location not found")
	// ErrImageNotFound signals an unknown image id.
	ErrImageNotFound = errors.New("image not found")
)
