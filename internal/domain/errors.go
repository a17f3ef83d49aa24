package domain

import "errors"

var (
	// ErrNotFound indicates the referenced record does not exist. It is
	// reported to the caller and never retried.
	ErrNotFound = errors.New("record not found")

	// ErrValidation indicates a missing or invalid field in a request.
	ErrValidation = errors.New("validation failed")

	// ErrConnectivity indicates the relational medium cannot be reached.
	// It is fatal at server startup and triggers client-side fail-over.
	ErrConnectivity = errors.New("database unreachable")

	// ErrMediumCorrupt indicates a stored payload could not be decoded.
	// Local stores recover by reseeding defaults rather than propagating it.
	ErrMediumCorrupt = errors.New("stored payload unreadable")

	// ErrPayloadTooLarge indicates an upload exceeded the configured ceiling.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrUnsupportedMedia indicates an upload whose declared media type is
	// not an image.
	ErrUnsupportedMedia = errors.New("unsupported media type")
)
