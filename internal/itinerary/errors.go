package itinerary

import "errors"

var (
	// ErrUpstreamGeneration is returned when the text or JSON source failed
	// or produced content that cannot be built into a document.
	ErrUpstreamGeneration = errors.New("tripdoc: itinerary generation failed")

	// ErrImageUnavailable marks a stop whose image could not be resolved.
	// It is logged by the composer and never returned from a build.
	ErrImageUnavailable = errors.New("tripdoc: image unavailable")

	// ErrDelivery is returned when a finished document could not be delivered.
	// The document itself is still valid.
	ErrDelivery = errors.New("tripdoc: delivery failed")

	// ErrInvalidRequest is returned for incomplete or out-of-range trip parameters.
	ErrInvalidRequest = errors.New("tripdoc: invalid trip request")
)
