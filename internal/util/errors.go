package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrNoAPIKey indicates no API key has been configured
	ErrNoAPIKey = errors.New("API key not configured")

	// ErrNotFound indicates a required record or file was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidAudioType indicates an unknown audio category
	ErrInvalidAudioType = errors.New("invalid audio type")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")
)
