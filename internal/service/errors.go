package service

import "errors"

var (
	// ErrInvalidPlan rejects plan ids outside the canonical price table.
	ErrInvalidPlan = errors.New("invalid planId")
	// ErrConfiguration aborts a request when required config (base URL,
	// provider credentials) is missing.
	ErrConfiguration = errors.New("service not configured")
	// ErrProviderResponseInvalid flags a provider reply missing required
	// fields (order id, approval link).
	ErrProviderResponseInvalid = errors.New("provider response missing required fields")
	// ErrCaptureFailed wraps a provider capture rejection; the provider
	// body travels with it verbatim.
	ErrCaptureFailed = errors.New("capture failed")
	// ErrInvalidSignature is a hard rejection, never retried.
	ErrInvalidSignature = errors.New("invalid signature")
)
