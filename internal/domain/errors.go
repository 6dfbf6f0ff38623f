package domain

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden") // Authenticated, but lacks permission

	// Provider Errors
	ErrNoProviderConfigured = errors.New("no generation backend configured")
	ErrEmptyResponse        = errors.New("generation backend returned empty response")
	ErrProviderBackend      = errors.New("generation backend call failed")

	// Delivery Errors
	ErrDeploymentFailed = errors.New("deployment failed")
	ErrArchiveFailed    = errors.New("archive creation failed")

	// Record Lifecycle Errors
	ErrRecordTerminal = errors.New("generation record already in terminal state")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrInvalidInput   = errors.New("invalid input data")

	// Token Errors (auth boundary, consumed only)
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")
)
