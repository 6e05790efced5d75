package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrConfigRequired  = errors.New("config is required")
	ErrInvalidEndpoint = errors.New("endpoint must be an absolute http or https URL")
	ErrInvalidPath     = errors.New("endpoint path must start with /")
	ErrInvalidTimeout  = errors.New("timeout must not be negative")
)

// ErrRequestFailed wraps every transport failure and non-2xx response.
var ErrRequestFailed = errors.New("error sending request")
