package auth

import "errors"

var (
	// ErrMissingClientID is returned when no application (client) ID is configured.
	ErrMissingClientID = errors.New("auth: missing client ID")

	// ErrMissingTenantID is returned when no directory (tenant) ID is configured.
	ErrMissingTenantID = errors.New("auth: missing tenant ID")

	// ErrDeviceAuthorization is returned when the device code could not be obtained.
	ErrDeviceAuthorization = errors.New("auth: failed to create device flow")

	// ErrAuthentication is returned when the user did not complete the device flow.
	ErrAuthentication = errors.New("auth: could not obtain access token")
)
