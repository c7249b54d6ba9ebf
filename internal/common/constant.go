// Package common contains shared constants and sentinel errors used across
// garagekeeper components.
package common

// AuthorizationHeaderName is the HTTP header that carries the bearer
// credential on protected requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the credential scheme expected in AuthorizationHeaderName.
const BearerScheme = "Bearer"

// User-facing messages. Clients match on these, keep them stable.
const (
	MessageSignInRequired       = "Sign in to view this content!"
	MessageAdminRequired        = "Admin access required"
	MessageInvalidCredentials   = "Invalid credentials"
	MessageInternalError        = "internal error"
	MessageNotFound             = "not found"
	MessageBackendHealthy       = "Backend is working!"
	MessageUsernameAlreadyTaken = "username already exists"
)
