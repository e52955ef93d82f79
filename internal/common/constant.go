// Package common contains shared constants and sentinel errors used across
// inventory components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// LoggedInKey is the session store key remembering a successful sign-in.
const LoggedInKey = "logged_in"
