package core

import "time"

// RefreshCookieName is the side-channel slot the refresh-token
// identifier travels in. It is never part of a JSON request or response
// body.
const RefreshCookieName = "refreshToken"

// TransportContext is the capability a transport hands to Refresh and
// Revoke for reading, and to all minting paths for writing, the single
// stored refresh-token identifier. Cookie jars, headers, and in-memory
// test doubles all fit behind it.
//
// ReadRefreshToken returns "" when no identifier is stored; callers must
// treat that as "no token", never as a token equal to the empty string.
type TransportContext interface {
	ReadRefreshToken() string
	WriteRefreshToken(id string, ttl time.Duration, path string)
}
