package core

import "errors"

// Authentication errors. Messages are caller-visible and intentionally
// generic: a failed login never reveals which field was wrong.
var (
	ErrInvalidCredentials = errors.New("Invalid username or password") // 400
	ErrUnauthorized       = errors.New("Unauthorized")                 // 401
)

// Cache errors
var (
	ErrCacheNotFound = errors.New("token not found in cache")
)

// Config errors (embedder-side configuration)
var (
	ErrStoreRequired = errors.New("directory store is required")
)
