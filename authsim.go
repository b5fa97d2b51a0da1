// Package authsim simulates an authentication backend in-process for
// frontend development: credential login, short-lived access tokens,
// rotating single-use refresh tokens, revocation, and a protected
// account listing - backed by a pluggable persistent store.
//
// It is a reference design for the shape of the protocol, not a secure
// token system: tokens are unsigned and trivially forgeable.
package authsim

import (
	"github.com/ddelgadillo/authsim/core"
	"github.com/ddelgadillo/authsim/pkg/crypto"
)

// interfaces
type (
	DirectoryStore   = core.DirectoryStore
	TransportContext = core.TransportContext

	HTTPAdapter = core.HTTPAdapter

	PasswordHandler = crypto.PasswordHandler
)

// structs
type (
	Backend     = core.Backend
	Config      = core.Config
	CacheConfig = core.CacheConfig

	Engine    = core.Engine
	Directory = core.Directory
	Codec     = core.Codec
)

type (
	Account       = core.Account
	PublicProfile = core.PublicProfile
	CacheStats    = core.CacheStats
	Route         = core.Route
)

const (
	StorageKey        = core.StorageKey
	AccessTokenPrefix = core.AccessTokenPrefix
	RefreshCookieName = core.RefreshCookieName

	RouteNone         = core.RouteNone
	RouteAuthenticate = core.RouteAuthenticate
	RouteRefreshToken = core.RouteRefreshToken
	RouteRevokeToken  = core.RouteRevokeToken
	RouteListUsers    = core.RouteListUsers
)

// Constructors & helpers (convenience re-exports)
var (
	NewMemoryStore = core.NewMemoryStore
	NewArgon2      = crypto.NewArgon2
	Classify       = core.Classify
	SeedAccounts   = core.SeedAccounts
)

var (
	ErrInvalidCredentials = core.ErrInvalidCredentials
	ErrUnauthorized       = core.ErrUnauthorized
	ErrStoreRequired      = core.ErrStoreRequired
)

// New validates config, fills in defaults, and builds the simulator:
// directory loaded (and seeded if empty), codec, verified-token cache,
// and session engine. When config.HTTP is set, the four routes are
// registered on it before returning.
func New(config Config) (*Backend, error) {
	if config.Store == nil {
		return nil, ErrStoreRequired
	}

	// Set Defaults

	hasher := config.Hasher
	if hasher == nil {
		hasher = crypto.NewArgon2()
	}

	accessTTL := config.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = core.DefaultAccessTokenTTL
	}

	var cache *core.TokenCache
	if !config.DisableCache {
		cacheConfig := core.CacheConfig{TTL: accessTTL, MaxSize: 500}
		if config.CacheConfig != nil {
			cacheConfig = *config.CacheConfig
		}
		cache = core.NewTokenCache(cacheConfig)
	}

	directory, err := core.NewDirectory(config.Store, hasher)
	if err != nil {
		return nil, err
	}

	engine := core.NewEngine(
		directory,
		core.NewCodec(accessTTL),
		cache,
		config.RefreshTokenTTL,
		config.Clock,
		config.Logger,
	)

	backend := &Backend{
		Engine:    engine,
		Directory: directory,
		BasePath:  config.BasePath,
	}

	if config.HTTP != nil {
		if err := config.HTTP.RegisterRoutes(backend); err != nil {
			return nil, err
		}
	}

	return backend, nil
}
