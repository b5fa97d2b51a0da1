package core

import (
	"log/slog"
	"time"

	"github.com/ddelgadillo/authsim/pkg/crypto"
)

// Token lifetimes the simulated backend has always used.
const (
	DefaultAccessTokenTTL  = 2 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

type Config struct {
	// Store persists the account directory. Required.
	Store DirectoryStore

	// Optional config
	Hasher          crypto.PasswordHandler
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Logger          *slog.Logger
	Clock           func() time.Time // test seam; defaults to time.Now
	DisableCache    bool
	CacheConfig     *CacheConfig

	// HTTP, when set, gets the four simulator routes registered on it
	// during construction. RoundTripper embedders leave it nil.
	HTTP HTTPAdapter

	// BasePath prefixes the registered routes ("" mounts /users/... at
	// the root).
	BasePath string
}

// Backend bundles the constructed engine with its collaborators.
type Backend struct {
	Engine    *Engine
	Directory *Directory
	BasePath  string
}

// HTTPAdapter is implemented by transports that can expose the
// simulator's routes over a real server.
type HTTPAdapter interface {
	RegisterRoutes(b *Backend) error
}
