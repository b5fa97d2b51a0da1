package core

import (
	"log/slog"
	"strings"
	"time"
)

const bearerPrefix = "Bearer "

// Engine is the session state machine: authenticate, refresh, revoke,
// authorize. There is no server-side session object - state is whatever
// the outstanding refresh-token sets and access-token expiries imply.
//
// Every operation resolves to a value or one of the errors in errors.go;
// nothing here panics on caller input.
type Engine struct {
	dir        *Directory
	codec      *Codec
	cache      *TokenCache // nil when caching is disabled
	refreshTTL time.Duration
	now        func() time.Time
	log        *slog.Logger
}

func NewEngine(dir *Directory, codec *Codec, cache *TokenCache, refreshTTL time.Duration, now func() time.Time, log *slog.Logger) *Engine {
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		dir:        dir,
		codec:      codec,
		cache:      cache,
		refreshTTL: refreshTTL,
		now:        now,
		log:        log,
	}
}

// Authenticate verifies the credential pair, mints a refresh token onto
// the account (existing tokens stay valid - one per concurrent session),
// writes it to the transport side channel, and returns the public
// profile with a fresh access token.
//
// Any non-matching pair fails with ErrInvalidCredentials; the message
// never says which field was wrong.
func (e *Engine) Authenticate(username, password string, tc TransportContext) (*PublicProfile, error) {
	acct, err := e.dir.FindByCredentials(username, password)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		e.log.Debug("authentication rejected", "username", username)
		return nil, ErrInvalidCredentials
	}

	refreshID, err := e.codec.MintRefresh()
	if err != nil {
		return nil, err
	}

	acct, err = e.dir.AppendRefresh(acct.ID, refreshID)
	if err != nil {
		return nil, err
	}

	if tc != nil {
		tc.WriteRefreshToken(refreshID, e.refreshTTL, "/")
	}

	e.log.Info("authenticated", "account_id", acct.ID, "sessions", len(acct.RefreshTokens))
	return acct.Profile(e.codec.MintAccess(e.now())), nil
}

// Refresh rotates the transport-supplied refresh token: the presented
// identifier is removed and a new one added in one atomic step, which is
// what makes every identifier single-use. Missing, unknown, expired, and
// already-rotated identifiers are indistinguishable to the caller - all
// of them are ErrUnauthorized.
func (e *Engine) Refresh(tc TransportContext) (*PublicProfile, error) {
	if tc == nil {
		return nil, ErrUnauthorized
	}

	oldID := tc.ReadRefreshToken()
	if oldID == "" {
		return nil, ErrUnauthorized
	}

	newID, err := e.codec.MintRefresh()
	if err != nil {
		return nil, err
	}

	acct, err := e.dir.Rotate(oldID, newID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		e.log.Debug("refresh rejected, token not held by any account")
		return nil, ErrUnauthorized
	}

	tc.WriteRefreshToken(newID, e.refreshTTL, "/")

	e.log.Info("refresh token rotated", "account_id", acct.ID)
	return acct.Profile(e.codec.MintAccess(e.now())), nil
}

// Revoke removes the transport-supplied refresh token from its account.
// It requires a currently valid bearer access token, but is idempotent
// with respect to the refresh token itself: revoking an unknown or
// already-removed identifier still succeeds.
func (e *Engine) Revoke(authorization string, tc TransportContext) error {
	if !e.Authorized(authorization) {
		return ErrUnauthorized
	}

	if tc == nil {
		return nil
	}

	removed, err := e.dir.RemoveRefresh(tc.ReadRefreshToken())
	if err != nil {
		return err
	}
	if removed {
		e.log.Info("refresh token revoked")
	}
	return nil
}

// ListAccounts returns the full directory snapshot to holders of a valid
// bearer access token. The snapshot includes password hashes and
// refresh-token sets; a production system would redact both.
func (e *Engine) ListAccounts(authorization string) ([]*Account, error) {
	if !e.Authorized(authorization) {
		return nil, ErrUnauthorized
	}
	return e.dir.Snapshot(), nil
}

// Authorized reports whether the Authorization header value carries a
// currently valid access token. Malformed headers and undecodable
// payloads are simply unauthorized, never an error.
func (e *Engine) Authorized(authorization string) bool {
	token, found := strings.CutPrefix(authorization, bearerPrefix)
	if !found {
		return false
	}

	if e.cache != nil {
		if exp, err := e.cache.Get(token); err == nil {
			return e.now().UnixMilli() <= exp*1000
		}
	}

	exp, ok := e.codec.DecodeAccess(token)
	if !ok {
		return false
	}

	if e.cache != nil {
		e.cache.Set(token, exp)
	}
	return e.now().UnixMilli() <= exp*1000
}

// CacheStats exposes the verified-token cache counters, or a zero value
// when caching is disabled.
func (e *Engine) CacheStats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	return e.cache.Stats()
}
