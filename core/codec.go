package core

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/ddelgadillo/authsim/pkg/crypto"
)

// AccessTokenPrefix marks every access token minted by this engine.
// Verifiers use it to cheaply recognize simulator tokens; everything
// after it is a base64 JSON payload. This is a simulator wire format,
// not a credential format - there is no signature, and a production
// system must not copy it.
const AccessTokenPrefix = "fake-jwt-token."

// accessClaims is the encoded access-token payload.
type accessClaims struct {
	Exp int64 `json:"exp"` // seconds since epoch
}

// Codec mints and verifies access tokens and mints refresh-token
// identifiers. Access tokens are stateless: verification needs only the
// token and a clock, never the directory.
type Codec struct {
	accessTTL time.Duration
}

func NewCodec(accessTTL time.Duration) *Codec {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	return &Codec{accessTTL: accessTTL}
}

// MintAccess produces a token valid until now + the configured TTL.
func (c *Codec) MintAccess(now time.Time) string {
	claims := accessClaims{Exp: now.Unix() + int64(c.accessTTL.Seconds())}
	payload, _ := json.Marshal(claims) // struct of one int64, cannot fail
	return AccessTokenPrefix + base64.StdEncoding.EncodeToString(payload)
}

// VerifyAccess reports whether token is a well-formed, unexpired access
// token at the given instant. It is total over all strings: malformed
// input means false, never an error or a panic.
func (c *Codec) VerifyAccess(token string, now time.Time) bool {
	exp, ok := c.DecodeAccess(token)
	return ok && now.UnixMilli() <= exp*1000
}

// DecodeAccess extracts the expiry claim without checking it against a
// clock. The second return is false for anything that does not carry the
// recognized prefix or does not decode.
func (c *Codec) DecodeAccess(token string) (exp int64, ok bool) {
	payload, found := strings.CutPrefix(token, AccessTokenPrefix)
	if !found {
		return 0, false
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return 0, false
	}

	var claims accessClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return 0, false
	}
	return claims.Exp, true
}

// MintRefresh produces a new opaque refresh-token identifier. Delivery
// to the caller's side channel is the engine's job, not the codec's.
func (c *Codec) MintRefresh() (string, error) {
	return crypto.NewRefreshID()
}
