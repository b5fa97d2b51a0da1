package httprt

import (
	"net/http"
	"sync"
	"time"

	"github.com/ddelgadillo/authsim"
)

// refreshSlot holds the one refresh-token identifier the "browser"
// keeps, with an absolute expiry. It outlives individual requests.
type refreshSlot struct {
	mu      sync.Mutex
	value   string
	path    string
	expires time.Time
}

func (s *refreshSlot) read() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.value == "" || time.Now().After(s.expires) {
		return ""
	}
	return s.value
}

func (s *refreshSlot) write(id, path string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = id
	s.path = path
	s.expires = time.Now().Add(ttl)
}

// requestTransport is the per-request TransportContext view: reads
// prefer an explicit request cookie over the shared slot, and writes go
// to the slot plus a Set-Cookie header on the response.
type requestTransport struct {
	slot  *refreshSlot
	req   *http.Request
	wrote *http.Cookie
}

var _ authsim.TransportContext = (*requestTransport)(nil)

func (t *requestTransport) ReadRefreshToken() string {
	if cookie, err := t.req.Cookie(authsim.RefreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return t.slot.read()
}

func (t *requestTransport) WriteRefreshToken(id string, ttl time.Duration, path string) {
	t.slot.write(id, path, ttl)
	t.wrote = &http.Cookie{
		Name:    authsim.RefreshCookieName,
		Value:   id,
		Path:    path,
		Expires: time.Now().Add(ttl),
	}
}
