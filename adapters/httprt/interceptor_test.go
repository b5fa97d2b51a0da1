package httprt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ddelgadillo/authsim"
	"github.com/ddelgadillo/authsim/pkg/crypto"
)

// recordingTransport is a fake base RoundTripper that records what was
// forwarded to the real network.
type recordingTransport struct {
	lastReq *http.Request
	resp    *http.Response
	err     error
}

func (r *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r.lastReq = req
	if r.err != nil {
		return nil, r.err
	}
	if r.resp != nil {
		return r.resp, nil
	}
	return &http.Response{
		StatusCode: http.StatusTeapot,
		Body:       http.NoBody,
		Request:    req,
	}, nil
}

func newTestInterceptor(t *testing.T, opts Options) (*Interceptor, *recordingTransport) {
	t.Helper()
	backend, err := authsim.New(authsim.Config{
		Store:  authsim.NewMemoryStore(),
		Hasher: crypto.Plaintext{},
	})
	if err != nil {
		t.Fatalf("authsim.New failed: %v", err)
	}
	base := &recordingTransport{}
	if opts.Base == nil {
		opts.Base = base
	}
	return New(backend, opts), base
}

func post(t *testing.T, client *http.Client, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return v
}

func TestAuthenticateIssuesProfileAndCookie(t *testing.T) {
	interceptor, _ := newTestInterceptor(t, Options{})
	client := interceptor.Client()

	resp := post(t, client, "http://dev.local/api/users/authenticate",
		`{"username":"lgomez","password":"mypassword1"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	profile := decodeBody[authsim.PublicProfile](t, resp)
	if profile.ID != 1 || !profile.IsAdmin || profile.JWTToken == "" {
		t.Errorf("profile = %+v, want admin account 1 with a token", profile)
	}

	cookie := resp.Header.Get("Set-Cookie")
	if !strings.HasPrefix(cookie, authsim.RefreshCookieName+"=") {
		t.Errorf("Set-Cookie = %q, want a %s cookie", cookie, authsim.RefreshCookieName)
	}
	if !strings.Contains(cookie, "Path=/") {
		t.Errorf("Set-Cookie = %q, want path scope /", cookie)
	}
}

func TestAuthenticateBadCredentialsIs400(t *testing.T) {
	interceptor, _ := newTestInterceptor(t, Options{})
	client := interceptor.Client()

	tests := []struct {
		name string
		body string
	}{
		{name: "wrong password", body: `{"username":"lgomez","password":"nope"}`},
		{name: "empty body", body: ""},
		{name: "malformed json", body: `{"username":`},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			resp := post(t, client, "http://dev.local/users/authenticate", test.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			body := decodeBody[map[string]string](t, resp)
			if body["message"] != "Invalid username or password" {
				t.Errorf("message = %q, want the generic rejection", body["message"])
			}
		})
	}
}

func TestRefreshRotatesStoredIdentifier(t *testing.T) {
	interceptor, _ := newTestInterceptor(t, Options{})
	client := interceptor.Client()

	resp := post(t, client, "http://dev.local/users/authenticate",
		`{"username":"lgomez","password":"mypassword1"}`)
	resp.Body.Close()
	issued := interceptor.slot.read()
	if issued == "" {
		t.Fatal("no refresh identifier stored after authenticate")
	}

	resp = post(t, client, "http://dev.local/users/refresh-token", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status = %d, want 200", resp.StatusCode)
	}
	profile := decodeBody[authsim.PublicProfile](t, resp)
	if profile.ID != 1 {
		t.Errorf("refreshed profile = %+v, want account 1", profile)
	}

	rotated := interceptor.slot.read()
	if rotated == "" || rotated == issued {
		t.Errorf("identifier not rotated: before %q, after %q", issued, rotated)
	}
}

func TestRefreshWithoutTokenIs401(t *testing.T) {
	interceptor, _ := newTestInterceptor(t, Options{})

	resp := post(t, interceptor.Client(), "http://dev.local/users/refresh-token", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["message"] != "Unauthorized" {
		t.Errorf("message = %q, want Unauthorized", body["message"])
	}
}

func TestExplicitRequestCookieWinsOverSlot(t *testing.T) {
	interceptor, _ := newTestInterceptor(t, Options{})
	client := interceptor.Client()

	resp := post(t, client, "http://dev.local/users/authenticate",
		`{"username":"lgomez","password":"mypassword1"}`)
	resp.Body.Close()

	// A cookie the engine never issued must not refresh, even though
	// the shared slot holds a valid one.
	req, _ := http.NewRequest(http.MethodPost, "http://dev.local/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: authsim.RefreshCookieName, Value: "forged"})
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for a forged cookie", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRevokeEndsTheSession(t *testing.T) {
	interceptor, _ := newTestInterceptor(t, Options{})
	client := interceptor.Client()

	resp := post(t, client, "http://dev.local/users/authenticate",
		`{"username":"lgomez","password":"mypassword1"}`)
	profile := decodeBody[authsim.PublicProfile](t, resp)

	req, _ := http.NewRequest(http.MethodPost, "http://dev.local/users/revoke-token", nil)
	req.Header.Set("Authorization", "Bearer "+profile.JWTToken)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("revoke status = %d, want 200", resp.StatusCode)
	}
	ack := decodeBody[map[string]string](t, resp)
	if ack["message"] != "Token revoked" {
		t.Errorf("ack = %q, want Token revoked", ack["message"])
	}

	// The revoked identifier can no longer refresh.
	resp = post(t, client, "http://dev.local/users/refresh-token", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("refresh after revoke = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestListUsersGate(t *testing.T) {
	interceptor, _ := newTestInterceptor(t, Options{})
	client := interceptor.Client()

	req, _ := http.NewRequest(http.MethodGet, "http://dev.local/users", nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()

	authResp := post(t, client, "http://dev.local/users/authenticate",
		`{"username":"cramirez","password":"securepass2"}`)
	profile := decodeBody[authsim.PublicProfile](t, authResp)

	req, _ = http.NewRequest(http.MethodGet, "http://dev.local/users", nil)
	req.Header.Set("Authorization", "Bearer "+profile.JWTToken)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("authorized list = %d, want 200", resp.StatusCode)
	}
	accounts := decodeBody[[]authsim.Account](t, resp)
	if len(accounts) != 2 {
		t.Errorf("got %d accounts, want the full directory of 2", len(accounts))
	}
}

func TestUnknownRoutesPassThroughUnchanged(t *testing.T) {
	interceptor, base := newTestInterceptor(t, Options{})
	client := interceptor.Client()

	req, _ := http.NewRequest(http.MethodGet, "http://dev.local/health", nil)
	req.Header.Set("X-Trace", "abc")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if base.lastReq == nil {
		t.Fatal("base transport was never called")
	}
	if base.lastReq.Header.Get("X-Trace") != "abc" {
		t.Error("forwarded request was modified")
	}
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("status = %d, want the base transport's 418", resp.StatusCode)
	}
}

func TestPassthroughErrorsAreReturnedUnchanged(t *testing.T) {
	wantErr := errors.New("connection refused")
	backend, err := authsim.New(authsim.Config{
		Store:  authsim.NewMemoryStore(),
		Hasher: crypto.Plaintext{},
	})
	if err != nil {
		t.Fatalf("authsim.New failed: %v", err)
	}
	interceptor := New(backend, Options{Base: &recordingTransport{err: wantErr}})

	req, _ := http.NewRequest(http.MethodGet, "http://dev.local/health", nil)
	if _, err := interceptor.RoundTrip(req); !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want the base transport's %v", err, wantErr)
	}
}

func TestLatencyHonorsContextCancellation(t *testing.T) {
	interceptor, _ := newTestInterceptor(t, Options{Latency: 10 * time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost,
		"http://dev.local/users/authenticate",
		bytes.NewReader(nil))

	start := time.Now()
	_, err := interceptor.RoundTrip(req)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("canceled request waited for the full latency")
	}
}
