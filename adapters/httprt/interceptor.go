// Package httprt intercepts an http.Client at the RoundTripper seam and
// serves the simulated authentication backend in-process. Requests that
// don't match one of the four simulator routes are forwarded unchanged
// to the wrapped transport, so the client keeps working against the real
// network for everything else.
package httprt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ddelgadillo/authsim"
)

type Options struct {
	// Base handles requests the simulator doesn't. Defaults to
	// http.DefaultTransport.
	Base http.RoundTripper

	// Latency is slept before every simulated request, modeling a
	// network round trip. Zero disables the delay.
	Latency time.Duration

	Logger *slog.Logger
}

// Interceptor is an http.RoundTripper serving the simulator's routes.
// It owns the refresh-token side channel: a single cookie-like slot
// that survives across requests, the way a browser jar would.
type Interceptor struct {
	backend *authsim.Backend
	base    http.RoundTripper
	latency time.Duration
	log     *slog.Logger
	slot    *refreshSlot
}

var _ http.RoundTripper = (*Interceptor)(nil)

func New(backend *authsim.Backend, opts Options) *Interceptor {
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Interceptor{
		backend: backend,
		base:    base,
		latency: opts.Latency,
		log:     log,
		slot:    &refreshSlot{},
	}
}

// Client returns an http.Client routed through the interceptor.
func (i *Interceptor) Client() *http.Client {
	return &http.Client{Transport: i}
}

func (i *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	route := authsim.Classify(req.URL.Path, req.Method)
	if route == authsim.RouteNone {
		return i.base.RoundTrip(req)
	}

	if err := i.wait(req.Context()); err != nil {
		return nil, err
	}

	log := i.log.With("request_id", uuid.NewString(), "route", route.String())
	tc := &requestTransport{slot: i.slot, req: req}
	engine := i.backend.Engine

	switch route {
	case authsim.RouteAuthenticate:
		creds := parseCredentials(req)
		profile, err := engine.Authenticate(creds.Username, creds.Password, tc)
		if err != nil {
			return i.fail(req, log, err)
		}
		log.Info("authenticated", "account_id", profile.ID)
		return i.respond(req, http.StatusOK, profile, tc)

	case authsim.RouteRefreshToken:
		profile, err := engine.Refresh(tc)
		if err != nil {
			return i.fail(req, log, err)
		}
		log.Info("token refreshed", "account_id", profile.ID)
		return i.respond(req, http.StatusOK, profile, tc)

	case authsim.RouteRevokeToken:
		if err := engine.Revoke(req.Header.Get("Authorization"), tc); err != nil {
			return i.fail(req, log, err)
		}
		log.Info("token revoked")
		return i.respond(req, http.StatusOK, map[string]string{"message": "Token revoked"}, tc)

	default: // authsim.RouteListUsers
		accounts, err := engine.ListAccounts(req.Header.Get("Authorization"))
		if err != nil {
			return i.fail(req, log, err)
		}
		return i.respond(req, http.StatusOK, accounts, tc)
	}
}

// wait applies the artificial latency, giving up early if the request
// context is done.
func (i *Interceptor) wait(ctx context.Context) error {
	if i.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(i.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (i *Interceptor) fail(req *http.Request, log *slog.Logger, err error) (*http.Response, error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, authsim.ErrInvalidCredentials):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, authsim.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = authsim.ErrUnauthorized.Error()
	default:
		log.Error("simulator error", "err", err)
	}

	log.Debug("request failed", "status", status)
	return i.respond(req, status, map[string]string{"message": message}, nil)
}

func (i *Interceptor) respond(req *http.Request, status int, body any, tc *requestTransport) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	resp := &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        make(http.Header),
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: int64(len(data)),
		Request:       req,
	}
	resp.Header.Set("Content-Type", "application/json")

	if tc != nil && tc.wrote != nil {
		resp.Header.Add("Set-Cookie", tc.wrote.String())
	}
	return resp, nil
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// parseCredentials reads the request body leniently: a missing or
// malformed body yields empty credentials, which the engine rejects as
// invalid - never an error surfaced to the transport.
func parseCredentials(req *http.Request) credentials {
	var creds credentials
	if req.Body == nil {
		return creds
	}
	data, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return creds
	}
	_ = json.Unmarshal(data, &creds)
	return creds
}
