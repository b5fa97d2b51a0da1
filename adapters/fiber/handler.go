package fiber

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/ddelgadillo/authsim"
)

// cookieContext adapts a fiber request/response pair to the engine's
// refresh-token side channel.
type cookieContext struct {
	c fiber.Ctx
}

var _ authsim.TransportContext = cookieContext{}

func (t cookieContext) ReadRefreshToken() string {
	return t.c.Cookies(authsim.RefreshCookieName)
}

func (t cookieContext) WriteRefreshToken(id string, ttl time.Duration, path string) {
	t.c.Cookie(&fiber.Cookie{
		Name:    authsim.RefreshCookieName,
		Value:   id,
		Path:    path,
		Expires: time.Now().Add(ttl),
	})
}

func (a *Adapter) authenticate(c fiber.Ctx) error {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	// A malformed body is just empty credentials: the engine answers
	// with the same generic rejection either way.
	_ = c.Bind().Body(&input)

	profile, err := a.backend.Engine.Authenticate(input.Username, input.Password, cookieContext{c})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(profile)
}

func (a *Adapter) refresh(c fiber.Ctx) error {
	profile, err := a.backend.Engine.Refresh(cookieContext{c})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(profile)
}

func (a *Adapter) revoke(c fiber.Ctx) error {
	if err := a.backend.Engine.Revoke(c.Get(fiber.HeaderAuthorization), cookieContext{c}); err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(map[string]string{"message": "Token revoked"})
}

func (a *Adapter) users(c fiber.Ctx) error {
	accounts, err := a.backend.Engine.ListAccounts(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(accounts)
}

// respondError maps engine errors to the simulator's response envelope.
func respondError(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	return c.Status(status).JSON(map[string]string{"message": message})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, authsim.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, authsim.ErrInvalidCredentials):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
