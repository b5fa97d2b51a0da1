// Package fiber exposes the simulated authentication backend over a
// real HTTP server using gofiber, for frontends that point at a dev
// server instead of intercepting their own client.
package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/ddelgadillo/authsim"
)

type Adapter struct {
	app     *fiber.App
	backend *authsim.Backend
}

var _ authsim.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App) *Adapter {
	return &Adapter{app: app}
}

func (a *Adapter) RegisterRoutes(backend *authsim.Backend) error {
	a.backend = backend

	var router fiber.Router = a.app
	if backend.BasePath != "" {
		router = a.app.Group(backend.BasePath)
	}

	router.Post("/users/authenticate", a.authenticate)
	router.Post("/users/refresh-token", a.refresh)
	router.Post("/users/revoke-token", a.revoke)
	router.Get("/users", a.users)

	return nil
}
