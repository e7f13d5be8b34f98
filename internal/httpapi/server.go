// Package httpapi wires the fiber application: routes, the authorization
// middleware, and the uniform error envelope.
package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vidtube/backend/internal/auth"
)

// ServerDeps collects everything the HTTP surface needs.
type ServerDeps struct {
	Sessions   SessionManager
	Users      UserStore
	Tokens     AccessTokenValidator
	Principals PrincipalLoader
	Cookies    CookieConfig
	Logger     auth.Logger
	Controller *Controller
}

// NewApp builds the fiber application with all user routes registered under
// /api/v1/users.
func NewApp(deps ServerDeps) *fiber.App {
	logger := deps.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	app := fiber.New(fiber.Config{
		AppName:      "vidtube",
		ErrorHandler: NewErrorHandler(logger),
	})

	controller := deps.Controller
	if controller == nil {
		controller = NewController(deps.Sessions, deps.Users, deps.Cookies, WithLogger(logger))
	}

	requireAuth := RequireAuth(deps.Tokens, deps.Principals)

	users := app.Group("/api/v1/users")
	users.Post("/register", controller.Register)
	users.Post("/login", controller.Login)
	users.Post("/refresh-token", controller.Refresh)

	users.Get("/logout", requireAuth, controller.Logout)
	users.Get("/current-user", requireAuth, controller.CurrentUser)
	users.Patch("/change-password", requireAuth, controller.ChangePassword)
	users.Patch("/update-account-details", requireAuth, controller.UpdateAccount)
	users.Patch("/update-avatar", requireAuth, controller.UpdateAvatar)
	users.Patch("/update-cover-image", requireAuth, controller.UpdateCoverImage)

	return app
}
