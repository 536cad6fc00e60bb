package handlers

import (
	"github.com/gofiber/fiber/v2"

	"minimart/internal/authz"
	"minimart/internal/domain"
	applog "minimart/internal/log"
	"minimart/internal/services"
)

const authCookie = "auth_token"

// currentUser resolves the auth cookie, preferring the user a prior
// middleware already attached.
func currentUser(c *fiber.Ctx, auth *services.AuthService) *domain.User {
	if u, ok := c.Locals("user").(*domain.User); ok && u != nil {
		return u
	}
	u, err := auth.Resolve(c.Context(), c.Cookies(authCookie))
	if err != nil {
		applog.Error(c, "session.resolve.fail", err, nil)
		return nil
	}
	return u
}

// Require guards a route with the authorization gate. Both the anonymous and
// the wrong-role case land on the login page, matching the labs.
func Require(auth *services.AuthService, req authz.Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c, auth)
		if authz.Authorize(u, req) == authz.Deny {
			applog.Security(c, "access.denied", map[string]any{"path": c.Path()})
			return c.Redirect("/login")
		}
		c.Locals("user", u)
		return c.Next()
	}
}
