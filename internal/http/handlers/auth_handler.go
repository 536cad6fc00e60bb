package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"minimart/internal/domain"
	"minimart/internal/log"
	"minimart/internal/services"
	"minimart/internal/store"
	"minimart/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

// setAuthCookie hands the user's session token to the client. Only a
// client-side max-age bounds the session, as in the labs; the token itself
// stays valid server-side.
func setAuthCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     authCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   3600,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func homeFor(u *domain.User) string {
	if u.Role == domain.RoleAdmin {
		return "/admin"
	}
	return "/"
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	name := c.FormValue("username")
	pass := c.FormValue("password")

	u, err := h.Auth.Login(c.Context(), name, pass)
	if err != nil {
		if !errors.Is(err, services.ErrBadCreds) {
			log.Error(c, "auth.login.error", err, nil)
		}
		log.Security(c, "auth.login.fail", map[string]any{"username": name})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Invalid credentials"})
	}

	setAuthCookie(c, u.Token)
	log.Audit(c, "auth.login.success", map[string]any{"username": name})
	return c.Redirect(homeFor(u), fiber.StatusFound)
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	name, okName := validate.Name(c.FormValue("username"))
	age, okAge := validate.Age(c.FormValue("age"))
	pass := c.FormValue("password")
	if !okName || !okAge || pass == "" {
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{"Err": "Invalid input"})
	}

	u, err := h.Auth.Register(c.Context(), name, pass, age)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			log.Security(c, "auth.register.duplicate", map[string]any{"username": name})
			return render(c, "register", fiber.Map{"Err": "User already exists"})
		}
		log.Error(c, "auth.register.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not register"})
	}

	setAuthCookie(c, u.Token)
	log.Audit(c, "auth.register.success", map[string]any{"username": name, "user_id": u.ID})
	return c.Redirect("/", fiber.StatusFound)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", nil)
	return c.Redirect("/login")
}
