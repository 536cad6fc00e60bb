package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"minimart/internal/authz"
	"minimart/internal/domain"
	"minimart/internal/http/handlers"
	"minimart/internal/services"
	"minimart/internal/store"
	"minimart/internal/store/memstore"
)

// newTestApp wires the full route table over an in-memory store, the same
// shape main sets up minus the rate limiters.
func newTestApp(t *testing.T) (*fiber.App, store.Store) {
	t.Helper()

	st := memstore.New()
	if err := store.EnsureDefaultAdmin(context.Background(), st.Users()); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}

	authSvc := services.NewAuthService(st.Users())
	deps := handlers.NewDeps(st, authSvc)

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Cookies("auth_token"); tok != "" {
			if u, err := authSvc.Resolve(c.Context(), tok); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})

	app.Get("/", deps.ProductHandler.Index)
	app.Get("/search", deps.ProductHandler.Search)
	app.Get("/login", deps.AuthHandler.LoginForm)
	app.Post("/login", deps.AuthHandler.Login)
	app.Get("/register", deps.AuthHandler.RegisterForm)
	app.Post("/register", deps.AuthHandler.Register)
	app.Post("/logout", deps.AuthHandler.Logout)

	userOnly := handlers.Require(authSvc, authz.ExactRole(domain.RoleUser))
	app.Get("/create_product", userOnly, deps.ProductHandler.CreateForm)
	app.Post("/create_product", userOnly, deps.ProductHandler.Create)

	admin := app.Group("/admin", handlers.Require(authSvc, authz.ExactRole(domain.RoleAdmin)))
	admin.Get("/", deps.AdminHandler.Panel)
	admin.Get("/users/sorted", deps.AdminHandler.SortedUsers)
	admin.Get("/users/count", deps.AdminHandler.UserCount)
	admin.Post("/users/:id", deps.AdminHandler.UpdateUser)
	admin.Post("/users/:id/delete", deps.AdminHandler.DeleteUser)
	admin.Post("/products/:id", deps.AdminHandler.UpdateProduct)
	admin.Post("/products/:id/delete", deps.AdminHandler.DeleteProduct)

	return app, st
}

func mustCreateUser(t *testing.T, st store.Store, name, password string, age int, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Age: age, Password: password, Role: role}
	if err := st.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
