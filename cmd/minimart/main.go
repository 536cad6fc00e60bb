package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"minimart/internal/authz"
	"minimart/internal/config"
	"minimart/internal/domain"
	"minimart/internal/http/handlers"
	applog "minimart/internal/log"
	"minimart/internal/services"
	"minimart/internal/store"
	"minimart/internal/store/memstore"
	"minimart/internal/store/mongostore"
	"minimart/internal/store/pgstore"
	"minimart/internal/store/sqlitestore"
)

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		return memstore.New(), nil
	case "sqlite":
		return sqlitestore.Open(cfg.SQLiteDSN)
	case "postgres":
		return pgstore.Open(ctx, cfg.PostgresDSN)
	case "mongo":
		return mongostore.Open(ctx, mongostore.Config{URI: cfg.MongoURI, Database: cfg.MongoDB})
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := store.EnsureDefaultAdmin(ctx, st.Users()); err != nil {
		log.Fatal(err)
	}

	authSvc := services.NewAuthService(st.Users())
	deps := handlers.NewDeps(st, authSvc)

	engine := html.New("./web/templates", ".html")
	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	// Attach user to context if logged in (for templates/headers)
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Cookies("auth_token"); tok != "" {
			if u, err := authSvc.Resolve(c.Context(), tok); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{Max: 120, Expiration: time.Minute}))

	// ---------- Routes ----------
	authH := deps.AuthHandler
	prodH := deps.ProductHandler
	adminH := deps.AdminHandler

	app.Get("/", prodH.Index)
	app.Get("/search", limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}), prodH.Search)

	app.Get("/login", authH.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), authH.Login)
	app.Get("/register", authH.RegisterForm)
	app.Post("/register", authH.Register)
	app.Post("/logout", authH.Logout)

	// Product creation is user-only in the lab contract; admins manage, users sell.
	userOnly := handlers.Require(authSvc, authz.ExactRole(domain.RoleUser))
	app.Get("/create_product", userOnly, prodH.CreateForm)
	app.Post("/create_product", userOnly, prodH.Create)

	admin := app.Group("/admin", handlers.Require(authSvc, authz.ExactRole(domain.RoleAdmin)))
	admin.Get("/", adminH.Panel)
	admin.Get("/users/sorted", adminH.SortedUsers)
	admin.Get("/users/count", adminH.UserCount)
	admin.Post("/users/:id", adminH.UpdateUser)
	admin.Post("/users/:id/delete", adminH.DeleteUser)
	admin.Post("/products/:id", adminH.UpdateProduct)
	admin.Post("/products/:id/delete", adminH.DeleteProduct)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
