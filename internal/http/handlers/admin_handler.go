package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "minimart/internal/log"
	"minimart/internal/store"
	"minimart/internal/validate"
)

// AdminHandler serves the admin panel. Role enforcement lives in the route
// group's Require middleware, not here.
type AdminHandler struct {
	Users    store.UserStore
	Products store.ProductStore
}

// GET /admin
func (h *AdminHandler) Panel(c *fiber.Ctx) error {
	return h.renderPanel(c, "")
}

func (h *AdminHandler) renderPanel(c *fiber.Ctx, errMsg string) error {
	users, err := h.Users.List(c.Context())
	if err != nil {
		applog.Error(c, "admin.users.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load users"})
	}
	products, err := h.Products.List(c.Context())
	if err != nil {
		applog.Error(c, "admin.products.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load products"})
	}
	return render(c, "admin_panel", fiber.Map{"Users": users, "Products": products, "Err": errMsg})
}

// POST /admin/users/:id
// A missing id is a silent success: the panel redisplays either way.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	name, okName := validate.Name(c.FormValue("username"))
	age, okAge := validate.Age(c.FormValue("age"))
	if !okID || !okName || !okAge {
		return c.Status(fiber.StatusBadRequest).SendString("invalid input")
	}
	if err := h.Users.Update(c.Context(), id, name, age); err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			applog.Security(c, "admin.users.update.duplicate", map[string]any{"user_id": id, "name": name})
			return h.renderPanel(c, "User name already taken")
		}
		applog.Error(c, "admin.users.update.fail", err, map[string]any{"user_id": id})
		return c.Status(fiber.StatusInternalServerError).SendString("could not update user")
	}
	applog.Audit(c, "admin.users.update", map[string]any{"user_id": id})
	return c.Redirect("/admin", fiber.StatusSeeOther)
}

// POST /admin/users/:id/delete
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid id")
	}
	if err := h.Users.Delete(c.Context(), id); err != nil {
		applog.Error(c, "admin.users.delete.fail", err, map[string]any{"user_id": id})
		return c.Status(fiber.StatusInternalServerError).SendString("could not delete user")
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"user_id": id})
	return c.Redirect("/admin", fiber.StatusFound)
}

// POST /admin/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	name, okName := validate.Name(c.FormValue("name"))
	price, okPrice := validate.Price(c.FormValue("price"))
	if !okID || !okName || !okPrice {
		return c.Status(fiber.StatusBadRequest).SendString("invalid input")
	}
	if err := h.Products.Update(c.Context(), id, name, price); err != nil {
		applog.Error(c, "admin.products.update.fail", err, map[string]any{"product_id": id})
		return c.Status(fiber.StatusInternalServerError).SendString("could not update product")
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product_id": id})
	return c.Redirect("/admin", fiber.StatusSeeOther)
}

// POST /admin/products/:id/delete
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid id")
	}
	if err := h.Products.Delete(c.Context(), id); err != nil {
		applog.Error(c, "admin.products.delete.fail", err, map[string]any{"product_id": id})
		return c.Status(fiber.StatusInternalServerError).SendString("could not delete product")
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product_id": id})
	return c.Redirect("/admin", fiber.StatusFound)
}

// GET /admin/users/sorted
func (h *AdminHandler) SortedUsers(c *fiber.Ctx) error {
	users, err := h.Users.ListByName(c.Context())
	if err != nil {
		applog.Error(c, "admin.users.sorted.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load users"})
	}
	return render(c, "sorted_users", fiber.Map{"Users": users})
}

// GET /admin/users/count
func (h *AdminHandler) UserCount(c *fiber.Ctx) error {
	n, err := h.Users.Count(c.Context())
	if err != nil {
		applog.Error(c, "admin.users.count.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not count users"})
	}
	return render(c, "user_count", fiber.Map{"Count": n})
}
