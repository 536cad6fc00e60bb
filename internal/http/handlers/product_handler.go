package handlers

import (
	"github.com/gofiber/fiber/v2"

	"minimart/internal/authz"
	"minimart/internal/domain"
	"minimart/internal/log"
	"minimart/internal/services"
	"minimart/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Auth    *services.AuthService
}

// Index is the storefront root: anonymous callers go to the login page,
// admins to their panel, everyone else gets the catalog cheapest-first.
func (h *ProductHandler) Index(c *fiber.Ctx) error {
	u := currentUser(c, h.Auth)
	if authz.Authorize(u, authz.AnyAuthenticated()) == authz.Deny {
		return c.Redirect("/login")
	}
	if u.Role == domain.RoleAdmin {
		return c.Redirect("/admin")
	}
	products, err := h.Catalog.ListProducts(c.Context())
	if err != nil {
		log.Error(c, "products.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load products"})
	}
	c.Locals("user", u)
	return render(c, "index", fiber.Map{"Products": products})
}

func (h *ProductHandler) CreateForm(c *fiber.Ctx) error {
	return render(c, "create_product", fiber.Map{"Err": ""})
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	name, okName := validate.Name(c.FormValue("name"))
	price, okPrice := validate.Price(c.FormValue("price"))
	if !okName || !okPrice {
		return c.Status(fiber.StatusBadRequest).Render("create_product", fiber.Map{"Err": "Invalid name or price"})
	}
	p, err := h.Catalog.CreateProduct(c.Context(), name, price)
	if err != nil {
		log.Error(c, "products.create.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not create product"})
	}
	log.Audit(c, "products.create", map[string]any{"product_id": p.ID, "name": name})
	return c.Redirect("/", fiber.StatusFound)
}

// Search is public; an empty query lists the whole catalog.
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	q := validate.Query(c.Query("q"))
	products, err := h.Catalog.Search(c.Context(), q)
	if err != nil {
		log.Error(c, "products.search.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Search failed"})
	}
	return render(c, "search_results", fiber.Map{"Query": q, "Products": products})
}
