package handlers

import (
	"minimart/internal/services"
	"minimart/internal/store"
)

type Deps struct {
	AuthHandler    *AuthHandler
	ProductHandler *ProductHandler
	AdminHandler   *AdminHandler
}

func NewDeps(st store.Store, auth *services.AuthService) *Deps {
	catalogSvc := services.NewCatalogService(st.Products())
	return &Deps{
		AuthHandler:    &AuthHandler{Auth: auth},
		ProductHandler: &ProductHandler{Catalog: catalogSvc, Auth: auth},
		AdminHandler:   &AdminHandler{Users: st.Users(), Products: st.Products()},
	}
}
