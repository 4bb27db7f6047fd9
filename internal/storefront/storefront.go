package storefront

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agritech/agrimarket/internal/account"
	"github.com/agritech/agrimarket/internal/catalog"
	"github.com/agritech/agrimarket/internal/domain"
	"github.com/agritech/agrimarket/internal/payment"
	"github.com/agritech/agrimarket/internal/webserver"
)

// Handlers serves the HTML storefront.
type Handlers struct {
	catalog  *catalog.Service
	accounts *account.Service
	payments *payment.Service
}

func NewHandlers(catalogSvc *catalog.Service, accounts *account.Service, payments *payment.Service) *Handlers {
	return &Handlers{catalog: catalogSvc, accounts: accounts, payments: payments}
}

// Register mounts every storefront route on the server.
func (h *Handlers) Register(srv *webserver.Server) {
	srv.GET("/", h.home)

	h.registerAuthRoutes(srv)
	h.registerProductRoutes(srv)

	farmerOnly := webserver.RequireRole(domain.RoleFarmer)
	buyerOnly := webserver.RequireRole(domain.RoleBuyer)

	srv.GET("/farmer/dashboard", h.farmerDashboard, farmerOnly)
	srv.GET("/buyer/marketplace", h.buyerMarketplace, buyerOnly)
	srv.GET("/buyer/dashboard", h.buyerDashboard, buyerOnly)
	srv.GET("/payment/checkout/:id", h.checkoutPage, buyerOnly)
	srv.POST("/payment/checkout/:id", h.checkout, buyerOnly)
}

func (h *Handlers) home(c echo.Context) error {
	return c.Render(http.StatusOK, "home", nil)
}
