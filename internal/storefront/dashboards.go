package storefront

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agritech/agrimarket/internal/catalog"
	"github.com/agritech/agrimarket/internal/domain"
	"github.com/agritech/agrimarket/internal/payment"
	"github.com/agritech/agrimarket/internal/webserver"
)

type farmerDashboardView struct {
	Products []*domain.Product
}

type buyerDashboardView struct {
	Orders []payment.Order
}

type checkoutView struct {
	Product *domain.Product
	Payment *domain.Payment
}

func (h *Handlers) farmerDashboard(c echo.Context) error {
	products, err := h.catalog.FarmerProducts(c.Request().Context(), webserver.GetViewer(c))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "farmer/dashboard", farmerDashboardView{Products: products})
}

func (h *Handlers) buyerMarketplace(c echo.Context) error {
	res, err := h.catalog.List(c.Request().Context(), webserver.GetViewer(c), c.QueryParam("category"))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "buyer/marketplace", catalog.NewListView(res))
}

func (h *Handlers) buyerDashboard(c echo.Context) error {
	orders, err := h.payments.Recent(c.Request().Context(), webserver.GetViewer(c))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "buyer/dashboard", buyerDashboardView{Orders: orders})
}

func (h *Handlers) checkoutPage(c echo.Context) error {
	id, err := catalog.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	p, err := h.catalog.Detail(c.Request().Context(), webserver.GetViewer(c), id)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "payment/checkout", checkoutView{Product: p})
}

func (h *Handlers) checkout(c echo.Context) error {
	id, err := catalog.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	pay, p, err := h.payments.Checkout(c.Request().Context(), webserver.GetViewer(c), id)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "payment/success", checkoutView{Product: p, Payment: pay})
}
