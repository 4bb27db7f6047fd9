package storefront

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agritech/agrimarket/internal/account"
	"github.com/agritech/agrimarket/internal/domain"
	"github.com/agritech/agrimarket/internal/webserver"
)

type loginRequest struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type loginView struct {
	Email string
	Error string
}

type registerView struct {
	Form  account.RegisterRequest
	Error string
}

func (h *Handlers) registerAuthRoutes(srv *webserver.Server) {
	srv.GET("/register", h.registerPage)
	srv.POST("/register", h.register)
	srv.GET("/login", h.loginPage)
	srv.POST("/login", h.login)
	srv.POST("/logout", h.logout)
}

func (h *Handlers) registerPage(c echo.Context) error {
	return c.Render(http.StatusOK, "register", registerView{Form: account.RegisterRequest{Role: domain.RoleBuyer}})
}

func (h *Handlers) register(c echo.Context) error {
	var req account.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.Render(http.StatusBadRequest, "register", registerView{Error: "Unable to read the form"})
	}
	user, err := h.accounts.Register(c.Request().Context(), req)
	if err != nil {
		if domain.IsValidation(err) {
			req.Password = ""
			return c.Render(http.StatusBadRequest, "register", registerView{Form: req, Error: domain.MessageOf(err)})
		}
		return err
	}
	if err := webserver.Login(c, user); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, dashboardFor(user.Role))
}

func (h *Handlers) loginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login", loginView{})
}

func (h *Handlers) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.Render(http.StatusBadRequest, "login", loginView{Error: "Unable to read the form"})
	}
	if err := c.Validate(&req); err != nil {
		return c.Render(http.StatusBadRequest, "login", loginView{Email: req.Email, Error: "Email and password are required"})
	}
	user, err := h.accounts.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if domain.IsValidation(err) {
			return c.Render(http.StatusUnauthorized, "login", loginView{Email: req.Email, Error: "Invalid email or password"})
		}
		return err
	}
	if err := webserver.Login(c, user); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, dashboardFor(user.Role))
}

func (h *Handlers) logout(c echo.Context) error {
	if err := webserver.Logout(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/")
}

func dashboardFor(role string) string {
	if role == domain.RoleFarmer {
		return "/farmer/dashboard"
	}
	return "/buyer/dashboard"
}
