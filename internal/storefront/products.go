package storefront

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/agritech/agrimarket/internal/catalog"
	"github.com/agritech/agrimarket/internal/domain"
	"github.com/agritech/agrimarket/internal/media"
	"github.com/agritech/agrimarket/internal/webserver"
)

func (h *Handlers) registerProductRoutes(srv *webserver.Server) {
	srv.GET("/products", h.listProducts)
	srv.GET("/products/new", h.newProduct)
	srv.GET("/products/:id", h.showProduct)
	srv.GET("/products/:id/edit", h.editProduct)
	srv.POST("/products", h.createProduct)
	srv.POST("/products/:id", h.updateProduct)
	srv.DELETE("/products/:id", h.deleteProduct)
}

func (h *Handlers) listProducts(c echo.Context) error {
	res, err := h.catalog.List(c.Request().Context(), webserver.GetViewer(c), c.QueryParam("category"))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "products/index", catalog.NewListView(res))
}

func (h *Handlers) newProduct(c echo.Context) error {
	return c.Render(http.StatusOK, "products/new", catalog.NewFormView(nil))
}

func (h *Handlers) showProduct(c echo.Context) error {
	id, err := catalog.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	p, err := h.catalog.Detail(c.Request().Context(), webserver.GetViewer(c), id)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "products/show", catalog.NewDetailView(p))
}

func (h *Handlers) editProduct(c echo.Context) error {
	id, err := catalog.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	p, err := h.catalog.Detail(c.Request().Context(), webserver.GetViewer(c), id)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "products/edit", catalog.NewFormView(p))
}

func (h *Handlers) createProduct(c echo.Context) error {
	form, err := bindProductForm(c)
	if err != nil {
		return err
	}
	up, closeUpload, err := formUpload(c)
	if err != nil {
		return err
	}
	defer closeUpload()

	if _, err := h.catalog.Create(c.Request().Context(), webserver.GetViewer(c), form, up); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/products")
}

func (h *Handlers) updateProduct(c echo.Context) error {
	id, err := catalog.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	form, err := bindProductForm(c)
	if err != nil {
		return err
	}
	up, closeUpload, err := formUpload(c)
	if err != nil {
		return err
	}
	defer closeUpload()

	if _, err := h.catalog.Update(c.Request().Context(), webserver.GetViewer(c), id, form, up); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/products")
}

func (h *Handlers) deleteProduct(c echo.Context) error {
	id, err := catalog.ParseID(c.Param("id"))
	if err != nil {
		// nothing can match a malformed id
		return c.Redirect(http.StatusFound, "/products")
	}
	if err := h.catalog.Delete(c.Request().Context(), webserver.GetViewer(c), id); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/products")
}

// bindProductForm keeps absent fields nil so updates leave them untouched.
func bindProductForm(c echo.Context) (catalog.ProductForm, error) {
	params, err := c.FormParams()
	if err != nil {
		return catalog.ProductForm{}, domain.ValidationError("product.form", "Malformed form data")
	}
	field := func(key string) *string {
		vals, ok := params[key]
		if !ok || len(vals) == 0 {
			return nil
		}
		v := vals[0]
		return &v
	}
	return catalog.ProductForm{
		Name:        field("name"),
		Description: field("description"),
		Category:    field("category"),
		Price:       field("price"),
		IsOrganic:   field("isOrganic"),
		FarmerID:    field("farmerId"),
	}, nil
}

// formUpload returns the optional "image" file. The returned func closes it.
func formUpload(c echo.Context) (*media.Upload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, domain.ValidationError("product.image", "Malformed upload")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, domain.StorageError("product.image", err)
	}
	up := &media.Upload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}
	return up, func() { _ = f.Close() }, nil
}
