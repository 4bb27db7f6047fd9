package storefront

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agritech/agrimarket/config"
	"github.com/agritech/agrimarket/internal/account"
	"github.com/agritech/agrimarket/internal/catalog"
	"github.com/agritech/agrimarket/internal/dbtest"
	"github.com/agritech/agrimarket/internal/domain"
	"github.com/agritech/agrimarket/internal/media"
	"github.com/agritech/agrimarket/internal/payment"
	"github.com/agritech/agrimarket/internal/webserver"
	"github.com/agritech/agrimarket/web"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

type testSite struct {
	t       *testing.T
	srv     *webserver.Server
	repo    *catalog.GormProductRepository
	upload  string
	cookies []*http.Cookie
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	cfg := config.DefaultAppConfig()
	cfg.System.Workdir = t.TempDir()

	db := dbtest.Open(t)
	repo := catalog.NewGormProductRepository(db)
	store := media.NewFileStore(cfg.GetUploadDir(), cfg.Upload.MaxSize)
	h := NewHandlers(catalog.NewService(repo, store), account.NewService(db), payment.NewService(db, repo))

	srv, err := webserver.NewServer(cfg, web.Templates())
	require.NoError(t, err)
	h.Register(srv)
	return &testSite{t: t, srv: srv, repo: repo, upload: cfg.GetUploadDir()}
}

func (s *testSite) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.srv.Echo().ServeHTTP(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		s.cookies = cookies
	}
	return rec
}

func (s *testSite) get(target string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (s *testSite) postForm(target string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *testSite) postMultipart(target string, fields map[string]string, fileName string, file []byte) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(s.t, w.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("image", fileName)
		require.NoError(s.t, err)
		_, err = fw.Write(file)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, w.Close())
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.do(req)
}

func (s *testSite) products() []*domain.Product {
	products, err := s.repo.List(context.Background(), catalog.ProductFilter{})
	require.NoError(s.t, err)
	return products
}

func TestCreateProductEndToEnd(t *testing.T) {
	site := newTestSite(t)

	rec := site.postMultipart("/products", map[string]string{
		"name":      "Tomatoes",
		"category":  "Vegetables",
		"price":     "3.50",
		"isOrganic": "on",
	}, "", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/products", rec.Header().Get("Location"))

	products := site.products()
	require.Len(t, products, 1)
	p := products[0]
	assert.Equal(t, "Tomatoes", p.Name)
	assert.Equal(t, domain.CategoryVegetables, p.Category)
	assert.Equal(t, 3.5, p.Price)
	assert.True(t, p.IsOrganic)
	assert.Nil(t, p.Image)

	rec = site.get("/products?category=vegetables")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tomatoes")
	assert.Contains(t, rec.Body.String(), "3.50")

	rec = site.get("/products?category=fruits")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Tomatoes")
}

func TestCreateProductWithImage(t *testing.T) {
	site := newTestSite(t)

	rec := site.postMultipart("/products", map[string]string{
		"name": "Mangoes", "category": "fruits", "price": "8",
	}, "mango photo.png", pngHeader)
	require.Equal(t, http.StatusFound, rec.Code)

	products := site.products()
	require.Len(t, products, 1)
	img := products[0].ImagePath()
	require.True(t, strings.HasPrefix(img, "/uploads/"))
	assert.True(t, strings.HasSuffix(img, "-mango_photo.png"))

	_, err := os.Stat(filepath.Join(site.upload, strings.TrimPrefix(img, "/uploads/")))
	require.NoError(t, err)

	rec = site.get(img)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateProductRejectsNonImage(t *testing.T) {
	site := newTestSite(t)

	rec := site.postMultipart("/products", map[string]string{
		"name": "Mangoes", "category": "fruits",
	}, "notes.txt", []byte("plain text"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), webserver.MsgInternal)
	assert.Empty(t, site.products())
}

func TestShowProduct(t *testing.T) {
	site := newTestSite(t)
	p := &domain.Product{Name: "Basmati", Category: domain.CategoryGrains, Price: 2, Description: "Aged <b>rice</b>"}
	require.NoError(t, site.repo.Create(context.Background(), p))

	rec := site.get("/products/" + itoa(p.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Basmati")

	rec = site.get("/products/" + itoa(p.ID) + "/edit")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="grains" selected`)

	for _, target := range []string{"/products/999", "/products/abc", "/products/999/edit"} {
		rec = site.get(target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Contains(t, rec.Body.String(), webserver.MsgNotFound, target)
	}
}

func TestUpdateProduct(t *testing.T) {
	site := newTestSite(t)
	p := &domain.Product{Name: "Apples", Category: domain.CategoryFruits, Price: 2, IsOrganic: true}
	require.NoError(t, site.repo.Create(context.Background(), p))

	rec := site.postMultipart("/products/"+itoa(p.ID), map[string]string{
		"name": "Green apples", "category": "fruits", "price": "2.75",
	}, "", nil)
	require.Equal(t, http.StatusFound, rec.Code)

	got, err := site.repo.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Green apples", got.Name)
	assert.Equal(t, 2.75, got.Price)
	assert.False(t, got.IsOrganic)

	rec = site.postMultipart("/products/999", map[string]string{"name": "x"}, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProductWithMethodOverride(t *testing.T) {
	site := newTestSite(t)
	p := &domain.Product{Name: "Chili", Category: domain.CategorySpices}
	require.NoError(t, site.repo.Create(context.Background(), p))

	rec := site.postForm("/products/"+itoa(p.ID), url.Values{"_method": {"DELETE"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Empty(t, site.products())

	rec = site.postForm("/products/"+itoa(p.ID), url.Values{"_method": {"DELETE"}})
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestRoleGates(t *testing.T) {
	site := newTestSite(t)

	rec := site.get("/farmer/dashboard")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = site.postForm("/register", url.Values{
		"name": {"Mei"}, "email": {"mei@example.com"}, "password": {"secret1"}, "role": {"buyer"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/buyer/dashboard", rec.Header().Get("Location"))

	rec = site.get("/farmer/dashboard")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = site.get("/buyer/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mei")

	rec = site.postForm("/logout", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	rec = site.get("/buyer/dashboard")
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestLogin(t *testing.T) {
	site := newTestSite(t)
	rec := site.postForm("/register", url.Values{
		"name": {"Ravi"}, "email": {"ravi@example.com"}, "password": {"secret1"}, "role": {"farmer"}, "location": {"Nashik"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	site.cookies = nil

	rec = site.postForm("/login", url.Values{"email": {"ravi@example.com"}, "password": {"wrong!"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")

	rec = site.postForm("/login", url.Values{"email": {"ravi@example.com"}, "password": {"secret1"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/farmer/dashboard", rec.Header().Get("Location"))

	// products created by a logged-in farmer belong to them
	rec = site.postMultipart("/products", map[string]string{"name": "Onions", "category": "vegetables"}, "", nil)
	require.Equal(t, http.StatusFound, rec.Code)

	rec = site.get("/farmer/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Onions")
	assert.Contains(t, rec.Body.String(), "Nashik")
}

func TestCheckout(t *testing.T) {
	site := newTestSite(t)
	p := &domain.Product{Name: "Saffron", Category: domain.CategorySpices, Price: 12}
	require.NoError(t, site.repo.Create(context.Background(), p))

	rec := site.postForm("/register", url.Values{
		"name": {"Mei"}, "email": {"mei@example.com"}, "password": {"secret1"}, "role": {"buyer"},
	})
	require.Equal(t, http.StatusFound, rec.Code)

	rec = site.get("/payment/checkout/" + itoa(p.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "12.00")

	rec = site.postForm("/payment/checkout/"+itoa(p.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "PAY-")

	rec = site.get("/buyer/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Saffron")

	rec = site.postForm("/payment/checkout/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterRejectsOverlongFields(t *testing.T) {
	site := newTestSite(t)

	rec := site.postForm("/register", url.Values{
		"name": {strings.Repeat("n", 300)}, "email": {"long@example.com"}, "password": {"secret1"}, "role": {"buyer"},
		"phone": {strings.Repeat("9", 80)},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Name is required and must be at most 200 characters")

	rec = site.postForm("/register", url.Values{
		"name": {"Mei"}, "email": {"long@example.com"}, "password": {"secret1"}, "role": {"buyer"},
		"phone": {strings.Repeat("9", 80)},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Phone must be at most 32 characters")

	rec = site.get("/buyer/dashboard")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestUpdateProductRejectsOversizedImage(t *testing.T) {
	site := newTestSite(t)
	p := &domain.Product{Name: "Apples", Category: domain.CategoryFruits, Price: 2}
	require.NoError(t, site.repo.Create(context.Background(), p))

	huge := make([]byte, 5*1024*1024+1)
	copy(huge, pngHeader)
	rec := site.postMultipart("/products/"+itoa(p.ID), map[string]string{
		"name": "Green apples", "category": "vegetables", "price": "9",
	}, "huge.png", huge)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	got, err := site.repo.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Apples", got.Name)
	assert.Equal(t, domain.CategoryFruits, got.Category)
	assert.Equal(t, 2.0, got.Price)
	assert.Nil(t, got.Image)

	entries, err := os.ReadDir(site.upload)
	if err == nil {
		assert.Empty(t, entries)
	}
}
