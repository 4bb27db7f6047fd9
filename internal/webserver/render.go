package webserver

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/agritech/agrimarket/internal/domain"
)

const layoutFile = "layout.html"

// Page is what every template receives.
type Page struct {
	Viewer domain.Viewer
	Data   interface{}
}

// Renderer executes pages parsed from an fs.FS. Each page file is parsed together with
// layout.html, which defines the shared "header" and "footer" blocks.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"price": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"eq_category": func(a domain.Category, b string) bool {
		return strings.EqualFold(a.String(), b)
	},
	"date": func(v time.Time) string {
		return v.Format("02 Jan 2006")
	},
}

func NewRenderer(fsys fs.FS) (*Renderer, error) {
	r := &Renderer{pages: map[string]*template.Template{}}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".html" || path.Base(p) == layoutFile {
			return nil
		}
		tpl, err := template.New(path.Base(p)).Funcs(funcs).ParseFS(fsys, layoutFile, p)
		if err != nil {
			return errors.Wrapf(err, "parse template %s", p)
		}
		r.pages[strings.TrimSuffix(p, ".html")] = tpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Render executes the named page ("products/index"). Data that is not already a Page is
// wrapped with the current viewer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tpl, ok := r.pages[name]
	if !ok {
		return errors.Errorf("template %s not found", name)
	}
	page, ok := data.(Page)
	if !ok {
		page = Page{Viewer: GetViewer(c), Data: data}
	}
	return tpl.ExecuteTemplate(w, path.Base(name)+".html", page)
}
