package catalog

import "github.com/agritech/agrimarket/internal/domain"

// ListView backs products/index.
type ListView struct {
	Products         []*domain.Product
	SelectedCategory string
	Categories       []domain.Category
}

// DetailView backs products/show.
type DetailView struct {
	Product *domain.Product
}

// FormView backs products/new and products/edit; Product is nil on the create form.
type FormView struct {
	Product    *domain.Product
	Categories []domain.Category
}

func NewListView(res *ListResult) ListView {
	return ListView{
		Products:         res.Products,
		SelectedCategory: res.Category,
		Categories:       domain.Categories,
	}
}

func NewDetailView(p *domain.Product) DetailView {
	return DetailView{Product: p}
}

func NewFormView(p *domain.Product) FormView {
	return FormView{Product: p, Categories: domain.Categories}
}
