package catalog

import (
	"context"
	"io"

	"github.com/agritech/agrimarket/internal/domain"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ProductCSV is one row of a bulk import file.
type ProductCSV struct {
	Name        string `csv:"name"`
	Category    string `csv:"category"`
	Price       string `csv:"price"`
	IsOrganic   string `csv:"is_organic"`
	Description string `csv:"description"`
}

// ImportResult counts what an import did.
type ImportResult struct {
	Created int
	Skipped int
}

// Import creates one product per CSV row through the normal create workflow.
// Rows that fail validation are logged and skipped.
func (s *Service) Import(ctx context.Context, viewer domain.Viewer, r io.Reader) (*ImportResult, error) {
	var rows []*ProductCSV
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.Wrap(err, "parse product csv")
	}

	res := &ImportResult{}
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return res, errors.WithStack(err)
		}
		form := ProductForm{
			Name:        &row.Name,
			Description: &row.Description,
			Category:    &row.Category,
			Price:       &row.Price,
			IsOrganic:   &row.IsOrganic,
		}
		if _, err := s.Create(ctx, viewer, form, nil); err != nil {
			if domain.IsValidation(err) {
				zap.L().Warn("skipping csv row", zap.Int("row", i+2), zap.String("name", row.Name), zap.Error(err))
				res.Skipped++
				continue
			}
			return res, err
		}
		res.Created++
	}
	return res, nil
}
