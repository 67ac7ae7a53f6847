package service

import (
	"context"
	"strings"

	"github.com/dukerupert/pantrypal/internal/apperr"
	"github.com/dukerupert/pantrypal/internal/grocery"
	"github.com/dukerupert/pantrypal/internal/model"
	"github.com/dukerupert/pantrypal/internal/store"
)

type ProductService struct {
	deps
}

// Search returns one page of the catalog filtered on product name.
func (s *ProductService) Search(ctx context.Context, req model.PageRequest) (model.Page[model.Product], error) {
	var page model.Page[model.Product]
	err := s.tx(ctx, "search products", func(st *store.Stores) error {
		items, total, err := st.Products.Search(ctx, req)
		if err != nil {
			return err
		}
		page = model.NewPage(items, req.Page, total)
		return nil
	})
	return page, err
}

// resolve maps an incoming product descriptor to a catalog row. A known id
// is used as is. Otherwise the row with the same name and category is
// reused, and a new row is created when the name is only known under other
// categories or not at all. A blank category is derived from the name.
func (s *ProductService) resolve(ctx context.Context, st *store.Stores, p model.Product) (model.Product, error) {
	if p.ID > 0 {
		found, err := st.Products.GetByID(ctx, p.ID)
		if err != nil {
			return model.Product{}, err
		}
		if found == nil {
			return model.Product{}, apperr.NotFound("Product was not found")
		}
		return *found, nil
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		return model.Product{}, apperr.Validation("Product name cannot be empty")
	}
	category := p.Category
	if category == "" {
		category = grocery.Categorize(name)
	}
	if !category.Valid() {
		return model.Product{}, apperr.Validation("Product category is invalid")
	}

	existing, err := st.Products.FindByName(ctx, name)
	if err != nil {
		return model.Product{}, err
	}
	for _, e := range existing {
		if e.Category == category {
			return e, nil
		}
	}

	created, err := st.Products.Create(ctx, name, category)
	if err != nil {
		return model.Product{}, err
	}
	return *created, nil
}
