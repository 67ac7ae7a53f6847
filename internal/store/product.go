package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/pantrypal/internal/model"
)

type ProductStore struct {
	db DBTX
}

func NewProductStore(db DBTX) *ProductStore {
	return &ProductStore{db: db}
}

const productCols = `id, name, category`

var productSortColumns = map[string]string{
	"name":     "name",
	"category": "category",
}

func (s *ProductStore) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	err := s.db.QueryRowContext(ctx, `SELECT `+productCols+` FROM products WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Category)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// FindByName returns every catalog row named name, one per category.
func (s *ProductStore) FindByName(ctx context.Context, name string) ([]model.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productCols+` FROM products WHERE name = ? ORDER BY id ASC`, name)
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *ProductStore) Create(ctx context.Context, name string, category model.Category) (*model.Product, error) {
	result, err := s.db.ExecContext(ctx, `INSERT INTO products (name, category) VALUES (?, ?)`, name, category)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &model.Product{ID: id, Name: name, Category: category}, nil
}

// Search returns one page of catalog products whose name contains the
// request filter, and the total number of matches.
func (s *ProductStore) Search(ctx context.Context, req model.PageRequest) ([]model.Product, int, error) {
	pattern := likePattern(req.Filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE lower(name) LIKE ?`, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	args := append([]any{pattern}, pageArgs(req)...)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productCols+` FROM products WHERE lower(name) LIKE ?`+orderBy(req, productSortColumns, "id")+limitOffset,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}
