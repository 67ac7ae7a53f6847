package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/pantrypal/internal/model"
)

type ShoppingListProductStore struct {
	db DBTX
}

func NewShoppingListProductStore(db DBTX) *ShoppingListProductStore {
	return &ShoppingListProductStore{db: db}
}

func scanShoppingListProduct(scanner interface{ Scan(...any) error }) (*model.ShoppingListProduct, error) {
	var lp model.ShoppingListProduct
	var purchased int
	err := scanner.Scan(
		&lp.ID, &lp.ShoppingListID, &lp.Quantity, &lp.Unit, &purchased,
		&lp.Product.ID, &lp.Product.Name, &lp.Product.Category,
	)
	if err != nil {
		return nil, err
	}
	lp.Purchased = purchased != 0
	return &lp, nil
}

const shoppingListProductSelect = `SELECT lp.id, lp.shopping_list_id, lp.quantity, lp.unit, lp.purchased,
	p.id, p.name, p.category
	FROM shopping_list_products lp JOIN products p ON p.id = lp.product_id`

var shoppingListProductSortColumns = map[string]string{
	"name":      "p.name",
	"category":  "p.category",
	"quantity":  "lp.quantity",
	"unit":      "lp.unit",
	"purchased": "lp.purchased",
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *ShoppingListProductStore) queryAll(ctx context.Context, query string, args ...any) ([]model.ShoppingListProduct, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shopping list products: %w", err)
	}
	defer rows.Close()

	var lines []model.ShoppingListProduct
	for rows.Next() {
		lp, err := scanShoppingListProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping list product: %w", err)
		}
		lines = append(lines, *lp)
	}
	return lines, rows.Err()
}

func (s *ShoppingListProductStore) GetByID(ctx context.Context, id int64) (*model.ShoppingListProduct, error) {
	row := s.db.QueryRowContext(ctx, shoppingListProductSelect+` WHERE lp.id = ?`, id)
	lp, err := scanShoppingListProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping list product: %w", err)
	}
	return lp, nil
}

func (s *ShoppingListProductStore) ListByList(ctx context.Context, listID int64) ([]model.ShoppingListProduct, error) {
	return s.queryAll(ctx, shoppingListProductSelect+` WHERE lp.shopping_list_id = ? ORDER BY lp.id ASC`, listID)
}

func (s *ShoppingListProductStore) Page(ctx context.Context, listID int64, req model.PageRequest) ([]model.ShoppingListProduct, int, error) {
	where := ` WHERE lp.shopping_list_id = ?`
	args := []any{listID}
	if req.Filter != "" {
		where += ` AND lower(p.name) LIKE ?`
		args = append(args, likePattern(req.Filter))
	}

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM shopping_list_products lp JOIN products p ON p.id = lp.product_id`+where,
		args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count shopping list products: %w", err)
	}

	lines, err := s.queryAll(ctx,
		shoppingListProductSelect+where+orderBy(req, shoppingListProductSortColumns, "lp.id")+limitOffset,
		append(args, pageArgs(req)...)...,
	)
	if err != nil {
		return nil, 0, err
	}
	return lines, total, nil
}

func (s *ShoppingListProductStore) InsertMany(ctx context.Context, lines []model.ShoppingListProduct) ([]model.ShoppingListProduct, error) {
	saved := make([]model.ShoppingListProduct, 0, len(lines))
	for _, lp := range lines {
		result, err := s.db.ExecContext(ctx,
			`INSERT INTO shopping_list_products (shopping_list_id, product_id, quantity, unit, purchased) VALUES (?, ?, ?, ?, ?)`,
			lp.ShoppingListID, lp.Product.ID, lp.Quantity, lp.Unit, boolInt(lp.Purchased),
		)
		if err != nil {
			return nil, fmt.Errorf("insert shopping list product: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		lp.ID = id
		saved = append(saved, lp)
	}
	return saved, nil
}

func (s *ShoppingListProductStore) Save(ctx context.Context, lp model.ShoppingListProduct) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE shopping_list_products SET product_id = ?, quantity = ?, unit = ?, purchased = ? WHERE id = ?`,
		lp.Product.ID, lp.Quantity, lp.Unit, boolInt(lp.Purchased), lp.ID,
	)
	if err != nil {
		return fmt.Errorf("update shopping list product: %w", err)
	}
	return nil
}

func (s *ShoppingListProductStore) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM shopping_list_products WHERE id IN (`+placeholders(len(ids))+`)`,
		int64Args(ids)...,
	)
	if err != nil {
		return fmt.Errorf("delete shopping list products: %w", err)
	}
	return nil
}
