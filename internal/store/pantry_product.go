package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/pantrypal/internal/model"
)

type PantryProductStore struct {
	db DBTX
}

func NewPantryProductStore(db DBTX) *PantryProductStore {
	return &PantryProductStore{db: db}
}

func scanPantryProduct(scanner interface{ Scan(...any) error }) (*model.PantryProduct, error) {
	var pp model.PantryProduct
	var purchased, expires sql.NullTime
	err := scanner.Scan(
		&pp.ID, &pp.PantryID, &pp.Quantity, &pp.Unit, &pp.Reserved,
		&purchased, &expires, &pp.Placement,
		&pp.Product.ID, &pp.Product.Name, &pp.Product.Category,
	)
	if err != nil {
		return nil, err
	}
	if purchased.Valid {
		pp.PurchaseDate = &purchased.Time
	}
	if expires.Valid {
		pp.ExpirationDate = &expires.Time
	}
	return &pp, nil
}

const pantryProductSelect = `SELECT pp.id, pp.pantry_id, pp.quantity, pp.unit, pp.reserved,
	pp.purchase_date, pp.expiration_date, pp.placement, p.id, p.name, p.category
	FROM pantry_products pp JOIN products p ON p.id = pp.product_id`

var pantryProductSortColumns = map[string]string{
	"name":            "p.name",
	"category":        "p.category",
	"quantity":        "pp.quantity",
	"reserved":        "pp.reserved",
	"unit":            "pp.unit",
	"purchase_date":   "pp.purchase_date",
	"expiration_date": "pp.expiration_date",
	"placement":       "pp.placement",
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func (s *PantryProductStore) queryAll(ctx context.Context, query string, args ...any) ([]model.PantryProduct, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pantry products: %w", err)
	}
	defer rows.Close()

	var lines []model.PantryProduct
	for rows.Next() {
		pp, err := scanPantryProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pantry product: %w", err)
		}
		lines = append(lines, *pp)
	}
	return lines, rows.Err()
}

func (s *PantryProductStore) GetByID(ctx context.Context, id int64) (*model.PantryProduct, error) {
	row := s.db.QueryRowContext(ctx, pantryProductSelect+` WHERE pp.id = ?`, id)
	pp, err := scanPantryProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pantry product: %w", err)
	}
	return pp, nil
}

// ListByPantry returns every line in pantryID in insertion order.
func (s *PantryProductStore) ListByPantry(ctx context.Context, pantryID int64) ([]model.PantryProduct, error) {
	return s.queryAll(ctx, pantryProductSelect+` WHERE pp.pantry_id = ? ORDER BY pp.id ASC`, pantryID)
}

// Page returns one page of lines in pantryID, filtered on product name.
func (s *PantryProductStore) Page(ctx context.Context, pantryID int64, req model.PageRequest) ([]model.PantryProduct, int, error) {
	where := ` WHERE pp.pantry_id = ?`
	args := []any{pantryID}
	if req.Filter != "" {
		where += ` AND lower(p.name) LIKE ?`
		args = append(args, likePattern(req.Filter))
	}

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pantry_products pp JOIN products p ON p.id = pp.product_id`+where,
		args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count pantry products: %w", err)
	}

	lines, err := s.queryAll(ctx,
		pantryProductSelect+where+orderBy(req, pantryProductSortColumns, "pp.id")+limitOffset,
		append(args, pageArgs(req)...)...,
	)
	if err != nil {
		return nil, 0, err
	}
	return lines, total, nil
}

// InsertMany saves a batch of new lines and returns them with
// their assigned ids.
func (s *PantryProductStore) InsertMany(ctx context.Context, lines []model.PantryProduct) ([]model.PantryProduct, error) {
	saved := make([]model.PantryProduct, 0, len(lines))
	for _, pp := range lines {
		result, err := s.db.ExecContext(ctx,
			`INSERT INTO pantry_products (pantry_id, product_id, quantity, unit, reserved, purchase_date, expiration_date, placement)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			pp.PantryID, pp.Product.ID, pp.Quantity, pp.Unit, pp.Reserved,
			nullTime(pp.PurchaseDate), nullTime(pp.ExpirationDate), pp.Placement,
		)
		if err != nil {
			return nil, fmt.Errorf("insert pantry product: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		pp.ID = id
		saved = append(saved, pp)
	}
	return saved, nil
}

// Save overwrites the mutable fields of an existing line.
func (s *PantryProductStore) Save(ctx context.Context, pp model.PantryProduct) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pantry_products
		 SET product_id = ?, quantity = ?, unit = ?, reserved = ?, purchase_date = ?, expiration_date = ?, placement = ?
		 WHERE id = ?`,
		pp.Product.ID, pp.Quantity, pp.Unit, pp.Reserved,
		nullTime(pp.PurchaseDate), nullTime(pp.ExpirationDate), pp.Placement, pp.ID,
	)
	if err != nil {
		return fmt.Errorf("update pantry product: %w", err)
	}
	return nil
}

func (s *PantryProductStore) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM pantry_products WHERE id IN (`+placeholders(len(ids))+`)`,
		int64Args(ids)...,
	)
	if err != nil {
		return fmt.Errorf("delete pantry products: %w", err)
	}
	return nil
}
