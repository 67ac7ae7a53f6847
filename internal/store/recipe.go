package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/pantrypal/internal/model"
)

type RecipeStore struct {
	db DBTX
}

func NewRecipeStore(db DBTX) *RecipeStore {
	return &RecipeStore{db: db}
}

func scanRecipe(scanner interface{ Scan(...any) error }) (*model.Recipe, error) {
	var r model.Recipe
	var hasImage int
	err := scanner.Scan(
		&r.ID, &r.Name, &r.Preparation, &r.PreparationTime, &r.MealType,
		&r.Cuisine, &r.Portions, &r.CreatorID, &hasImage, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.HasImage = hasImage != 0
	return &r, nil
}

const recipeCols = `id, name, preparation, preparation_time, meal_type, cuisine, portions, creator_id,
	image IS NOT NULL, created_at`

var recipeSortColumns = map[string]string{
	"name":             "name",
	"preparation_time": "preparation_time",
	"meal_type":        "meal_type",
	"cuisine":          "cuisine",
	"portions":         "portions",
	"created_at":       "created_at",
}

// Create inserts r and its ingredient lines. Ingredient products must
// already exist in the catalog.
func (s *RecipeStore) Create(ctx context.Context, r model.Recipe) (*model.Recipe, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO recipes (name, preparation, preparation_time, meal_type, cuisine, portions, creator_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Name, r.Preparation, r.PreparationTime, r.MealType, r.Cuisine, r.Portions, r.CreatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	if err := s.insertProducts(ctx, id, r.Products); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *RecipeStore) insertProducts(ctx context.Context, recipeID int64, products []model.RecipeProduct) error {
	for i, rp := range products {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO recipe_products (recipe_id, product_id, quantity, unit, position) VALUES (?, ?, ?, ?, ?)`,
			recipeID, rp.Product.ID, rp.Quantity, rp.Unit, i,
		)
		if err != nil {
			return fmt.Errorf("insert recipe product: %w", err)
		}
	}
	return nil
}

// Update overwrites r's fields and replaces its ingredient lines.
func (s *RecipeStore) Update(ctx context.Context, r model.Recipe) (*model.Recipe, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE recipes SET name = ?, preparation = ?, preparation_time = ?, meal_type = ?, cuisine = ?, portions = ?
		 WHERE id = ?`,
		r.Name, r.Preparation, r.PreparationTime, r.MealType, r.Cuisine, r.Portions, r.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM recipe_products WHERE recipe_id = ?`, r.ID); err != nil {
		return nil, fmt.Errorf("clear recipe products: %w", err)
	}
	if err := s.insertProducts(ctx, r.ID, r.Products); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, r.ID)
}

// GetByID returns the recipe with its ingredient lines in recipe order.
func (s *RecipeStore) GetByID(ctx context.Context, id int64) (*model.Recipe, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recipeCols+` FROM recipes WHERE id = ?`, id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	r.Products, err = s.ListProducts(ctx, id)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RecipeStore) ListProducts(ctx context.Context, recipeID int64) ([]model.RecipeProduct, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rp.id, rp.recipe_id, rp.quantity, rp.unit, p.id, p.name, p.category
		 FROM recipe_products rp JOIN products p ON p.id = rp.product_id
		 WHERE rp.recipe_id = ?
		 ORDER BY rp.position ASC, rp.id ASC`,
		recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list recipe products: %w", err)
	}
	defer rows.Close()

	products := []model.RecipeProduct{}
	for rows.Next() {
		var rp model.RecipeProduct
		err := rows.Scan(&rp.ID, &rp.RecipeID, &rp.Quantity, &rp.Unit, &rp.Product.ID, &rp.Product.Name, &rp.Product.Category)
		if err != nil {
			return nil, fmt.Errorf("scan recipe product: %w", err)
		}
		products = append(products, rp)
	}
	return products, rows.Err()
}

// Page returns one page of recipes whose name contains the filter. When
// creatorID is non-nil only that user's recipes are listed. Ingredient
// lines are not loaded.
func (s *RecipeStore) Page(ctx context.Context, req model.PageRequest, creatorID *int64) ([]model.Recipe, int, error) {
	where := ` WHERE lower(name) LIKE ?`
	args := []any{likePattern(req.Filter)}
	if creatorID != nil {
		where += ` AND creator_id = ?`
		args = append(args, *creatorID)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recipeCols+` FROM recipes`+where+orderBy(req, recipeSortColumns, "id")+limitOffset,
		append(args, pageArgs(req)...)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, total, rows.Err()
}

func (s *RecipeStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

// SetImage stores an already-compressed image. A nil image clears it.
func (s *RecipeStore) SetImage(ctx context.Context, id int64, image []byte) error {
	var v any
	if len(image) > 0 {
		v = image
	}
	_, err := s.db.ExecContext(ctx, `UPDATE recipes SET image = ? WHERE id = ?`, v, id)
	if err != nil {
		return fmt.Errorf("set recipe image: %w", err)
	}
	return nil
}

// Image returns the stored compressed image, or nil when there is none.
func (s *RecipeStore) Image(ctx context.Context, id int64) ([]byte, error) {
	var image []byte
	err := s.db.QueryRowContext(ctx, `SELECT image FROM recipes WHERE id = ?`, id).Scan(&image)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe image: %w", err)
	}
	if len(image) == 0 {
		return nil, nil
	}
	return image, nil
}
