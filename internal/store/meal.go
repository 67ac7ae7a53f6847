package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/pantrypal/internal/model"
)

type MealStore struct {
	db DBTX
}

func NewMealStore(db DBTX) *MealStore {
	return &MealStore{db: db}
}

func scanMeal(scanner interface{ Scan(...any) error }) (*model.Meal, error) {
	var m model.Meal
	err := scanner.Scan(&m.ID, &m.Date, &m.GroupID, &m.UserID, &m.RecipeID, &m.RecipeName)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const mealSelect = `SELECT m.id, m.meal_date, m.group_id, m.user_id, m.recipe_id, r.name
	FROM meals m JOIN recipes r ON r.id = m.recipe_id`

func (s *MealStore) Create(ctx context.Context, date time.Time, groupID, userID, recipeID int64) (*model.Meal, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO meals (meal_date, group_id, user_id, recipe_id) VALUES (?, ?, ?, ?)`,
		date.UTC(), groupID, userID, recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert meal: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *MealStore) GetByID(ctx context.Context, id int64) (*model.Meal, error) {
	row := s.db.QueryRowContext(ctx, mealSelect+` WHERE m.id = ?`, id)
	m, err := scanMeal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meal: %w", err)
	}
	return m, nil
}

func (s *MealStore) Update(ctx context.Context, id int64, date time.Time, recipeID int64) (*model.Meal, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE meals SET meal_date = ?, recipe_id = ? WHERE id = ?`,
		date.UTC(), recipeID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update meal: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *MealStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM meals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	return nil
}

// ListForGroupsBetween returns up to limit meals of groupIDs scheduled
// within [after, before], earliest first.
func (s *MealStore) ListForGroupsBetween(ctx context.Context, groupIDs []int64, after, before time.Time, limit int) ([]model.Meal, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	args := int64Args(groupIDs)
	args = append(args, after.UTC(), before.UTC(), limit)

	rows, err := s.db.QueryContext(ctx,
		mealSelect+` WHERE m.group_id IN (`+placeholders(len(groupIDs))+`)
		 AND m.meal_date >= ? AND m.meal_date <= ?
		 ORDER BY m.meal_date ASC, m.id ASC
		 LIMIT ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	defer rows.Close()

	var meals []model.Meal
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meal: %w", err)
		}
		meals = append(meals, *m)
	}
	return meals, rows.Err()
}
