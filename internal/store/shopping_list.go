package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/pantrypal/internal/model"
)

type ShoppingListStore struct {
	db DBTX
}

func NewShoppingListStore(db DBTX) *ShoppingListStore {
	return &ShoppingListStore{db: db}
}

func scanShoppingList(scanner interface{ Scan(...any) error }) (*model.ShoppingList, error) {
	var l model.ShoppingList
	err := scanner.Scan(&l.ID, &l.GroupID, &l.Name, &l.CreatorID, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

const shoppingListCols = `id, group_id, name, creator_id, created_at`

func (s *ShoppingListStore) Create(ctx context.Context, groupID int64, name string, creatorID int64) (*model.ShoppingList, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (group_id, name, creator_id) VALUES (?, ?, ?)`,
		groupID, name, creatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert shopping list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ShoppingListStore) GetByID(ctx context.Context, id int64) (*model.ShoppingList, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+shoppingListCols+` FROM shopping_lists WHERE id = ?`, id)
	l, err := scanShoppingList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping list: %w", err)
	}
	return l, nil
}

func (s *ShoppingListStore) ListByGroups(ctx context.Context, groupIDs []int64) ([]model.ShoppingList, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shoppingListCols+` FROM shopping_lists WHERE group_id IN (`+placeholders(len(groupIDs))+`) ORDER BY created_at DESC, id DESC`,
		int64Args(groupIDs)...,
	)
	if err != nil {
		return nil, fmt.Errorf("list shopping lists: %w", err)
	}
	defer rows.Close()

	var lists []model.ShoppingList
	for rows.Next() {
		l, err := scanShoppingList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

func (s *ShoppingListStore) Update(ctx context.Context, id int64, name string) (*model.ShoppingList, error) {
	_, err := s.db.ExecContext(ctx, `UPDATE shopping_lists SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("update shopping list: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ShoppingListStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM shopping_lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shopping list: %w", err)
	}
	return nil
}
