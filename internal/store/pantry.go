package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/pantrypal/internal/model"
)

type PantryStore struct {
	db DBTX
}

func NewPantryStore(db DBTX) *PantryStore {
	return &PantryStore{db: db}
}

func scanPantry(scanner interface{ Scan(...any) error }) (*model.Pantry, error) {
	var p model.Pantry
	err := scanner.Scan(&p.ID, &p.GroupID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const pantryCols = `id, group_id, name, created_at, updated_at`

func (s *PantryStore) Create(ctx context.Context, groupID int64, name string) (*model.Pantry, error) {
	result, err := s.db.ExecContext(ctx, `INSERT INTO pantries (group_id, name) VALUES (?, ?)`, groupID, name)
	if err != nil {
		return nil, fmt.Errorf("insert pantry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *PantryStore) GetByID(ctx context.Context, id int64) (*model.Pantry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pantryCols+` FROM pantries WHERE id = ?`, id)
	p, err := scanPantry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pantry: %w", err)
	}
	return p, nil
}

func (s *PantryStore) GetByGroup(ctx context.Context, groupID int64) (*model.Pantry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pantryCols+` FROM pantries WHERE group_id = ?`, groupID)
	p, err := scanPantry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pantry by group: %w", err)
	}
	return p, nil
}

func (s *PantryStore) ListByGroups(ctx context.Context, groupIDs []int64) ([]model.Pantry, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+pantryCols+` FROM pantries WHERE group_id IN (`+placeholders(len(groupIDs))+`) ORDER BY id ASC`,
		int64Args(groupIDs)...,
	)
	if err != nil {
		return nil, fmt.Errorf("list pantries: %w", err)
	}
	defer rows.Close()

	var pantries []model.Pantry
	for rows.Next() {
		p, err := scanPantry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pantry: %w", err)
		}
		pantries = append(pantries, *p)
	}
	return pantries, rows.Err()
}

func (s *PantryStore) Update(ctx context.Context, id int64, name string) (*model.Pantry, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pantries SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update pantry: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *PantryStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pantries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete pantry: %w", err)
	}
	return nil
}
