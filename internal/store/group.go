package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/pantrypal/internal/model"
)

type GroupStore struct {
	db DBTX
}

func NewGroupStore(db DBTX) *GroupStore {
	return &GroupStore{db: db}
}

func scanGroup(scanner interface{ Scan(...any) error }) (*model.Group, error) {
	var g model.Group
	err := scanner.Scan(&g.ID, &g.Name, &g.CreatorID, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

const groupCols = `id, name, creator_id, created_at`

// Create inserts the group and adds its creator as the first member.
func (s *GroupStore) Create(ctx context.Context, name string, creatorID int64) (*model.Group, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO family_groups (name, creator_id) VALUES (?, ?)`,
		name, creatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	if err := s.AddMember(ctx, id, creatorID); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *GroupStore) GetByID(ctx context.Context, id int64) (*model.Group, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+groupCols+` FROM family_groups WHERE id = ?`, id)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

func (s *GroupStore) GetByName(ctx context.Context, name string) (*model.Group, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+groupCols+` FROM family_groups WHERE name = ?`, name)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group by name: %w", err)
	}
	return g, nil
}

func (s *GroupStore) Update(ctx context.Context, id int64, name string) (*model.Group, error) {
	_, err := s.db.ExecContext(ctx, `UPDATE family_groups SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes the group. Members, authorities, the pantry, shopping
// lists and meals go with it through ON DELETE CASCADE.
func (s *GroupStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM family_groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}

func (s *GroupStore) AddMember(ctx context.Context, groupID, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id) VALUES (?, ?)`,
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *GroupStore) RemoveMember(ctx context.Context, groupID, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

func (s *GroupStore) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check member: %w", err)
	}
	return n > 0, nil
}

// ListMembers returns the users in groupID, oldest membership first.
func (s *GroupStore) ListMembers(ctx context.Context, groupID int64) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.username, u.email, u.password, u.created_at
		 FROM users u
		 JOIN group_members gm ON gm.user_id = u.id
		 WHERE gm.group_id = ?
		 ORDER BY gm.created_at ASC, u.id ASC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *GroupStore) ListForUser(ctx context.Context, userID int64) ([]model.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.creator_id, g.created_at
		 FROM family_groups g
		 JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.user_id = ?
		 ORDER BY g.name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list groups for user: %w", err)
	}
	defer rows.Close()

	var groups []model.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}
