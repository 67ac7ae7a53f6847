package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/pantrypal/internal/model"
)

type UserStore struct {
	db DBTX
}

func NewUserStore(db DBTX) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, username, email, password, created_at`

func (s *UserStore) Create(ctx context.Context, username, email, passwordHash string) (*model.User, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password) VALUES (?, ?, ?)`,
		username, email, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// ListMemberships returns every group userID belongs to, with the ids of the
// pantry and shopping lists each group owns.
func (s *UserStore) ListMemberships(ctx context.Context, userID int64) ([]model.UserGroup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.creator_id, p.id
		 FROM family_groups g
		 JOIN group_members gm ON gm.group_id = g.id
		 LEFT JOIN pantries p ON p.group_id = g.id
		 WHERE gm.user_id = ?
		 ORDER BY g.id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	var groups []model.UserGroup
	index := make(map[int64]int)
	for rows.Next() {
		var g model.UserGroup
		var pantryID sql.NullInt64
		if err := rows.Scan(&g.GroupID, &g.Name, &g.CreatorID, &pantryID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		if pantryID.Valid {
			g.PantryID = &pantryID.Int64
		}
		index[g.GroupID] = len(groups)
		groups = append(groups, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	listRows, err := s.db.QueryContext(ctx,
		`SELECT sl.group_id, sl.id
		 FROM shopping_lists sl
		 JOIN group_members gm ON gm.group_id = sl.group_id
		 WHERE gm.user_id = ?
		 ORDER BY sl.id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list membership shopping lists: %w", err)
	}
	defer listRows.Close()

	for listRows.Next() {
		var groupID, listID int64
		if err := listRows.Scan(&groupID, &listID); err != nil {
			return nil, fmt.Errorf("scan membership shopping list: %w", err)
		}
		if i, ok := index[groupID]; ok {
			groups[i].ShoppingListIDs = append(groups[i].ShoppingListIDs, listID)
		}
	}
	return groups, listRows.Err()
}
