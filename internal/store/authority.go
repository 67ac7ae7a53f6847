package store

import (
	"context"
	"fmt"

	"github.com/dukerupert/pantrypal/internal/model"
)

type AuthorityStore struct {
	db DBTX
}

func NewAuthorityStore(db DBTX) *AuthorityStore {
	return &AuthorityStore{db: db}
}

const authorityCols = `id, user_id, group_id, capability`

func (s *AuthorityStore) list(ctx context.Context, query string, args ...any) ([]model.Authority, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list authorities: %w", err)
	}
	defer rows.Close()

	var auths []model.Authority
	for rows.Next() {
		var a model.Authority
		if err := rows.Scan(&a.ID, &a.UserID, &a.GroupID, &a.Capability); err != nil {
			return nil, fmt.Errorf("scan authority: %w", err)
		}
		auths = append(auths, a)
	}
	return auths, rows.Err()
}

func (s *AuthorityStore) ListByUser(ctx context.Context, userID int64) ([]model.Authority, error) {
	return s.list(ctx, `SELECT `+authorityCols+` FROM authorities WHERE user_id = ? ORDER BY id ASC`, userID)
}

func (s *AuthorityStore) ListByGroup(ctx context.Context, groupID int64) ([]model.Authority, error) {
	return s.list(ctx, `SELECT `+authorityCols+` FROM authorities WHERE group_id = ? ORDER BY user_id ASC, id ASC`, groupID)
}

// Grant inserts every authority in auths. Grants that already exist are
// left untouched.
func (s *AuthorityStore) Grant(ctx context.Context, auths []model.Authority) error {
	for _, a := range auths {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO authorities (user_id, group_id, capability) VALUES (?, ?, ?)`,
			a.UserID, a.GroupID, a.Capability,
		)
		if err != nil {
			return fmt.Errorf("grant authority: %w", err)
		}
	}
	return nil
}

func (s *AuthorityStore) Revoke(ctx context.Context, userID, groupID int64, caps []model.Capability) error {
	for _, c := range caps {
		_, err := s.db.ExecContext(ctx,
			`DELETE FROM authorities WHERE user_id = ? AND group_id = ? AND capability = ?`,
			userID, groupID, c,
		)
		if err != nil {
			return fmt.Errorf("revoke authority: %w", err)
		}
	}
	return nil
}

func (s *AuthorityStore) RevokeAll(ctx context.Context, userID, groupID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM authorities WHERE user_id = ? AND group_id = ?`,
		userID, groupID,
	)
	if err != nil {
		return fmt.Errorf("revoke all authorities: %w", err)
	}
	return nil
}
