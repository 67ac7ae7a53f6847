// Package identity resolves an authenticated email to a fully loaded user.
package identity

import (
	"context"
	"fmt"

	"github.com/dukerupert/pantrypal/internal/apperr"
	"github.com/dukerupert/pantrypal/internal/model"
)

// UserSource loads users and their group memberships.
type UserSource interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ListMemberships(ctx context.Context, userID int64) ([]model.UserGroup, error)
}

// AuthoritySource loads a user's capability grants.
type AuthoritySource interface {
	ListByUser(ctx context.Context, userID int64) ([]model.Authority, error)
}

// Resolve returns the user for email with its groups and authorities
// attached. A missing user is a CodeUserNotFound error: the caller was
// authenticated, so the token and the database disagree.
func Resolve(ctx context.Context, users UserSource, auths AuthoritySource, email string) (*model.User, error) {
	u, err := users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if u == nil {
		return nil, apperr.New(apperr.CodeUserNotFound, "User was not found in database after authentication")
	}

	u.Groups, err = users.ListMemberships(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve user groups: %w", err)
	}
	u.Authorities, err = auths.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve user authorities: %w", err)
	}
	return u, nil
}
