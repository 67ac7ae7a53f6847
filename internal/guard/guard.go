// Package guard decides whether a user may touch a group-owned resource.
// Membership is always checked before capability, and a resource is only
// ever reached through the caller's own groups.
package guard

import (
	"context"
	"log/slog"

	"github.com/dukerupert/pantrypal/internal/apperr"
	"github.com/dukerupert/pantrypal/internal/identity"
	"github.com/dukerupert/pantrypal/internal/metrics"
	"github.com/dukerupert/pantrypal/internal/model"
	"github.com/dukerupert/pantrypal/internal/store"
)

const (
	MsgPantryNotMember       = "You cannot access the pantry because you are not member of its group"
	MsgShoppingListNotMember = "You cannot access the shopping list because you are not member of its group"
	MsgNoPermission          = "You have not permissions to do that"
)

type Guard struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(logger *slog.Logger, m *metrics.Metrics) *Guard {
	return &Guard{logger: logger, metrics: m}
}

// User resolves email against st.
func (g *Guard) User(ctx context.Context, st *store.Stores, email string) (*model.User, error) {
	return identity.Resolve(ctx, st.Users, st.Authorities, email)
}

// PantryWithAuthority resolves the caller and returns pantryID if it belongs
// to one of the caller's groups and, when capability is non-nil, the caller
// holds that capability in the pantry's group.
func (g *Guard) PantryWithAuthority(ctx context.Context, st *store.Stores, email string, pantryID int64, capability *model.Capability) (*model.Pantry, *model.User, error) {
	user, err := g.User(ctx, st, email)
	if err != nil {
		return nil, nil, err
	}
	pantry, err := g.Pantry(ctx, st, user, pantryID, capability)
	if err != nil {
		return nil, nil, err
	}
	return pantry, user, nil
}

// Pantry is PantryWithAuthority for an already resolved user.
func (g *Guard) Pantry(ctx context.Context, st *store.Stores, user *model.User, pantryID int64, capability *model.Capability) (*model.Pantry, error) {
	if _, err := g.CheckPantry(user, pantryID, capability); err != nil {
		return nil, err
	}
	pantry, err := st.Pantries.GetByID(ctx, pantryID)
	if err != nil {
		return nil, err
	}
	if pantry == nil {
		return nil, apperr.NotFound("Pantry was not found")
	}
	return pantry, nil
}

// CheckPantry runs the membership and capability checks over user's loaded
// groups and returns the owning membership.
func (g *Guard) CheckPantry(user *model.User, pantryID int64, capability *model.Capability) (*model.UserGroup, error) {
	group := user.GroupWithPantry(pantryID)
	if group == nil {
		g.deny("pantry", "not_member", user, pantryID)
		return nil, apperr.Forbidden(MsgPantryNotMember)
	}
	if capability != nil && !HasAuthority(user, group.GroupID, *capability) {
		g.deny("pantry", "no_capability", user, pantryID)
		return nil, apperr.Forbidden(MsgNoPermission)
	}
	return group, nil
}

// ShoppingListWithAuthority is the shopping-list counterpart of
// PantryWithAuthority.
func (g *Guard) ShoppingListWithAuthority(ctx context.Context, st *store.Stores, email string, listID int64, capability *model.Capability) (*model.ShoppingList, *model.User, error) {
	user, err := g.User(ctx, st, email)
	if err != nil {
		return nil, nil, err
	}
	list, err := g.ShoppingList(ctx, st, user, listID, capability)
	if err != nil {
		return nil, nil, err
	}
	return list, user, nil
}

func (g *Guard) ShoppingList(ctx context.Context, st *store.Stores, user *model.User, listID int64, capability *model.Capability) (*model.ShoppingList, error) {
	if _, err := g.CheckShoppingList(user, listID, capability); err != nil {
		return nil, err
	}
	list, err := st.ShoppingLists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, apperr.NotFound("Shopping list was not found")
	}
	return list, nil
}

func (g *Guard) CheckShoppingList(user *model.User, listID int64, capability *model.Capability) (*model.UserGroup, error) {
	group := user.GroupWithShoppingList(listID)
	if group == nil {
		g.deny("shopping_list", "not_member", user, listID)
		return nil, apperr.Forbidden(MsgShoppingListNotMember)
	}
	if capability != nil && !HasAuthority(user, group.GroupID, *capability) {
		g.deny("shopping_list", "no_capability", user, listID)
		return nil, apperr.Forbidden(MsgNoPermission)
	}
	return group, nil
}

func (g *Guard) deny(resource, reason string, user *model.User, id int64) {
	g.metrics.IncDenial(resource, reason)
	if g.logger != nil {
		g.logger.Debug("access denied", "resource", resource, "reason", reason, "user", user.Email, "id", id)
	}
}

// HasAuthority reports whether user holds capability in groupID.
func HasAuthority(user *model.User, groupID int64, capability model.Capability) bool {
	want := model.Authority{UserID: user.ID, GroupID: groupID, Capability: capability}
	for _, a := range user.Authorities {
		if SameAuthority(a, want) {
			return true
		}
	}
	return false
}

// FindGroup returns user's membership in groupID, or nil.
func FindGroup(user *model.User, groupID int64) *model.UserGroup {
	return user.Group(groupID)
}

// SameAuthority compares grants by capability, user and group. Row ids are
// ignored.
func SameAuthority(a, b model.Authority) bool {
	return a.Capability == b.Capability && a.UserID == b.UserID && a.GroupID == b.GroupID
}
