package service

import (
	"context"
	"strings"

	"github.com/dukerupert/pantrypal/internal/apperr"
	"github.com/dukerupert/pantrypal/internal/guard"
	"github.com/dukerupert/pantrypal/internal/model"
	"github.com/dukerupert/pantrypal/internal/store"
)

type ShoppingListService struct {
	deps
}

func validListName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("Shopping list name cannot be empty")
	}
	return name, nil
}

// Create adds a shopping list to one of the caller's groups. Requires
// CREATE_SHOPPING_LIST.
func (s *ShoppingListService) Create(ctx context.Context, email string, groupID int64, name string) (*model.ShoppingList, error) {
	name, err := validListName(name)
	if err != nil {
		return nil, err
	}

	var list *model.ShoppingList
	err = s.tx(ctx, "create shopping list", func(st *store.Stores) error {
		user, err := s.guard.User(ctx, st, email)
		if err != nil {
			return err
		}
		if _, err := requireGroup(user, groupID, "You tried to create shopping list for non existing group"); err != nil {
			return err
		}
		if !guard.HasAuthority(user, groupID, model.CapabilityCreateShoppingList) {
			return apperr.Forbidden("You tried to create shopping list without permission")
		}
		list, err = st.ShoppingLists.Create(ctx, groupID, name, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(groupID, EntityShoppingList, ActionCreated, list.ID)
	return list, nil
}

func (s *ShoppingListService) Get(ctx context.Context, email string, listID int64) (*model.ShoppingList, error) {
	var list *model.ShoppingList
	err := s.tx(ctx, "get shopping list", func(st *store.Stores) error {
		var err error
		list, _, err = s.guard.ShoppingListWithAuthority(ctx, st, email, listID, nil)
		return err
	})
	return list, err
}

// ListForUser returns the shopping lists of every group the caller belongs to.
func (s *ShoppingListService) ListForUser(ctx context.Context, email string) ([]model.ShoppingList, error) {
	var lists []model.ShoppingList
	err := s.tx(ctx, "list shopping lists", func(st *store.Stores) error {
		user, err := s.guard.User(ctx, st, email)
		if err != nil {
			return err
		}
		lists, err = st.ShoppingLists.ListByGroups(ctx, user.GroupIDs())
		return err
	})
	if lists == nil && err == nil {
		lists = []model.ShoppingList{}
	}
	return lists, err
}

// Update renames a shopping list. Requires MODIFY_SHOPPING_LIST.
func (s *ShoppingListService) Update(ctx context.Context, email string, listID int64, name string) (*model.ShoppingList, error) {
	name, err := validListName(name)
	if err != nil {
		return nil, err
	}

	var list *model.ShoppingList
	err = s.tx(ctx, "update shopping list", func(st *store.Stores) error {
		if _, _, err := s.guard.ShoppingListWithAuthority(ctx, st, email, listID, model.Cap(model.CapabilityModifyShoppingList)); err != nil {
			return err
		}
		var err error
		list, err = st.ShoppingLists.Update(ctx, listID, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(list.GroupID, EntityShoppingList, ActionUpdated, list.ID)
	return list, nil
}

// Delete removes a shopping list with its lines. Requires
// MODIFY_SHOPPING_LIST.
func (s *ShoppingListService) Delete(ctx context.Context, email string, listID int64) error {
	var list *model.ShoppingList
	err := s.tx(ctx, "delete shopping list", func(st *store.Stores) error {
		var err error
		list, _, err = s.guard.ShoppingListWithAuthority(ctx, st, email, listID, model.Cap(model.CapabilityModifyShoppingList))
		if err != nil {
			return err
		}
		return st.ShoppingLists.Delete(ctx, listID)
	})
	if err != nil {
		return err
	}
	s.notify(list.GroupID, EntityShoppingList, ActionDeleted, list.ID)
	return nil
}
