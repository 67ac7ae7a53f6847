package service

import (
	"context"
	"strings"

	"github.com/dukerupert/pantrypal/internal/apperr"
	"github.com/dukerupert/pantrypal/internal/guard"
	"github.com/dukerupert/pantrypal/internal/model"
	"github.com/dukerupert/pantrypal/internal/store"
)

// msgPantryNotFound masks whether a pantry exists from non-members.
const msgPantryNotFound = "Pantry was not found"

type PantryService struct {
	deps
}

func validPantryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("Pantry name cannot be empty")
	}
	return name, nil
}

// Create assigns a new pantry to a group that has none. Requires
// MODIFY_PANTRY in that group.
func (s *PantryService) Create(ctx context.Context, email string, groupID int64, name string) (*model.Pantry, error) {
	name, err := validPantryName(name)
	if err != nil {
		return nil, err
	}

	var pantry *model.Pantry
	err = s.tx(ctx, "create pantry", func(st *store.Stores) error {
		user, err := s.guard.User(ctx, st, email)
		if err != nil {
			return err
		}
		g, err := requireGroup(user, groupID, "You tried to create pantry for non existing group")
		if err != nil {
			return err
		}
		if err := requireAuthority(user, groupID, model.CapabilityModifyPantry); err != nil {
			return err
		}
		if g.PantryID != nil {
			return apperr.Conflict("Group already has a pantry")
		}
		pantry, err = st.Pantries.Create(ctx, groupID, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(groupID, EntityPantry, ActionCreated, pantry.ID)
	return pantry, nil
}

// Get returns a pantry of one of the caller's groups.
func (s *PantryService) Get(ctx context.Context, email string, pantryID int64) (*model.Pantry, error) {
	var pantry *model.Pantry
	err := s.tx(ctx, "get pantry", func(st *store.Stores) error {
		var err error
		pantry, err = s.load(ctx, st, email, pantryID, nil)
		return err
	})
	return pantry, err
}

// GetForUserGroups lists the pantries of every group the caller belongs to.
func (s *PantryService) GetForUserGroups(ctx context.Context, email string) ([]model.Pantry, error) {
	var pantries []model.Pantry
	err := s.tx(ctx, "list pantries", func(st *store.Stores) error {
		user, err := s.guard.User(ctx, st, email)
		if err != nil {
			return err
		}
		pantries, err = st.Pantries.ListByGroups(ctx, user.GroupIDs())
		return err
	})
	if pantries == nil && err == nil {
		pantries = []model.Pantry{}
	}
	return pantries, err
}

// Update renames a pantry. Requires MODIFY_PANTRY.
func (s *PantryService) Update(ctx context.Context, email string, pantryID int64, name string) (*model.Pantry, error) {
	name, err := validPantryName(name)
	if err != nil {
		return nil, err
	}

	var pantry *model.Pantry
	err = s.tx(ctx, "update pantry", func(st *store.Stores) error {
		if _, err := s.load(ctx, st, email, pantryID, model.Cap(model.CapabilityModifyPantry)); err != nil {
			return err
		}
		var err error
		pantry, err = st.Pantries.Update(ctx, pantryID, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(pantry.GroupID, EntityPantry, ActionUpdated, pantry.ID)
	return pantry, nil
}

// Delete removes a pantry and its lines. Requires DELETE_PANTRY.
func (s *PantryService) Delete(ctx context.Context, email string, pantryID int64) error {
	var pantry *model.Pantry
	err := s.tx(ctx, "delete pantry", func(st *store.Stores) error {
		var err error
		pantry, err = s.load(ctx, st, email, pantryID, model.Cap(model.CapabilityDeletePantry))
		if err != nil {
			return err
		}
		return st.Pantries.Delete(ctx, pantryID)
	})
	if err != nil {
		return err
	}
	s.notify(pantry.GroupID, EntityPantry, ActionDeleted, pantry.ID)
	return nil
}

// load reports a pantry outside the caller's groups as not found rather
// than forbidden.
func (s *PantryService) load(ctx context.Context, st *store.Stores, email string, pantryID int64, capability *model.Capability) (*model.Pantry, error) {
	user, err := s.guard.User(ctx, st, email)
	if err != nil {
		return nil, err
	}
	g := user.GroupWithPantry(pantryID)
	if g == nil {
		return nil, apperr.NotFound(msgPantryNotFound)
	}
	if capability != nil && !guard.HasAuthority(user, g.GroupID, *capability) {
		return nil, apperr.Forbidden(guard.MsgNoPermission)
	}
	pantry, err := st.Pantries.GetByID(ctx, pantryID)
	if err != nil {
		return nil, err
	}
	if pantry == nil {
		return nil, apperr.NotFound(msgPantryNotFound)
	}
	return pantry, nil
}
