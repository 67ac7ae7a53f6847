package service

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/pantrypal/internal/apperr"
	"github.com/dukerupert/pantrypal/internal/guard"
	"github.com/dukerupert/pantrypal/internal/model"
	"github.com/dukerupert/pantrypal/internal/store"
)

const (
	msgGroupNotFound       = "Group does not exist"
	msgGroupNoPermission   = "You have no permissions to do that"
	msgGroupCreatorRemoval = "Group creator cannot be removed"
)

type GroupService struct {
	deps
}

func validGroupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("Group name cannot be empty")
	}
	return name, nil
}

// Create makes a new group owned by the caller, who receives every
// capability in it.
func (s *GroupService) Create(ctx context.Context, email, name string) (*model.Group, error) {
	name, err := validGroupName(name)
	if err != nil {
		return nil, err
	}

	var group *model.Group
	err = s.tx(ctx, "create group", func(st *store.Stores) error {
		user, err := s.guard.User(ctx, st, email)
		if err != nil {
			return err
		}
		existing, err := st.Groups.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Conflict("Group with given name already exists")
		}
		group, err = st.Groups.Create(ctx, name, user.ID)
		if err != nil {
			return err
		}
		return st.Authorities.Grant(ctx, grants(user.ID, group.ID, model.AllCapabilities))
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Subscribe(email, group.ID)
	s.notify(group.ID, EntityGroup, ActionCreated, group.ID)
	return group, nil
}

// Get returns the group with its members, their capabilities, its pantry
// and its shopping lists. Only members can see a group.
func (s *GroupService) Get(ctx context.Context, email string, groupID int64) (*model.GroupDetails, error) {
	user, err := s.guard.User(ctx, s.st, email)
	if err != nil {
		return nil, err
	}
	if guard.FindGroup(user, groupID) == nil {
		return nil, apperr.NotFound(msgGroupNotFound)
	}

	group, err := s.st.Groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, apperr.NotFound(msgGroupNotFound)
	}

	var (
		users  []model.User
		auths  []model.Authority
		lists  []model.ShoppingList
		pantry *model.Pantry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.st.Groups.ListMembers(gctx, groupID)
		return err
	})
	g.Go(func() error {
		var err error
		auths, err = s.st.Authorities.ListByGroup(gctx, groupID)
		return err
	})
	g.Go(func() error {
		var err error
		lists, err = s.st.ShoppingLists.ListByGroups(gctx, []int64{groupID})
		return err
	})
	g.Go(func() error {
		var err error
		pantry, err = s.st.Pantries.GetByGroup(gctx, groupID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "load group details", "group_id", groupID, "error", err)
		return nil, err
	}

	caps := make(map[int64][]model.Capability, len(users))
	for _, a := range auths {
		caps[a.UserID] = append(caps[a.UserID], a.Capability)
	}
	details := &model.GroupDetails{
		Group:         *group,
		Members:       make([]model.Member, 0, len(users)),
		ShoppingLists: lists,
	}
	if details.ShoppingLists == nil {
		details.ShoppingLists = []model.ShoppingList{}
	}
	if pantry != nil {
		details.PantryID = &pantry.ID
	}
	for _, u := range users {
		details.Members = append(details.Members, model.Member{
			UserID:       u.ID,
			Username:     u.Username,
			Email:        u.Email,
			Capabilities: caps[u.ID],
		})
	}
	return details, nil
}

func (s *GroupService) ListForUser(ctx context.Context, email string) ([]model.Group, error) {
	var groups []model.Group
	err := s.tx(ctx, "list groups", func(st *store.Stores) error {
		user, err := s.guard.User(ctx, st, email)
		if err != nil {
			return err
		}
		groups, err = st.Groups.ListForUser(ctx, user.ID)
		return err
	})
	return groups, err
}

// Update renames a group. Requires MODIFY_GROUP.
func (s *GroupService) Update(ctx context.Context, email string, groupID int64, name string) (*model.Group, error) {
	name, err := validGroupName(name)
	if err != nil {
		return nil, err
	}

	var group *model.Group
	err = s.tx(ctx, "update group", func(st *store.Stores) error {
		if _, err := s.memberWith(ctx, st, email, groupID, model.CapabilityModifyGroup); err != nil {
			return err
		}
		existing, err := st.Groups.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != groupID {
			return apperr.Conflict("Group with given name already exists")
		}
		group, err = st.Groups.Update(ctx, groupID, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(groupID, EntityGroup, ActionUpdated, groupID)
	return group, nil
}

// Delete removes a group together with its pantry, shopping lists, meals and
// authorities. Requires MODIFY_GROUP.
func (s *GroupService) Delete(ctx context.Context, email string, groupID int64) error {
	var members []model.User
	err := s.tx(ctx, "delete group", func(st *store.Stores) error {
		if _, err := s.memberWith(ctx, st, email, groupID, model.CapabilityModifyGroup); err != nil {
			return err
		}
		var err error
		members, err = st.Groups.ListMembers(ctx, groupID)
		if err != nil {
			return err
		}
		return st.Groups.Delete(ctx, groupID)
	})
	if err != nil {
		return err
	}
	s.notify(groupID, EntityGroup, ActionDeleted, groupID)
	for _, m := range members {
		s.notifier.Unsubscribe(m.Email, groupID)
	}
	return nil
}

// AddUser adds the user with userEmail to the group with the basic
// capability set. Requires ADD_TO_GROUP.
func (s *GroupService) AddUser(ctx context.Context, email string, groupID int64, userEmail string) (*model.Member, error) {
	userEmail = strings.ToLower(strings.TrimSpace(userEmail))

	var member *model.Member
	err := s.tx(ctx, "add user to group", func(st *store.Stores) error {
		if _, err := s.memberWith(ctx, st, email, groupID, model.CapabilityAddToGroup); err != nil {
			return err
		}
		target, err := st.Users.GetByEmail(ctx, userEmail)
		if err != nil {
			return err
		}
		if target == nil {
			return apperr.NotFound("You tried to add non existing user to group")
		}
		isMember, err := st.Groups.IsMember(ctx, groupID, target.ID)
		if err != nil {
			return err
		}
		if isMember {
			return apperr.Conflict("User is already in the group")
		}
		if err := st.Groups.AddMember(ctx, groupID, target.ID); err != nil {
			return err
		}
		if err := st.Authorities.Grant(ctx, grants(target.ID, groupID, model.BasicCapabilities)); err != nil {
			return err
		}
		member = &model.Member{
			UserID:       target.ID,
			Username:     target.Username,
			Email:        target.Email,
			Capabilities: append([]model.Capability(nil), model.BasicCapabilities...),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Subscribe(member.Email, groupID)
	s.notify(groupID, EntityGroup, ActionUpdated, groupID)
	return member, nil
}

// RemoveUser removes userID from the group and drops its authorities there.
// Members may always leave; removing somebody else requires MODIFY_GROUP.
// The creator can never be removed.
func (s *GroupService) RemoveUser(ctx context.Context, email string, groupID, userID int64) error {
	var removed *model.User
	err := s.tx(ctx, "remove user from group", func(st *store.Stores) error {
		user, err := s.guard.User(ctx, st, email)
		if err != nil {
			return err
		}
		g := guard.FindGroup(user, groupID)
		if g == nil {
			return apperr.NotFound(msgGroupNotFound)
		}
		if userID != user.ID && !guard.HasAuthority(user, groupID, model.CapabilityModifyGroup) {
			return apperr.Forbidden(msgGroupNoPermission)
		}
		if userID == g.CreatorID {
			return apperr.Forbidden(msgGroupCreatorRemoval)
		}
		if removed, err = st.Users.GetByID(ctx, userID); err != nil {
			return err
		}
		if removed == nil {
			return apperr.NotFound("User tried to remove non existing user from group")
		}
		isMember, err := st.Groups.IsMember(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if !isMember {
			return apperr.Forbidden("You tried to remove user which is not in the group")
		}
		if err := st.Groups.RemoveMember(ctx, groupID, userID); err != nil {
			return err
		}
		return st.Authorities.RevokeAll(ctx, userID, groupID)
	})
	if err != nil {
		return err
	}
	s.notifier.Unsubscribe(removed.Email, groupID)
	s.notify(groupID, EntityGroup, ActionUpdated, groupID)
	return nil
}

// AssignAuthorities grants caps to a member. Capabilities the member already
// holds are skipped. Requires MODIFY_GROUP.
func (s *GroupService) AssignAuthorities(ctx context.Context, email string, groupID, userID int64, caps []model.Capability) ([]model.Authority, error) {
	if err := validateCapabilities(caps); err != nil {
		return nil, err
	}

	var granted []model.Authority
	err := s.tx(ctx, "assign authorities", func(st *store.Stores) error {
		if _, err := s.memberWith(ctx, st, email, groupID, model.CapabilityModifyGroup); err != nil {
			return err
		}
		if err := s.requireMember(ctx, st, groupID, userID,
			"You tried to assign authorities to non existing user",
			"You tried to assign authorities to user which is not in the group"); err != nil {
			return err
		}

		held, err := st.Authorities.ListByGroup(ctx, groupID)
		if err != nil {
			return err
		}
		for _, a := range grants(userID, groupID, caps) {
			if containsAuthority(held, a) || containsAuthority(granted, a) {
				continue
			}
			granted = append(granted, a)
		}
		return st.Authorities.Grant(ctx, granted)
	})
	if err != nil {
		return nil, err
	}
	if granted == nil {
		granted = []model.Authority{}
	}
	s.notify(groupID, EntityGroup, ActionUpdated, groupID)
	return granted, nil
}

// RemoveAuthorities revokes caps from a member. Requires MODIFY_GROUP.
func (s *GroupService) RemoveAuthorities(ctx context.Context, email string, groupID, userID int64, caps []model.Capability) error {
	if err := validateCapabilities(caps); err != nil {
		return err
	}

	err := s.tx(ctx, "remove authorities", func(st *store.Stores) error {
		if _, err := s.memberWith(ctx, st, email, groupID, model.CapabilityModifyGroup); err != nil {
			return err
		}
		if err := s.requireMember(ctx, st, groupID, userID,
			"You tried to take away authorities from non existing user",
			"You tried to take away authorities from user which is not in the group"); err != nil {
			return err
		}
		return st.Authorities.Revoke(ctx, userID, groupID, caps)
	})
	if err != nil {
		return err
	}
	s.notify(groupID, EntityGroup, ActionUpdated, groupID)
	return nil
}

// memberWith resolves the caller and checks it is a member of groupID
// holding capability.
func (s *GroupService) memberWith(ctx context.Context, st *store.Stores, email string, groupID int64, capability model.Capability) (*model.User, error) {
	user, err := s.guard.User(ctx, st, email)
	if err != nil {
		return nil, err
	}
	if guard.FindGroup(user, groupID) == nil {
		return nil, apperr.NotFound(msgGroupNotFound)
	}
	if !guard.HasAuthority(user, groupID, capability) {
		return nil, apperr.Forbidden(msgGroupNoPermission)
	}
	return user, nil
}

func (s *GroupService) requireMember(ctx context.Context, st *store.Stores, groupID, userID int64, missingMsg, outsiderMsg string) error {
	target, err := st.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperr.NotFound(missingMsg)
	}
	isMember, err := st.Groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperr.Forbidden(outsiderMsg)
	}
	return nil
}

func validateCapabilities(caps []model.Capability) error {
	if len(caps) == 0 {
		return apperr.Validation("At least one capability is required")
	}
	for _, c := range caps {
		if !c.Valid() {
			return apperr.Validation("Capability " + string(c) + " is invalid")
		}
	}
	return nil
}

func grants(userID, groupID int64, caps []model.Capability) []model.Authority {
	out := make([]model.Authority, len(caps))
	for i, c := range caps {
		out[i] = model.Authority{UserID: userID, GroupID: groupID, Capability: c}
	}
	return out
}

func containsAuthority(auths []model.Authority, a model.Authority) bool {
	for _, held := range auths {
		if guard.SameAuthority(held, a) {
			return true
		}
	}
	return false
}
