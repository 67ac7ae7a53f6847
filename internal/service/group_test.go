package service

import (
	"github.com/dukerupert/pantrypal/internal/apperr"
	"github.com/dukerupert/pantrypal/internal/model"
)

func (s *serviceSuite) TestGroupCreateGrantsEveryCapability() {
	alice := s.user("alice")
	g := s.group(alice, "Home")

	details, err := s.svc.Groups.Get(s.ctx, alice.Email, g.ID)
	s.Require().NoError(err)
	s.Require().Len(details.Members, 1)
	s.ElementsMatch(model.AllCapabilities, details.Members[0].Capabilities)
	s.Nil(details.PantryID)
	s.Empty(details.ShoppingLists)
	s.Equal([]int64{g.ID}, s.notifier.subs[alice.Email])

	_, err = s.svc.Groups.Create(s.ctx, alice.Email, "Home")
	s.requireCode(err, apperr.CodeConflict, "")

	_, err = s.svc.Groups.Create(s.ctx, alice.Email, "   ")
	s.requireCode(err, apperr.CodeValidation, "Group name cannot be empty")
}

func (s *serviceSuite) TestGroupGetDetails() {
	alice, bob := s.user("alice"), s.user("bob")
	g := s.group(alice, "Home")
	s.join(alice, g.ID, bob)
	p := s.pantry(alice, g.ID)
	l := s.list(alice, g.ID, "Weekly")

	details, err := s.svc.Groups.Get(s.ctx, bob.Email, g.ID)
	s.Require().NoError(err)
	s.Require().NotNil(details.PantryID)
	s.Equal(p.ID, *details.PantryID)
	s.Require().Len(details.ShoppingLists, 1)
	s.Equal(l.ID, details.ShoppingLists[0].ID)
	s.Require().Len(details.Members, 2)
	s.Equal(bob.ID, details.Members[1].UserID)
	s.ElementsMatch(model.BasicCapabilities, details.Members[1].Capabilities)

	carol := s.user("carol")
	_, err = s.svc.Groups.Get(s.ctx, carol.Email, g.ID)
	s.requireCode(err, apperr.CodeNotFound, "Group does not exist")
}

func (s *serviceSuite) TestGroupAddUser() {
	alice, bob := s.user("alice"), s.user("bob")
	g := s.group(alice, "Home")

	m, err := s.svc.Groups.AddUser(s.ctx, alice.Email, g.ID, "BOB@example.com")
	s.Require().NoError(err)
	s.Equal(bob.ID, m.UserID)
	s.Equal([]int64{g.ID}, s.notifier.subs[bob.Email])

	_, err = s.svc.Groups.AddUser(s.ctx, alice.Email, g.ID, bob.Email)
	s.requireCode(err, apperr.CodeConflict, "User is already in the group")

	_, err = s.svc.Groups.AddUser(s.ctx, alice.Email, g.ID, "ghost@example.com")
	s.requireCode(err, apperr.CodeNotFound, "You tried to add non existing user to group")

	carol := s.user("carol")
	_, err = s.svc.Groups.AddUser(s.ctx, bob.Email, g.ID, carol.Email)
	s.requireCode(err, apperr.CodeForbidden, "You have no permissions to do that")
}

func (s *serviceSuite) TestGroupRemoveUser() {
	alice, bob, carol := s.user("alice"), s.user("bob"), s.user("carol")
	g := s.group(alice, "Home")
	s.join(alice, g.ID, bob)
	s.join(alice, g.ID, carol)

	s.Run("creator cannot be removed", func() {
		err := s.svc.Groups.RemoveUser(s.ctx, alice.Email, g.ID, alice.ID)
		s.requireCode(err, apperr.CodeForbidden, "Group creator cannot be removed")
	})

	s.Run("removing others needs MODIFY_GROUP", func() {
		err := s.svc.Groups.RemoveUser(s.ctx, bob.Email, g.ID, carol.ID)
		s.requireCode(err, apperr.CodeForbidden, "You have no permissions to do that")
	})

	s.Run("members may leave", func() {
		s.Require().NoError(s.svc.Groups.RemoveUser(s.ctx, bob.Email, g.ID, bob.ID))
		isMember, err := s.st.Groups.IsMember(s.ctx, g.ID, bob.ID)
		s.Require().NoError(err)
		s.False(isMember)
		auths, err := s.st.Authorities.ListByUser(s.ctx, bob.ID)
		s.Require().NoError(err)
		s.Empty(auths)
		s.Equal([]int64{g.ID}, s.notifier.unsubs[bob.Email])
	})

	s.Run("owner removes a member", func() {
		s.Require().NoError(s.svc.Groups.RemoveUser(s.ctx, alice.Email, g.ID, carol.ID))
		err := s.svc.Groups.RemoveUser(s.ctx, alice.Email, g.ID, carol.ID)
		s.requireCode(err, apperr.CodeForbidden, "You tried to remove user which is not in the group")
	})
}

func (s *serviceSuite) TestGroupAuthorities() {
	alice, bob := s.user("alice"), s.user("bob")
	g := s.group(alice, "Home")
	s.join(alice, g.ID, bob)

	granted, err := s.svc.Groups.AssignAuthorities(s.ctx, alice.Email, g.ID, bob.ID,
		[]model.Capability{model.CapabilityAdd, model.CapabilityDelete, model.CapabilityDelete})
	s.Require().NoError(err)
	s.Require().Len(granted, 1, "ADD is already held and DELETE is requested twice")
	s.Equal(model.CapabilityDelete, granted[0].Capability)

	s.Require().NoError(s.svc.Groups.RemoveAuthorities(s.ctx, alice.Email, g.ID, bob.ID,
		[]model.Capability{model.CapabilityDelete, model.CapabilityAdd}))
	auths, err := s.st.Authorities.ListByUser(s.ctx, bob.ID)
	s.Require().NoError(err)
	for _, a := range auths {
		s.NotEqual(model.CapabilityDelete, a.Capability)
		s.NotEqual(model.CapabilityAdd, a.Capability)
	}

	_, err = s.svc.Groups.AssignAuthorities(s.ctx, alice.Email, g.ID, bob.ID, []model.Capability{"FLY"})
	s.requireCode(err, apperr.CodeValidation, "")

	outsider := s.user("carol")
	_, err = s.svc.Groups.AssignAuthorities(s.ctx, alice.Email, g.ID, outsider.ID, []model.Capability{model.CapabilityAdd})
	s.requireCode(err, apperr.CodeForbidden, "You tried to assign authorities to user which is not in the group")

	_, err = s.svc.Groups.AssignAuthorities(s.ctx, bob.Email, g.ID, bob.ID, []model.Capability{model.CapabilityModifyGroup})
	s.requireCode(err, apperr.CodeForbidden, "")
}

func (s *serviceSuite) TestGroupUpdateAndDelete() {
	alice, bob := s.user("alice"), s.user("bob")
	g := s.group(alice, "Home")
	s.join(alice, g.ID, bob)
	p := s.pantry(alice, g.ID)
	s.list(alice, g.ID, "Weekly")

	updated, err := s.svc.Groups.Update(s.ctx, alice.Email, g.ID, "Cottage")
	s.Require().NoError(err)
	s.Equal("Cottage", updated.Name)

	err = s.svc.Groups.Delete(s.ctx, bob.Email, g.ID)
	s.requireCode(err, apperr.CodeForbidden, "")

	s.Require().NoError(s.svc.Groups.Delete(s.ctx, alice.Email, g.ID))
	pantry, err := s.st.Pantries.GetByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Nil(pantry)
	auths, err := s.st.Authorities.ListByGroup(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Empty(auths)
	s.ElementsMatch([]int64{g.ID}, s.notifier.unsubs[bob.Email])
	s.True(s.notifier.has(EntityGroup, ActionDeleted))
}
