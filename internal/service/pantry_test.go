package service

import (
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dukerupert/pantrypal/internal/apperr"
	"github.com/dukerupert/pantrypal/internal/guard"
	"github.com/dukerupert/pantrypal/internal/model"
)

func (s *serviceSuite) TestPantryCreate() {
	alice, bob, carol := s.user("alice"), s.user("bob"), s.user("carol")
	g := s.group(alice, "Home")
	s.join(alice, g.ID, bob)

	_, err := s.svc.Pantries.Create(s.ctx, bob.Email, g.ID, "Kitchen")
	s.requireCode(err, apperr.CodeForbidden, guard.MsgNoPermission)

	_, err = s.svc.Pantries.Create(s.ctx, carol.Email, g.ID, "Kitchen")
	s.requireCode(err, apperr.CodeForbidden, "You tried to create pantry for non existing group")

	p := s.pantry(alice, g.ID)
	s.Equal(g.ID, p.GroupID)
	s.True(s.notifier.has(EntityPantry, ActionCreated))

	_, err = s.svc.Pantries.Create(s.ctx, alice.Email, g.ID, "Cellar")
	s.requireCode(err, apperr.CodeConflict, "Group already has a pantry")
}

func (s *serviceSuite) TestPantryAccess() {
	alice, carol := s.user("alice"), s.user("carol")
	g := s.group(alice, "Home")
	p := s.pantry(alice, g.ID)

	got, err := s.svc.Pantries.Get(s.ctx, alice.Email, p.ID)
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)

	_, err = s.svc.Pantries.Get(s.ctx, carol.Email, p.ID)
	s.requireCode(err, apperr.CodeNotFound, msgPantryNotFound)

	all, err := s.svc.Pantries.GetForUserGroups(s.ctx, carol.Email)
	s.Require().NoError(err)
	s.Empty(all)

	renamed, err := s.svc.Pantries.Update(s.ctx, alice.Email, p.ID, "Larder")
	s.Require().NoError(err)
	s.Equal("Larder", renamed.Name)

	s.onlyCaps(alice, g.ID, model.CapabilityModifyPantry)
	err = s.svc.Pantries.Delete(s.ctx, alice.Email, p.ID)
	s.requireCode(err, apperr.CodeForbidden, guard.MsgNoPermission)
}

func (s *serviceSuite) TestPantryProductAddMergesAndInserts() {
	alice := s.user("alice")
	g := s.group(alice, "Home")
	p := s.pantry(alice, g.ID)
	flour := s.product("flour", model.CategoryBakingGoods)
	s.stock(p.ID, model.PantryProduct{Product: flour, Quantity: 100, Unit: model.UnitGrams})

	out, err := s.svc.PantryProducts.Add(s.ctx, alice.Email, p.ID, []model.PantryProduct{
		{Product: flour, Quantity: 50, Unit: model.UnitGrams},
		{Product: model.Product{Name: "Whole milk"}, Quantity: 2, Unit: model.UnitMilliliters},
		{Product: flour, Quantity: 3, Unit: model.UnitPieces},
	})
	s.Require().NoError(err)
	s.Require().Len(out, 3)
	s.Equal(150, out[0].Quantity, "flour in grams merges into the stocked line")
	s.Equal(model.CategoryDairy, out[1].Product.Category)
	s.NotZero(out[1].ID)

	lines := s.pantryLines(p.ID)
	s.Len(lines, 3)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Reconciled.WithLabelValues("pantry", "merge")))
	s.Equal(2.0, testutil.ToFloat64(s.metrics.Reconciled.WithLabelValues("pantry", "insert")))
}

func (s *serviceSuite) TestPantryProductAddValidation() {
	alice := s.user("alice")
	g := s.group(alice, "Home")
	p := s.pantry(alice, g.ID)
	flour := s.product("flour", model.CategoryBakingGoods)

	tests := []struct {
		name string
		item model.PantryProduct
		msg  string
	}{
		{"id set", model.PantryProduct{ID: 7, Product: flour, Quantity: 1, Unit: model.UnitGrams},
			"Pantry product id must be 0 while inserting it to pantry"},
		{"reserved set", model.PantryProduct{Product: flour, Quantity: 1, Reserved: 1, Unit: model.UnitGrams},
			"Pantry product reserved quantity must be 0 while inserting it to pantry"},
		{"zero quantity", model.PantryProduct{Product: flour, Unit: model.UnitGrams},
			"Quantity must be greater than 0"},
		{"bad unit", model.PantryProduct{Product: flour, Quantity: 1, Unit: "CUPS"},
			"Unit is invalid"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.svc.PantryProducts.Add(s.ctx, alice.Email, p.ID, []model.PantryProduct{tt.item})
			s.requireCode(err, apperr.CodeValidation, tt.msg)
		})
	}
	s.Empty(s.pantryLines(p.ID))
}

func (s *serviceSuite) TestPantryProductAddRequiresMembershipAndAdd() {
	alice, bob, carol := s.user("alice"), s.user("bob"), s.user("carol")
	g := s.group(alice, "Home")
	s.join(alice, g.ID, bob)
	p := s.pantry(alice, g.ID)
	flour := s.product("flour", model.CategoryBakingGoods)
	item := []model.PantryProduct{{Product: flour, Quantity: 1, Unit: model.UnitGrams}}

	_, err := s.svc.PantryProducts.Add(s.ctx, carol.Email, p.ID, item)
	s.requireCode(err, apperr.CodeForbidden, guard.MsgPantryNotMember)

	s.onlyCaps(bob, g.ID, model.CapabilityModify)
	_, err = s.svc.PantryProducts.Add(s.ctx, bob.Email, p.ID, item)
	s.requireCode(err, apperr.CodeForbidden, guard.MsgNoPermission)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Denials.WithLabelValues("pantry", "not_member")))
}

func (s *serviceSuite) TestPantryProductUpdate() {
	alice := s.user("alice")
	g := s.group(alice, "Home")
	p := s.pantry(alice, g.ID)
	other := s.pantry(alice, s.group(alice, "Cottage").ID)
	flour, sugar := s.product("flour", model.CategoryBakingGoods), s.product("sugar", model.CategoryBakingGoods)
	stocked := s.stock(p.ID,
		model.PantryProduct{Product: flour, Quantity: 100, Unit: model.UnitGrams},
		model.PantryProduct{Product: sugar, Quantity: 40, Unit: model.UnitGrams},
	)
	foreign := s.stock(other.ID, model.PantryProduct{Product: flour, Quantity: 1, Unit: model.UnitPieces})

	s.Run("edit in place", func() {
		item := stocked[0]
		item.Quantity = 0
		item.Placement = " shelf "
		out, err := s.svc.PantryProducts.Update(s.ctx, alice.Email, p.ID, []model.PantryProduct{item})
		s.Require().NoError(err)
		s.Require().Len(out, 1)
		s.Equal(0, out[0].Quantity)
		s.Equal("shelf", out[0].Placement)
	})

	s.Run("edit into an existing line merges and deletes the edited one", func() {
		item := stocked[1]
		item.Product = flour
		out, err := s.svc.PantryProducts.Update(s.ctx, alice.Email, p.ID, []model.PantryProduct{item})
		s.Require().NoError(err)
		s.Require().Len(out, 1)
		s.Equal(stocked[0].ID, out[0].ID)
		s.Equal(40, out[0].Quantity)

		lines := s.pantryLines(p.ID)
		s.Require().Len(lines, 1)
		s.Equal(stocked[0].ID, lines[0].ID)
	})

	s.Run("unsaved line", func() {
		_, err := s.svc.PantryProducts.Update(s.ctx, alice.Email, p.ID,
			[]model.PantryProduct{{Product: flour, Quantity: 1, Unit: model.UnitGrams}})
		s.requireCode(err, apperr.CodeValidation, "Cannot modify product because it doesn't exist")
	})

	s.Run("line of another pantry", func() {
		_, err := s.svc.PantryProducts.Update(s.ctx, alice.Email, p.ID, foreign)
		s.requireCode(err, apperr.CodeForbidden, "Cannot update products from different pantry")
	})

	s.Run("missing line", func() {
		item := stocked[0]
		item.ID = 9999
		_, err := s.svc.PantryProducts.Update(s.ctx, alice.Email, p.ID, []model.PantryProduct{item})
		s.requireCode(err, apperr.CodeNotFound, "Pantry product was not found")
	})
}

func (s *serviceSuite) TestPantryProductDelete() {
	alice, bob := s.user("alice"), s.user("bob")
	g := s.group(alice, "Home")
	s.join(alice, g.ID, bob)
	p := s.pantry(alice, g.ID)
	other := s.pantry(alice, s.group(alice, "Cottage").ID)
	flour := s.product("flour", model.CategoryBakingGoods)
	mine := s.stock(p.ID,
		model.PantryProduct{Product: flour, Quantity: 1, Unit: model.UnitGrams},
		model.PantryProduct{Product: flour, Quantity: 1, Unit: model.UnitPieces},
	)
	theirs := s.stock(other.ID, model.PantryProduct{Product: flour, Quantity: 1, Unit: model.UnitGrams})

	err := s.svc.PantryProducts.Delete(s.ctx, alice.Email, p.ID, []int64{mine[0].ID, theirs[0].ID})
	s.requireCode(err, apperr.CodeForbidden, "Cannot remove products from different pantry")
	s.Len(s.pantryLines(p.ID), 2)
	s.Len(s.pantryLines(other.ID), 1)

	s.onlyCaps(bob, g.ID, model.CapabilityDelete)
	err = s.svc.PantryProducts.Delete(s.ctx, bob.Email, p.ID, []int64{mine[0].ID})
	s.requireCode(err, apperr.CodeForbidden, guard.MsgNoPermission)
	s.Len(s.pantryLines(p.ID), 2)

	s.onlyCaps(bob, g.ID, model.CapabilityModify)
	s.Require().NoError(s.svc.PantryProducts.Delete(s.ctx, bob.Email, p.ID, []int64{mine[0].ID}))
	s.Len(s.pantryLines(p.ID), 1)

	s.Require().NoError(s.svc.PantryProducts.Delete(s.ctx, alice.Email, p.ID, []int64{mine[1].ID}))
	s.Empty(s.pantryLines(p.ID))
	s.True(s.notifier.has(EntityPantryProduct, ActionDeleted))
}

func (s *serviceSuite) TestPantryProductReserve() {
	alice := s.user("alice")
	g := s.group(alice, "Home")
	p := s.pantry(alice, g.ID)
	flour := s.product("flour", model.CategoryBakingGoods)
	line := s.stock(p.ID, model.PantryProduct{Product: flour, Quantity: 100, Unit: model.UnitGrams})[0]

	got, err := s.svc.PantryProducts.Reserve(s.ctx, alice.Email, p.ID, line.ID, 60)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(40, got.Quantity)
	s.Equal(60, got.Reserved)

	got, err = s.svc.PantryProducts.Reserve(s.ctx, alice.Email, p.ID, line.ID, 41)
	s.Require().NoError(err)
	s.Nil(got, "reserving more than the quantity is rejected without an error")

	got, err = s.svc.PantryProducts.Reserve(s.ctx, alice.Email, p.ID, line.ID, -61)
	s.Require().NoError(err)
	s.Nil(got)

	got, err = s.svc.PantryProducts.Reserve(s.ctx, alice.Email, p.ID, line.ID, -60)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(100, got.Quantity)
	s.Equal(0, got.Reserved)

	stored := s.pantryLines(p.ID)[0]
	s.Equal(100, stored.Quantity)
	s.Equal(2.0, testutil.ToFloat64(s.metrics.Reservations.WithLabelValues("applied")))
	s.Equal(2.0, testutil.ToFloat64(s.metrics.Reservations.WithLabelValues("rejected")))

	s.onlyCaps(alice, g.ID, model.CapabilityAdd)
	_, err = s.svc.PantryProducts.Reserve(s.ctx, alice.Email, p.ID, line.ID, 1)
	s.requireCode(err, apperr.CodeForbidden, guard.MsgNoPermission)
}

func (s *serviceSuite) TestPantryProductList() {
	alice := s.user("alice")
	g := s.group(alice, "Home")
	p := s.pantry(alice, g.ID)
	flour, sugar := s.product("flour", model.CategoryBakingGoods), s.product("sugar", model.CategoryBakingGoods)
	s.stock(p.ID,
		model.PantryProduct{Product: flour, Quantity: 1, Unit: model.UnitGrams},
		model.PantryProduct{Product: sugar, Quantity: 1, Unit: model.UnitGrams},
	)

	page, err := s.svc.PantryProducts.List(s.ctx, alice.Email, p.ID, model.PageRequest{Filter: "SUG"})
	s.Require().NoError(err)
	s.Equal(1, page.TotalItems)
	s.Require().Len(page.Items, 1)
	s.Equal("sugar", page.Items[0].Product.Name)
}
