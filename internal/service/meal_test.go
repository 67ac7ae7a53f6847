package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dukerupert/pantrypal/internal/apperr"
	"github.com/dukerupert/pantrypal/internal/guard"
	"github.com/dukerupert/pantrypal/internal/model"
)

var mealDate = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func (s *serviceSuite) TestMealAddReservesFromPantry() {
	alice := s.user("alice")
	g := s.group(alice, "Home")
	p := s.pantry(alice, g.ID)
	flour := s.product("flour", model.CategoryBakingGoods)
	line := s.stock(p.ID, model.PantryProduct{Product: flour, Quantity: 100, Unit: model.UnitGrams})[0]
	r := s.recipe(alice, "Bread", model.RecipeProduct{Product: flour, Quantity: 100, Unit: model.UnitGrams})

	res, err := s.svc.Meals.Add(s.ctx, alice.Email, MealRequest{Date: mealDate, GroupID: g.ID, RecipeID: r.ID}, true, nil)
	s.Require().NoError(err)
	s.Require().NotNil(res.Meal)
	s.Equal(r.ID, res.Meal.RecipeID)
	s.Empty(res.Missing)

	lines := s.pantryLines(p.ID)
	s.Require().Len(lines, 1)
	s.Equal(line.ID, lines[0].ID)
	s.Equal(0, lines[0].Quantity)
	s.Equal(100, lines[0].Reserved)

	s.True(s.notifier.has(EntityMeal, ActionCreated))
	s.True(s.notifier.has(EntityPantryProduct, ActionUpdated))
	s.False(s.notifier.has(EntityShoppingListProduct, ActionCreated))
}

func (s *serviceSuite) TestMealAddSendsMissingToList() {
	alice := s.user("alice")
	g := s.group(alice, "Home")
	p := s.pantry(alice, g.ID)
	l := s.list(alice, g.ID, "Weekly")
	flour := s.product("flour", model.CategoryBakingGoods)
	s.stock(p.ID, model.PantryProduct{Product: flour, Quantity: 0, Unit: model.UnitGrams})
	r := s.recipe(alice, "Bread", model.RecipeProduct{Product: flour, Quantity: 100, Unit: model.UnitGrams})

	res, err := s.svc.Meals.Add(s.ctx, alice.Email, MealRequest{Date: mealDate, GroupID: g.ID, RecipeID: r.ID}, false, &l.ID)
	s.Require().NoError(err)
	s.Require().Len(res.Missing, 1)
	s.Equal(flour.ID, res.Missing[0].Product.ID)

	listed := s.listLines(l.ID)
	s.Require().Len(listed, 1)
	s.Equal(flour.ID, listed[0].Product.ID)
	s.Equal(100, listed[0].Quantity)
	s.Equal(model.UnitGrams, listed[0].Unit)

	pantry := s.pantryLines(p.ID)
	s.Require().Len(pantry, 1)
	s.Equal(0, pantry[0].Quantity)
	s.Equal(0, pantry[0].Reserved)
	s.False(s.notifier.has(EntityPantryProduct, ActionUpdated))
}

func (s *serviceSuite) TestMealAddReserveShortfallGoesToList() {
	alice := s.user("alice")
	g := s.group(alice, "Home")
	p := s.pantry(alice, g.ID)
	l := s.list(alice, g.ID, "Weekly")
	flour, eggs := s.product("flour", model.CategoryBakingGoods), s.product("eggs", model.CategoryDairy)
	s.stock(p.ID,
		model.PantryProduct{Product: flour, Quantity: 500, Unit: model.UnitGrams},
		model.PantryProduct{Product: eggs, Quantity: 1, Unit: model.UnitPieces},
	)
	r := s.recipe(alice, "Pancakes",
		model.RecipeProduct{Product: flour, Quantity: 200, Unit: model.UnitGrams},
		model.RecipeProduct{Product: eggs, Quantity: 2, Unit: model.UnitPieces},
	)

	res, err := s.svc.Meals.Add(s.ctx, alice.Email, MealRequest{Date: mealDate, GroupID: g.ID, RecipeID: r.ID}, true, &l.ID)
	s.Require().NoError(err)
	s.Require().Len(res.Missing, 1)
	s.Equal(eggs.ID, res.Missing[0].Product.ID)

	pantry := s.pantryLines(p.ID)
	s.Equal(300, pantry[0].Quantity)
	s.Equal(200, pantry[0].Reserved)
	s.Equal(1, pantry[1].Quantity, "a line that cannot cover the need is left alone")

	listed := s.listLines(l.ID)
	s.Require().Len(listed, 1)
	s.Equal(eggs.ID, listed[0].Product.ID)
	s.Equal(2, listed[0].Quantity)
}

func (s *serviceSuite) TestMealAddWithoutPantry() {
	alice := s.user("alice")
	g := s.group(alice, "Home")
	l := s.list(alice, g.ID, "Weekly")
	flour := s.product("flour", model.CategoryBakingGoods)
	r := s.recipe(alice, "Bread", model.RecipeProduct{Product: flour, Quantity: 100, Unit: model.UnitGrams})

	res, err := s.svc.Meals.Add(s.ctx, alice.Email, MealRequest{Date: mealDate, GroupID: g.ID, RecipeID: r.ID}, true, &l.ID)
	s.Require().NoError(err)
	s.Len(res.Missing, 1)
	s.Len(s.listLines(l.ID), 1)
}

func (s *serviceSuite) TestMealAddRejects() {
	alice, bob, carol := s.user("alice"), s.user("bob"), s.user("carol")
	g := s.group(alice, "Home")
	s.join(alice, g.ID, bob)
	l := s.list(alice, g.ID, "Weekly")
	flour := s.product("flour", model.CategoryBakingGoods)
	r := s.recipe(alice, "Bread", model.RecipeProduct{Product: flour, Quantity: 100, Unit: model.UnitGrams})
	req := MealRequest{Date: mealDate, GroupID: g.ID, RecipeID: r.ID}

	_, err := s.svc.Meals.Add(s.ctx, carol.Email, req, false, nil)
	s.requireCode(err, apperr.CodeForbidden, "You tried to add a meal to a group which does not exist")

	_, err = s.svc.Meals.Add(s.ctx, alice.Email, MealRequest{Date: mealDate, GroupID: g.ID, RecipeID: 9999}, false, nil)
	s.requireCode(err, apperr.CodeNotFound, "You tried to add a meal based on non existing recipe")

	_, err = s.svc.Meals.Add(s.ctx, alice.Email, MealRequest{GroupID: g.ID, RecipeID: r.ID}, false, nil)
	s.requireCode(err, apperr.CodeValidation, "")

	s.onlyCaps(bob, g.ID, model.CapabilityAddToShoppingList)
	_, err = s.svc.Meals.Add(s.ctx, bob.Email, req, false, nil)
	s.requireCode(err, apperr.CodeForbidden, "You tried to add a meal to a group without permission")

	s.onlyCaps(bob, g.ID, model.CapabilityAddMeals)
	_, err = s.svc.Meals.Add(s.ctx, bob.Email, req, false, &l.ID)
	s.requireCode(err, apperr.CodeForbidden, "")

	meals, err := s.svc.Meals.List(s.ctx, alice.Email, mealDate.AddDate(0, 0, -1), mealDate.AddDate(0, 0, 1))
	s.Require().NoError(err)
	s.Empty(meals, "a failed add leaves no meal behind")
}

func (s *serviceSuite) TestMealAddReserveNeedsReserve() {
	alice, bob := s.user("alice"), s.user("bob")
	g := s.group(alice, "Home")
	s.join(alice, g.ID, bob)
	p := s.pantry(alice, g.ID)
	flour := s.product("flour", model.CategoryBakingGoods)
	s.stock(p.ID, model.PantryProduct{Product: flour, Quantity: 100, Unit: model.UnitGrams})
	r := s.recipe(alice, "Bread", model.RecipeProduct{Product: flour, Quantity: 100, Unit: model.UnitGrams})
	req := MealRequest{Date: mealDate, GroupID: g.ID, RecipeID: r.ID}
	s.onlyCaps(bob, g.ID, model.CapabilityAddMeals)

	_, err := s.svc.Meals.Add(s.ctx, bob.Email, req, true, nil)
	s.requireCode(err, apperr.CodeForbidden, guard.MsgNoPermission)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Denials.WithLabelValues("pantry", "no_capability")))

	lines := s.pantryLines(p.ID)
	s.Require().Len(lines, 1)
	s.Equal(100, lines[0].Quantity)
	s.Equal(0, lines[0].Reserved)

	meals, err := s.svc.Meals.List(s.ctx, alice.Email, mealDate.AddDate(0, 0, -1), mealDate.AddDate(0, 0, 1))
	s.Require().NoError(err)
	s.Empty(meals)

	res, err := s.svc.Meals.Add(s.ctx, bob.Email, req, false, nil)
	s.Require().NoError(err, "checking the pantry without reserving needs only ADD_MEALS")
	s.Empty(res.Missing)
}

func (s *serviceSuite) TestMealUpdateAndDelete() {
	alice, bob, carol := s.user("alice"), s.user("bob"), s.user("carol")
	g := s.group(alice, "Home")
	s.join(alice, g.ID, bob)
	s.join(alice, g.ID, carol)
	flour := s.product("flour", model.CategoryBakingGoods)
	bread := s.recipe(alice, "Bread", model.RecipeProduct{Product: flour, Quantity: 100, Unit: model.UnitGrams})
	cake := s.recipe(alice, "Cake", model.RecipeProduct{Product: flour, Quantity: 300, Unit: model.UnitGrams})

	res, err := s.svc.Meals.Add(s.ctx, bob.Email, MealRequest{Date: mealDate, GroupID: g.ID, RecipeID: bread.ID}, false, nil)
	s.Require().NoError(err)
	mealID := res.Meal.ID

	s.Run("creator without MODIFY_MEALS", func() {
		next := MealRequest{Date: mealDate.AddDate(0, 0, 1), RecipeID: cake.ID}
		got, err := s.svc.Meals.Update(s.ctx, bob.Email, mealID, next)
		s.Require().NoError(err)
		s.Equal(cake.ID, got.RecipeID)
		s.True(got.Date.Equal(next.Date))
	})

	s.Run("neither creator nor MODIFY_MEALS", func() {
		_, err := s.svc.Meals.Update(s.ctx, carol.Email, mealID, MealRequest{Date: mealDate, RecipeID: bread.ID})
		s.requireCode(err, apperr.CodeForbidden, "You tried to update a meal from group without permission")
		err = s.svc.Meals.Delete(s.ctx, carol.Email, mealID)
		s.requireCode(err, apperr.CodeForbidden, "You tried to delete a meal from group without permission")
	})

	s.Run("unknown recipe", func() {
		_, err := s.svc.Meals.Update(s.ctx, bob.Email, mealID, MealRequest{Date: mealDate, RecipeID: 9999})
		s.requireCode(err, apperr.CodeNotFound, "You tried to update a meal based on non existing recipe")
	})

	s.Run("MODIFY_MEALS without being the creator", func() {
		s.Require().NoError(s.svc.Meals.Delete(s.ctx, alice.Email, mealID))
		err := s.svc.Meals.Delete(s.ctx, alice.Email, mealID)
		s.requireCode(err, apperr.CodeNotFound, "You tried to delete a meal which does not exist")
	})
}

func (s *serviceSuite) TestMealList() {
	alice, carol := s.user("alice"), s.user("carol")
	g := s.group(alice, "Home")
	flour := s.product("flour", model.CategoryBakingGoods)
	r := s.recipe(alice, "Bread", model.RecipeProduct{Product: flour, Quantity: 100, Unit: model.UnitGrams})
	for _, d := range []int{3, 1, 10} {
		_, err := s.svc.Meals.Add(s.ctx, alice.Email,
			MealRequest{Date: mealDate.AddDate(0, 0, d), GroupID: g.ID, RecipeID: r.ID}, false, nil)
		s.Require().NoError(err)
	}

	meals, err := s.svc.Meals.List(s.ctx, alice.Email, mealDate, mealDate.AddDate(0, 0, 5))
	s.Require().NoError(err)
	s.Require().Len(meals, 2)
	s.True(meals[0].Date.Before(meals[1].Date))
	s.Equal("Bread", meals[0].RecipeName)

	others, err := s.svc.Meals.List(s.ctx, carol.Email, mealDate, mealDate.AddDate(0, 0, 30))
	s.Require().NoError(err)
	s.Empty(others)

	_, err = s.svc.Meals.List(s.ctx, alice.Email, mealDate.AddDate(0, 0, 1), mealDate)
	s.requireCode(err, apperr.CodeValidation, "Date before must be after date after.")
}
