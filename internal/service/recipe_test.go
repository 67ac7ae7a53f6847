package service

import (
	"github.com/dukerupert/pantrypal/internal/apperr"
	"github.com/dukerupert/pantrypal/internal/model"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func (s *serviceSuite) TestRecipeCreate() {
	alice := s.user("alice")

	_, err := s.svc.Recipes.Create(s.ctx, alice.Email, model.Recipe{ID: 4, Name: "Soup", MealType: model.MealTypeSoup, Portions: 1})
	s.requireCode(err, apperr.CodeValidation, "Recipe id must be 0 while creating it")

	_, err = s.svc.Recipes.Create(s.ctx, alice.Email, model.Recipe{Name: "Soup", MealType: "BRUNCH", Portions: 1})
	s.requireCode(err, apperr.CodeValidation, "Recipe meal type is invalid")

	r := s.recipe(alice, "Tomato soup",
		model.RecipeProduct{Product: model.Product{Name: "tomato"}, Quantity: 4, Unit: model.UnitPieces},
		model.RecipeProduct{Product: model.Product{Name: "Basil", Category: model.CategorySpices}, Quantity: 5, Unit: model.UnitGrams},
	)
	s.Equal(alice.ID, r.CreatorID)
	s.Require().Len(r.Products, 2)
	s.NotZero(r.Products[0].Product.ID)
	s.Equal(model.CategoryVegetables, r.Products[0].Product.Category)
	s.Equal(model.CategorySpices, r.Products[1].Product.Category)

	got, err := s.svc.Recipes.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal("Tomato soup", got.Name)
	s.Len(got.Products, 2)

	_, err = s.svc.Recipes.Get(s.ctx, 9999)
	s.requireCode(err, apperr.CodeNotFound, msgRecipeNotFound)
}

func (s *serviceSuite) TestRecipeOwnership() {
	alice, bob := s.user("alice"), s.user("bob")
	r := s.recipe(alice, "Bread")

	r.Name = "Sourdough"
	_, err := s.svc.Recipes.Update(s.ctx, bob.Email, *r)
	s.requireCode(err, apperr.CodeForbidden, "You did not create this recipe so you cannot modify it")

	err = s.svc.Recipes.Delete(s.ctx, bob.Email, r.ID)
	s.requireCode(err, apperr.CodeForbidden, "You did not create this recipe so you cannot delete it")

	updated, err := s.svc.Recipes.Update(s.ctx, alice.Email, *r)
	s.Require().NoError(err)
	s.Equal("Sourdough", updated.Name)

	s.Require().NoError(s.svc.Recipes.Delete(s.ctx, alice.Email, r.ID))
	_, err = s.svc.Recipes.Get(s.ctx, r.ID)
	s.requireCode(err, apperr.CodeNotFound, "")
}

func (s *serviceSuite) TestRecipeList() {
	alice, bob := s.user("alice"), s.user("bob")
	s.recipe(alice, "Banana bread")
	s.recipe(alice, "Pancakes")
	s.recipe(bob, "Rye bread")

	all, err := s.svc.Recipes.List(s.ctx, model.PageRequest{Filter: "BREAD"})
	s.Require().NoError(err)
	s.Equal(2, all.TotalItems)

	mine, err := s.svc.Recipes.ListForUser(s.ctx, alice.Email, model.PageRequest{})
	s.Require().NoError(err)
	s.Equal(2, mine.TotalItems)
	s.Equal(1, mine.TotalPages)
}

func (s *serviceSuite) TestRecipeImage() {
	alice, bob := s.user("alice"), s.user("bob")
	r := s.recipe(alice, "Bread")

	_, _, err := s.svc.Recipes.Image(s.ctx, r.ID)
	s.requireCode(err, apperr.CodeNotFound, "Recipe has no image")

	err = s.svc.Recipes.SetImage(s.ctx, alice.Email, r.ID, []byte("plain text, not a picture"))
	s.requireCode(err, apperr.CodeForbidden, "You tried to save file in forbidden format")

	err = s.svc.Recipes.SetImage(s.ctx, bob.Email, r.ID, pngHeader)
	s.requireCode(err, apperr.CodeForbidden, "")

	s.Require().NoError(s.svc.Recipes.SetImage(s.ctx, alice.Email, r.ID, pngHeader))
	img, contentType, err := s.svc.Recipes.Image(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal("image/png", contentType)
	s.Equal(pngHeader, img)

	got, err := s.svc.Recipes.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.True(got.HasImage)

	s.Require().NoError(s.svc.Recipes.SetImage(s.ctx, alice.Email, r.ID, nil))
	_, _, err = s.svc.Recipes.Image(s.ctx, r.ID)
	s.requireCode(err, apperr.CodeNotFound, "Recipe has no image")
}
