package service

import (
	"github.com/dukerupert/pantrypal/internal/model"
)

func (s *serviceSuite) TestProductResolveReusesNameAndCategory() {
	alice := s.user("alice")
	g := s.group(alice, "Home")
	p := s.pantry(alice, g.ID)
	salt := s.product("salt", model.CategoryOther)

	out, err := s.svc.PantryProducts.Add(s.ctx, alice.Email, p.ID, []model.PantryProduct{
		{Product: model.Product{Name: "salt", Category: model.CategoryOther}, Quantity: 1, Unit: model.UnitGrams},
	})
	s.Require().NoError(err)
	s.Equal(salt.ID, out[0].Product.ID, "same name and category reuses the catalog row")

	out, err = s.svc.PantryProducts.Add(s.ctx, alice.Email, p.ID, []model.PantryProduct{
		{Product: model.Product{Name: "salt", Category: model.CategorySpices}, Quantity: 1, Unit: model.UnitGrams},
	})
	s.Require().NoError(err)
	spiced := out[0].Product
	s.NotEqual(salt.ID, spiced.ID)

	// A second SPICES submission finds the row created above even though
	// the oldest salt row has another category.
	out, err = s.svc.PantryProducts.Add(s.ctx, alice.Email, p.ID, []model.PantryProduct{
		{Product: model.Product{Name: "salt", Category: model.CategorySpices}, Quantity: 1, Unit: model.UnitPieces},
	})
	s.Require().NoError(err)
	s.Equal(spiced.ID, out[0].Product.ID)

	found, err := s.st.Products.FindByName(s.ctx, "salt")
	s.Require().NoError(err)
	s.Len(found, 2)
	s.Equal(salt.ID, found[0].ID)
}

func (s *serviceSuite) TestProductSearch() {
	s.product("flour", model.CategoryBakingGoods)
	s.product("sunflower oil", model.CategoryOther)
	s.product("milk", model.CategoryDairy)

	page, err := s.svc.Products.Search(s.ctx, model.PageRequest{Filter: "FLO"})
	s.Require().NoError(err)
	s.Equal(2, page.TotalItems)
	s.Len(page.Items, 2)
}
