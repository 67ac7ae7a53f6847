package service

import (
	"context"
	"time"

	"github.com/dukerupert/pantrypal/internal/apperr"
	"github.com/dukerupert/pantrypal/internal/guard"
	"github.com/dukerupert/pantrypal/internal/model"
	"github.com/dukerupert/pantrypal/internal/reconcile"
	"github.com/dukerupert/pantrypal/internal/store"
)

type ShoppingListProductService struct {
	deps
	products *ProductService
}

// List returns one page of a shopping list's lines. Membership is enough.
func (s *ShoppingListProductService) List(ctx context.Context, email string, listID int64, req model.PageRequest) (model.Page[model.ShoppingListProduct], error) {
	var page model.Page[model.ShoppingListProduct]
	err := s.tx(ctx, "list shopping list products", func(st *store.Stores) error {
		if _, _, err := s.guard.ShoppingListWithAuthority(ctx, st, email, listID, nil); err != nil {
			return err
		}
		items, total, err := st.ShoppingListProducts.Page(ctx, listID, req)
		if err != nil {
			return err
		}
		page = model.NewPage(items, req.Page, total)
		return nil
	})
	return page, err
}

// Add reconciles new lines into the list. Requires ADD_TO_SHOPPING_LIST.
func (s *ShoppingListProductService) Add(ctx context.Context, email string, listID int64, items []model.ShoppingListProduct) ([]model.ShoppingListProduct, error) {
	for _, item := range items {
		if err := reconcile.ValidateNewShoppingListLine(item); err != nil {
			return nil, err
		}
		if err := validateQuantity(item.Quantity, item.Unit, false); err != nil {
			return nil, err
		}
	}

	items = append([]model.ShoppingListProduct(nil), items...)
	var out []model.ShoppingListProduct
	var groupID int64
	err := s.tx(ctx, "add shopping list products", func(st *store.Stores) error {
		list, _, err := s.guard.ShoppingListWithAuthority(ctx, st, email, listID, model.Cap(model.CapabilityAddToShoppingList))
		if err != nil {
			return err
		}
		groupID = list.GroupID

		for i := range items {
			if items[i].Product, err = s.products.resolve(ctx, st, items[i].Product); err != nil {
				return err
			}
		}
		out, err = s.merge(ctx, st, listID, items)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(groupID, EntityShoppingListProduct, ActionCreated, listID)
	return out, nil
}

// merge reconciles items with resolved products into listID. Edits and
// merges are saved as they are found, inserts in one batch at the end.
func (s *ShoppingListProductService) merge(ctx context.Context, st *store.Stores, listID int64, items []model.ShoppingListProduct) ([]model.ShoppingListProduct, error) {
	lines, err := st.ShoppingListProducts.ListByList(ctx, listID)
	if err != nil {
		return nil, err
	}

	saved := newLineSet[model.ShoppingListProduct]()
	for _, item := range items {
		item.ShoppingListID = listID
		d, line := reconcile.ApplyShoppingList(&lines, item)
		s.metrics.IncReconciled("shopping_list", d.Action.String())
		if d.Action == reconcile.Insert || line.ID == 0 {
			continue
		}
		if err := st.ShoppingListProducts.Save(ctx, line); err != nil {
			return nil, err
		}
		saved.put(line.ID, line)
	}

	var pending []model.ShoppingListProduct
	for _, l := range lines {
		if l.ID == 0 {
			pending = append(pending, l)
		}
	}
	inserted, err := st.ShoppingListProducts.InsertMany(ctx, pending)
	if err != nil {
		return nil, err
	}
	return append(saved.list(), inserted...), nil
}

// Update edits one line. Requires MODIFY_SHOPPING_LIST.
func (s *ShoppingListProductService) Update(ctx context.Context, email string, listID int64, item model.ShoppingListProduct) (*model.ShoppingListProduct, error) {
	if item.ID == 0 {
		return nil, apperr.Validation(msgProductNotSaved)
	}
	if err := validateQuantity(item.Quantity, item.Unit, false); err != nil {
		return nil, err
	}

	var out *model.ShoppingListProduct
	var groupID int64
	err := s.tx(ctx, "update shopping list product", func(st *store.Stores) error {
		list, _, err := s.guard.ShoppingListWithAuthority(ctx, st, email, listID, model.Cap(model.CapabilityModifyShoppingList))
		if err != nil {
			return err
		}
		groupID = list.GroupID

		current, err := st.ShoppingListProducts.GetByID(ctx, item.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return apperr.NotFound("Shopping list product was not found")
		}
		if current.ShoppingListID != listID {
			return apperr.Forbidden("Cannot update products from different shopping list")
		}
		if item.Product.ID == 0 && item.Product.Name == "" {
			item.Product = current.Product
		} else if item.Product, err = s.products.resolve(ctx, st, item.Product); err != nil {
			return err
		}
		item.ShoppingListID = listID

		lines, err := st.ShoppingListProducts.ListByList(ctx, listID)
		if err != nil {
			return err
		}
		d, line := reconcile.ApplyShoppingList(&lines, item)
		s.metrics.IncReconciled("shopping_list", d.Action.String())
		if d.Action == reconcile.Insert {
			s.logger.DebugContext(ctx, "invalid shopping list product edit", "line_id", item.ID)
			return apperr.Forbidden("Cannot modify invalid shopping list product")
		}
		if err := st.ShoppingListProducts.Save(ctx, line); err != nil {
			return err
		}
		if d.Supersedes != 0 {
			if err := st.ShoppingListProducts.Delete(ctx, d.Supersedes); err != nil {
				return err
			}
		}
		out = &line
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(groupID, EntityShoppingListProduct, ActionUpdated, out.ID)
	return out, nil
}

// Remove deletes lines from the list. Requires MODIFY_SHOPPING_LIST.
func (s *ShoppingListProductService) Remove(ctx context.Context, email string, listID int64, ids []int64) error {
	var groupID int64
	err := s.tx(ctx, "remove shopping list products", func(st *store.Stores) error {
		list, lines, err := s.listWithLines(ctx, st, email, listID)
		if err != nil {
			return err
		}
		groupID = list.GroupID
		if !allOnLines(lines, ids, shoppingListLineID) {
			return apperr.Forbidden("Cannot remove products from different shopping list")
		}
		return st.ShoppingListProducts.Delete(ctx, ids...)
	})
	if err != nil {
		return err
	}
	s.notify(groupID, EntityShoppingListProduct, ActionDeleted, listID)
	return nil
}

// TogglePurchased flips the purchased flag of each listed line. Requires
// MODIFY_SHOPPING_LIST.
func (s *ShoppingListProductService) TogglePurchased(ctx context.Context, email string, listID int64, ids []int64) ([]model.ShoppingListProduct, error) {
	var out []model.ShoppingListProduct
	var groupID int64
	err := s.tx(ctx, "toggle purchased", func(st *store.Stores) error {
		list, lines, err := s.listWithLines(ctx, st, email, listID)
		if err != nil {
			return err
		}
		groupID = list.GroupID
		if !allOnLines(lines, ids, shoppingListLineID) {
			return apperr.Forbidden("Cannot modify purchase status for products which are not on shopping list")
		}

		wanted := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			wanted[id] = struct{}{}
		}
		if len(wanted) != len(ids) {
			return apperr.Forbidden("Cannot modify purchase status for products which are not on shopping list")
		}
		for _, l := range lines {
			if _, ok := wanted[l.ID]; !ok {
				continue
			}
			l.Purchased = !l.Purchased
			if err := st.ShoppingListProducts.Save(ctx, l); err != nil {
				return err
			}
			out = append(out, l)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(groupID, EntityShoppingListProduct, ActionUpdated, listID)
	return out, nil
}

// TransferToPantry moves every purchased line into the pantry of the list's
// group as new pantry lines dated today. Requires MODIFY_SHOPPING_LIST on the
// list and ADD in the group.
func (s *ShoppingListProductService) TransferToPantry(ctx context.Context, email string, listID int64) ([]model.PantryProduct, error) {
	var out []model.PantryProduct
	var groupID, pantryID int64
	err := s.tx(ctx, "transfer to pantry", func(st *store.Stores) error {
		user, err := s.guard.User(ctx, st, email)
		if err != nil {
			return err
		}
		g, err := s.guard.CheckShoppingList(user, listID, model.Cap(model.CapabilityModifyShoppingList))
		if err != nil {
			return err
		}
		groupID = g.GroupID
		if g.PantryID == nil {
			return apperr.Forbidden("Cannot transfer products because your group does not have assigned pantry")
		}
		pantryID = *g.PantryID
		if !guard.HasAuthority(user, g.GroupID, model.CapabilityAdd) {
			return apperr.Forbidden(guard.MsgNoPermission)
		}

		lines, err := st.ShoppingListProducts.ListByList(ctx, listID)
		if err != nil {
			return err
		}
		var purchasedIDs []int64
		var moved []model.PantryProduct
		today := utcDay(time.Now())
		for _, l := range lines {
			if !l.Purchased {
				continue
			}
			purchasedIDs = append(purchasedIDs, l.ID)
			moved = append(moved, model.PantryProduct{
				PantryID:     pantryID,
				Product:      l.Product,
				Quantity:     l.Quantity,
				Unit:         l.Unit,
				PurchaseDate: &today,
			})
		}
		if len(purchasedIDs) == 0 {
			return apperr.Forbidden("Cannot transfer unpurchased shopping list products")
		}

		if err := st.ShoppingListProducts.Delete(ctx, purchasedIDs...); err != nil {
			return err
		}
		out, err = st.PantryProducts.InsertMany(ctx, moved)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "transferred purchases to pantry",
		"list_id", listID, "pantry_id", pantryID, "count", len(out))
	s.notify(groupID, EntityShoppingListProduct, ActionDeleted, listID)
	s.notify(groupID, EntityPantryProduct, ActionCreated, pantryID)
	return out, nil
}

// AddRecipeIngredients adds every ingredient of a recipe to the list,
// merging with lines for the same product and unit. Requires
// ADD_TO_SHOPPING_LIST.
func (s *ShoppingListProductService) AddRecipeIngredients(ctx context.Context, email string, listID, recipeID int64) ([]model.ShoppingListProduct, error) {
	var out []model.ShoppingListProduct
	var groupID int64
	err := s.tx(ctx, "add recipe ingredients", func(st *store.Stores) error {
		user, err := s.guard.User(ctx, st, email)
		if err != nil {
			return err
		}
		recipe, err := st.Recipes.GetByID(ctx, recipeID)
		if err != nil {
			return err
		}
		if recipe == nil {
			return apperr.NotFound(msgRecipeNotFound)
		}
		var list *model.ShoppingList
		list, out, err = s.addIngredients(ctx, st, user, listID, recipe.Products)
		if err != nil {
			return err
		}
		groupID = list.GroupID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(groupID, EntityShoppingListProduct, ActionCreated, listID)
	return out, nil
}

// addIngredients checks ADD_TO_SHOPPING_LIST for an already resolved user
// and merges needs into the list.
func (s *ShoppingListProductService) addIngredients(ctx context.Context, st *store.Stores, user *model.User, listID int64, needs []model.RecipeProduct) (*model.ShoppingList, []model.ShoppingListProduct, error) {
	list, err := s.guard.ShoppingList(ctx, st, user, listID, model.Cap(model.CapabilityAddToShoppingList))
	if err != nil {
		return nil, nil, err
	}
	out, err := s.merge(ctx, st, listID, reconcile.FromRecipe(listID, needs))
	if err != nil {
		return nil, nil, err
	}
	return list, out, nil
}

func (s *ShoppingListProductService) listWithLines(ctx context.Context, st *store.Stores, email string, listID int64) (*model.ShoppingList, []model.ShoppingListProduct, error) {
	list, _, err := s.guard.ShoppingListWithAuthority(ctx, st, email, listID, model.Cap(model.CapabilityModifyShoppingList))
	if err != nil {
		return nil, nil, err
	}
	lines, err := st.ShoppingListProducts.ListByList(ctx, listID)
	if err != nil {
		return nil, nil, err
	}
	return list, lines, nil
}

func shoppingListLineID(l model.ShoppingListProduct) int64 { return l.ID }

// utcDay returns midnight UTC of the calendar day t falls on in UTC.
func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
