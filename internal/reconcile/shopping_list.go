package reconcile

import "github.com/dukerupert/pantrypal/internal/model"

func shoppingListLines(lines []model.ShoppingListProduct) []Line {
	out := make([]Line, len(lines))
	for i, lp := range lines {
		out[i] = Line{ID: lp.ID, ProductID: lp.Product.ID, Unit: lp.Unit}
	}
	return out
}

// ApplyShoppingList reconciles incoming into lines, mutating lines in
// place. An Edit overwrites quantity and unit. A Merge adds incoming's
// quantity onto the matched line. An Insert appends a new unpurchased line.
// The returned line is the one to persist.
func ApplyShoppingList(lines *[]model.ShoppingListProduct, incoming model.ShoppingListProduct) (Decision, model.ShoppingListProduct) {
	d := Plan(shoppingListLines(*lines), Line{ID: incoming.ID, ProductID: incoming.Product.ID, Unit: incoming.Unit})

	switch d.Action {
	case Edit:
		l := &(*lines)[d.Index]
		l.Quantity = incoming.Quantity
		l.Unit = incoming.Unit
		return d, *l
	case Merge:
		l := &(*lines)[d.Index]
		l.Quantity += incoming.Quantity
		merged := *l
		if d.Supersedes != 0 {
			*lines = removeShoppingListLine(*lines, d.Supersedes)
		}
		return d, merged
	default:
		line := incoming
		line.ID = 0
		line.Purchased = false
		*lines = append(*lines, line)
		return d, line
	}
}

func removeShoppingListLine(lines []model.ShoppingListProduct, id int64) []model.ShoppingListProduct {
	out := lines[:0]
	for _, l := range lines {
		if l.ID != id {
			out = append(out, l)
		}
	}
	return out
}

// FromRecipe builds the shopping-list lines to add for recipe ingredients.
func FromRecipe(listID int64, needs []model.RecipeProduct) []model.ShoppingListProduct {
	out := make([]model.ShoppingListProduct, len(needs))
	for i, rp := range needs {
		out[i] = model.ShoppingListProduct{
			ShoppingListID: listID,
			Product:        rp.Product,
			Quantity:       rp.Quantity,
			Unit:           rp.Unit,
		}
	}
	return out
}
