// Package reconcile decides how an incoming product quantity lands in a
// pantry or shopping list: as a new line, as an edit of an existing line,
// or merged into a line for the same product and unit. Nothing here
// touches storage.
package reconcile

import (
	"github.com/dukerupert/pantrypal/internal/apperr"
	"github.com/dukerupert/pantrypal/internal/model"
)

type Action int

const (
	Insert Action = iota
	Edit
	Merge
)

func (a Action) String() string {
	switch a {
	case Edit:
		return "edit"
	case Merge:
		return "merge"
	default:
		return "insert"
	}
}

// Line is the part of a pantry or shopping-list line that takes part in
// matching.
type Line struct {
	ID        int64
	ProductID int64
	Unit      model.Unit
}

// Decision is the outcome of Plan. Index points into the existing lines, as
// passed to Plan, for Edit and Merge. Supersedes is the id of the incoming line that a Merge
// replaces and that must be deleted, or 0.
type Decision struct {
	Action     Action
	Index      int
	Supersedes int64
}

// Plan scans existing in order. The first line that is either the line
// being edited (same id) or the same line (same product and unit) decides
// the outcome.
func Plan(existing []Line, incoming Line) Decision {
	for i, l := range existing {
		if incoming.ID > 0 && l.ID == incoming.ID {
			return Decision{Action: Edit, Index: i}
		}
		if l.ProductID == incoming.ProductID && l.Unit == incoming.Unit {
			d := Decision{Action: Merge, Index: i}
			if incoming.ID > 0 {
				d.Supersedes = incoming.ID
			}
			return d
		}
	}
	return Decision{Action: Insert, Index: -1}
}

func ValidateNewPantryLine(pp model.PantryProduct) error {
	if pp.ID != 0 {
		return apperr.Validation("Pantry product id must be 0 while inserting it to pantry")
	}
	if pp.Reserved > 0 {
		return apperr.Validation("Pantry product reserved quantity must be 0 while inserting it to pantry")
	}
	return nil
}

func ValidateNewShoppingListLine(lp model.ShoppingListProduct) error {
	if lp.ID > 0 {
		return apperr.Validation("Shopping list product id must be not set while inserting it to shopping list")
	}
	if lp.Purchased {
		return apperr.Validation("Shopping list product cannot be purchased while inserting it to shopping list")
	}
	return nil
}
