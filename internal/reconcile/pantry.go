package reconcile

import "github.com/dukerupert/pantrypal/internal/model"

func pantryLines(lines []model.PantryProduct) []Line {
	out := make([]Line, len(lines))
	for i, pp := range lines {
		out[i] = Line{ID: pp.ID, ProductID: pp.Product.ID, Unit: pp.Unit}
	}
	return out
}

// ApplyPantry reconciles incoming into lines, mutating lines in place. An
// Edit overwrites the matched line's quantity, unit, reservation, dates and
// placement. A Merge adds incoming's quantity and reservation onto the
// matched line. An Insert appends a new line with the reservation cleared.
// The returned line is the one to persist.
func ApplyPantry(lines *[]model.PantryProduct, incoming model.PantryProduct) (Decision, model.PantryProduct) {
	d := Plan(pantryLines(*lines), Line{ID: incoming.ID, ProductID: incoming.Product.ID, Unit: incoming.Unit})

	switch d.Action {
	case Edit:
		l := &(*lines)[d.Index]
		l.Quantity = incoming.Quantity
		l.Unit = incoming.Unit
		l.Reserved = incoming.Reserved
		l.Placement = incoming.Placement
		l.PurchaseDate = incoming.PurchaseDate
		l.ExpirationDate = incoming.ExpirationDate
		return d, *l
	case Merge:
		l := &(*lines)[d.Index]
		l.Quantity += incoming.Quantity
		l.Reserved += incoming.Reserved
		merged := *l
		if d.Supersedes != 0 {
			*lines = removePantryLine(*lines, d.Supersedes)
		}
		return d, merged
	default:
		line := incoming
		line.ID = 0
		line.Reserved = 0
		*lines = append(*lines, line)
		return d, line
	}
}

func removePantryLine(lines []model.PantryProduct, id int64) []model.PantryProduct {
	out := lines[:0]
	for _, l := range lines {
		if l.ID != id {
			out = append(out, l)
		}
	}
	return out
}

// Reserve moves delta from a line's quantity into its reservation. A
// negative delta releases a reservation back into quantity. When either
// counter would go negative the line is returned unchanged with ok false.
func Reserve(line model.PantryProduct, delta int) (model.PantryProduct, bool) {
	if delta > line.Quantity || -delta > line.Reserved {
		return line, false
	}
	line.Reserved += delta
	line.Quantity -= delta
	return line, true
}

// Covers reports whether have can supply need: same product, same unit and
// at least as much quantity.
func Covers(need model.RecipeProduct, have model.PantryProduct) bool {
	return need.Product.ID == have.Product.ID &&
		need.Unit == have.Unit &&
		need.Quantity <= have.Quantity
}

// ReserveRecipe reserves each ingredient against the first pantry line that
// covers it, mutating lines in place. It returns the indexes of the lines it
// changed, in the order they were changed, and the ingredients no line
// could cover.
func ReserveRecipe(lines []model.PantryProduct, needs []model.RecipeProduct) (changed []int, shortfall []model.RecipeProduct) {
	for _, need := range needs {
		idx := -1
		for i := range lines {
			if Covers(need, lines[i]) {
				idx = i
				break
			}
		}
		if idx < 0 {
			shortfall = append(shortfall, need)
			continue
		}
		lines[idx].Reserved += need.Quantity
		lines[idx].Quantity -= need.Quantity
		changed = append(changed, idx)
	}
	return changed, shortfall
}

// Missing returns the ingredients no pantry line covers.
func Missing(lines []model.PantryProduct, needs []model.RecipeProduct) []model.RecipeProduct {
	var missing []model.RecipeProduct
	for _, need := range needs {
		covered := false
		for _, l := range lines {
			if Covers(need, l) {
				covered = true
				break
			}
		}
		if !covered {
			missing = append(missing, need)
		}
	}
	return missing
}
