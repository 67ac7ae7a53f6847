package service

import (
	"context"
	"strings"

	"github.com/dukerupert/pantrypal/internal/apperr"
	"github.com/dukerupert/pantrypal/internal/model"
	"github.com/dukerupert/pantrypal/internal/reconcile"
	"github.com/dukerupert/pantrypal/internal/store"
)

const (
	msgPantryProductNotFound = "Pantry product was not found"
	msgProductNotSaved       = "Cannot modify product because it doesn't exist"
)

type PantryProductService struct {
	deps
	products *ProductService
}

// List returns one page of a pantry's lines. Membership is enough.
func (s *PantryProductService) List(ctx context.Context, email string, pantryID int64, req model.PageRequest) (model.Page[model.PantryProduct], error) {
	var page model.Page[model.PantryProduct]
	err := s.tx(ctx, "list pantry products", func(st *store.Stores) error {
		if _, _, err := s.guard.PantryWithAuthority(ctx, st, email, pantryID, nil); err != nil {
			return err
		}
		items, total, err := st.PantryProducts.Page(ctx, pantryID, req)
		if err != nil {
			return err
		}
		page = model.NewPage(items, req.Page, total)
		return nil
	})
	return page, err
}

// Add reconciles new lines into the pantry. A line for a product and unit
// already in the pantry is merged into it; the rest are inserted together.
// Requires ADD.
func (s *PantryProductService) Add(ctx context.Context, email string, pantryID int64, items []model.PantryProduct) ([]model.PantryProduct, error) {
	for _, item := range items {
		if err := reconcile.ValidateNewPantryLine(item); err != nil {
			return nil, err
		}
		if err := validateQuantity(item.Quantity, item.Unit, false); err != nil {
			return nil, err
		}
	}

	var out []model.PantryProduct
	var groupID int64
	err := s.tx(ctx, "add pantry products", func(st *store.Stores) error {
		pantry, _, err := s.guard.PantryWithAuthority(ctx, st, email, pantryID, model.Cap(model.CapabilityAdd))
		if err != nil {
			return err
		}
		groupID = pantry.GroupID

		lines, err := st.PantryProducts.ListByPantry(ctx, pantryID)
		if err != nil {
			return err
		}

		saved := newLineSet[model.PantryProduct]()
		for _, item := range items {
			if item.Product, err = s.products.resolve(ctx, st, item.Product); err != nil {
				return err
			}
			item.PantryID = pantryID
			item.Placement = strings.TrimSpace(item.Placement)

			d, line := reconcile.ApplyPantry(&lines, item)
			s.metrics.IncReconciled("pantry", d.Action.String())
			if d.Action == reconcile.Insert || line.ID == 0 {
				continue
			}
			if err := st.PantryProducts.Save(ctx, line); err != nil {
				return err
			}
			saved.put(line.ID, line)
		}

		inserted, err := st.PantryProducts.InsertMany(ctx, pendingPantryLines(lines))
		if err != nil {
			return err
		}
		out = append(saved.list(), inserted...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(groupID, EntityPantryProduct, ActionCreated, pantryID)
	return out, nil
}

// Update edits existing lines. Editing a line into the product and unit of
// another line merges the two. Requires MODIFY.
func (s *PantryProductService) Update(ctx context.Context, email string, pantryID int64, items []model.PantryProduct) ([]model.PantryProduct, error) {
	for _, item := range items {
		if item.ID == 0 {
			return nil, apperr.Validation(msgProductNotSaved)
		}
		if err := validateQuantity(item.Quantity, item.Unit, true); err != nil {
			return nil, err
		}
		if item.Reserved < 0 {
			return nil, apperr.Validation("Reserved quantity cannot be negative")
		}
	}

	var out []model.PantryProduct
	var groupID int64
	err := s.tx(ctx, "update pantry products", func(st *store.Stores) error {
		pantry, _, err := s.guard.PantryWithAuthority(ctx, st, email, pantryID, model.Cap(model.CapabilityModify))
		if err != nil {
			return err
		}
		groupID = pantry.GroupID

		lines, err := st.PantryProducts.ListByPantry(ctx, pantryID)
		if err != nil {
			return err
		}

		saved := newLineSet[model.PantryProduct]()
		for _, item := range items {
			current, err := st.PantryProducts.GetByID(ctx, item.ID)
			if err != nil {
				return err
			}
			if current == nil {
				return apperr.NotFound(msgPantryProductNotFound)
			}
			if current.PantryID != pantryID {
				return apperr.Forbidden("Cannot update products from different pantry")
			}
			if item.Product.ID == 0 && strings.TrimSpace(item.Product.Name) == "" {
				item.Product = current.Product
			} else if item.Product, err = s.products.resolve(ctx, st, item.Product); err != nil {
				return err
			}
			item.PantryID = pantryID
			item.Placement = strings.TrimSpace(item.Placement)

			d, line := reconcile.ApplyPantry(&lines, item)
			s.metrics.IncReconciled("pantry", d.Action.String())
			if d.Action == reconcile.Insert {
				return apperr.Forbidden("Cannot modify invalid pantry product")
			}
			if err := st.PantryProducts.Save(ctx, line); err != nil {
				return err
			}
			saved.put(line.ID, line)
			if d.Supersedes != 0 {
				if err := st.PantryProducts.Delete(ctx, d.Supersedes); err != nil {
					return err
				}
				saved.drop(d.Supersedes)
			}
		}
		out = saved.list()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(groupID, EntityPantryProduct, ActionUpdated, pantryID)
	return out, nil
}

// Delete removes lines from the pantry. Every id must be a line of this
// pantry. Requires MODIFY.
func (s *PantryProductService) Delete(ctx context.Context, email string, pantryID int64, ids []int64) error {
	var groupID int64
	err := s.tx(ctx, "delete pantry products", func(st *store.Stores) error {
		pantry, _, err := s.guard.PantryWithAuthority(ctx, st, email, pantryID, model.Cap(model.CapabilityModify))
		if err != nil {
			return err
		}
		groupID = pantry.GroupID

		lines, err := st.PantryProducts.ListByPantry(ctx, pantryID)
		if err != nil {
			return err
		}
		if !allOnLines(lines, ids, func(l model.PantryProduct) int64 { return l.ID }) {
			return apperr.Forbidden("Cannot remove products from different pantry")
		}
		return st.PantryProducts.Delete(ctx, ids...)
	})
	if err != nil {
		return err
	}
	s.notify(groupID, EntityPantryProduct, ActionDeleted, pantryID)
	return nil
}

// Reserve moves amount from a line's quantity into its reservation; a
// negative amount releases it. When the line cannot cover the change the
// result is nil with no error and nothing is stored. Requires RESERVE.
func (s *PantryProductService) Reserve(ctx context.Context, email string, pantryID, lineID int64, amount int) (*model.PantryProduct, error) {
	var out *model.PantryProduct
	var groupID int64
	err := s.tx(ctx, "reserve pantry product", func(st *store.Stores) error {
		pantry, _, err := s.guard.PantryWithAuthority(ctx, st, email, pantryID, model.Cap(model.CapabilityReserve))
		if err != nil {
			return err
		}
		groupID = pantry.GroupID

		line, err := st.PantryProducts.GetByID(ctx, lineID)
		if err != nil {
			return err
		}
		if line == nil {
			return apperr.NotFound(msgPantryProductNotFound)
		}
		if line.PantryID != pantryID {
			return apperr.Forbidden("Cannot reserve products from different pantry")
		}

		reserved, ok := reconcile.Reserve(*line, amount)
		s.metrics.IncReservation(ok)
		if !ok {
			s.logger.DebugContext(ctx, "reservation rejected", "line_id", lineID, "amount", amount,
				"quantity", line.Quantity, "reserved", line.Reserved)
			return nil
		}
		if err := st.PantryProducts.Save(ctx, reserved); err != nil {
			return err
		}
		out = &reserved
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out != nil {
		s.notify(groupID, EntityPantryProduct, ActionUpdated, out.ID)
	}
	return out, nil
}

func pendingPantryLines(lines []model.PantryProduct) []model.PantryProduct {
	var pending []model.PantryProduct
	for _, l := range lines {
		if l.ID == 0 {
			pending = append(pending, l)
		}
	}
	return pending
}

// lineSet keeps the latest version of each saved line in first-saved order.
type lineSet[T any] struct {
	order []int64
	byID  map[int64]T
}

func newLineSet[T any]() *lineSet[T] {
	return &lineSet[T]{byID: make(map[int64]T)}
}

func (s *lineSet[T]) put(id int64, line T) {
	if _, ok := s.byID[id]; !ok {
		s.order = append(s.order, id)
	}
	s.byID[id] = line
}

func (s *lineSet[T]) drop(id int64) {
	delete(s.byID, id)
}

func (s *lineSet[T]) list() []T {
	out := make([]T, 0, len(s.byID))
	for _, id := range s.order {
		if l, ok := s.byID[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

func allOnLines[T any](lines []T, ids []int64, idOf func(T) int64) bool {
	present := make(map[int64]struct{}, len(lines))
	for _, l := range lines {
		present[idOf(l)] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			return false
		}
	}
	return true
}
