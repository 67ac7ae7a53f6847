package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/pantrypal/internal/apperr"
	"github.com/dukerupert/pantrypal/internal/guard"
	"github.com/dukerupert/pantrypal/internal/model"
	"github.com/dukerupert/pantrypal/internal/reconcile"
	"github.com/dukerupert/pantrypal/internal/store"
)

// mealListLimit caps how many meals List returns.
const mealListLimit = 1000

type MealService struct {
	deps
	lists *ShoppingListProductService
}

type MealRequest struct {
	Date     time.Time `json:"date"`
	GroupID  int64     `json:"group_id"`
	RecipeID int64     `json:"recipe_id"`
}

// AddMealResult is the stored meal together with the ingredients the
// group's pantry could not supply.
type AddMealResult struct {
	Meal    *model.Meal           `json:"meal"`
	Missing []model.RecipeProduct `json:"missing"`
}

// Add plans a meal in one of the caller's groups. When the group has a
// pantry the recipe is either reserved against it or checked for missing
// ingredients; what the pantry cannot supply goes to listID when one is
// given. A group without a pantry sends every ingredient to listID.
// Requires ADD_MEALS, RESERVE on the pantry when reserving, and
// ADD_TO_SHOPPING_LIST on the list.
func (s *MealService) Add(ctx context.Context, email string, req MealRequest, reserve bool, listID *int64) (*AddMealResult, error) {
	if req.Date.IsZero() {
		return nil, apperr.Validation("Meal date is required")
	}

	result := &AddMealResult{}
	var pantryTouched bool
	var pantryID int64
	err := s.tx(ctx, "add meal", func(st *store.Stores) error {
		user, err := s.guard.User(ctx, st, email)
		if err != nil {
			return err
		}
		group, err := requireGroup(user, req.GroupID, "You tried to add a meal to a group which does not exist")
		if err != nil {
			return err
		}
		recipe, err := st.Recipes.GetByID(ctx, req.RecipeID)
		if err != nil {
			return err
		}
		if recipe == nil {
			return apperr.NotFound("You tried to add a meal based on non existing recipe")
		}
		if !guard.HasAuthority(user, group.GroupID, model.CapabilityAddMeals) {
			return apperr.Forbidden("You tried to add a meal to a group without permission")
		}

		result.Meal, err = st.Meals.Create(ctx, req.Date, group.GroupID, user.ID, recipe.ID)
		if err != nil {
			return err
		}

		toList := recipe.Products
		if group.PantryID != nil {
			pantryID = *group.PantryID
			lines, err := st.PantryProducts.ListByPantry(ctx, pantryID)
			if err != nil {
				return err
			}
			if reserve {
				if _, err := s.guard.Pantry(ctx, st, user, pantryID, model.Cap(model.CapabilityReserve)); err != nil {
					return err
				}
				changed, shortfall := reconcile.ReserveRecipe(lines, recipe.Products)
				for _, i := range changed {
					if err := st.PantryProducts.Save(ctx, lines[i]); err != nil {
						return err
					}
					s.metrics.IncReservation(true)
				}
				pantryTouched = len(changed) > 0
				toList = shortfall
			} else {
				toList = reconcile.Missing(lines, recipe.Products)
			}
		}
		result.Missing = toList

		if listID != nil {
			if _, _, err := s.lists.addIngredients(ctx, st, user, *listID, toList); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Missing == nil {
		result.Missing = []model.RecipeProduct{}
	}

	s.notify(req.GroupID, EntityMeal, ActionCreated, result.Meal.ID)
	if pantryTouched {
		s.notify(req.GroupID, EntityPantryProduct, ActionUpdated, pantryID)
	}
	if listID != nil {
		s.notify(req.GroupID, EntityShoppingListProduct, ActionCreated, *listID)
	}
	return result, nil
}

// Update moves a meal to another date or recipe. Allowed with MODIFY_MEALS
// in the meal's group or to the meal's creator.
func (s *MealService) Update(ctx context.Context, email string, mealID int64, req MealRequest) (*model.Meal, error) {
	if req.Date.IsZero() {
		return nil, apperr.Validation("Meal date is required")
	}

	var meal *model.Meal
	err := s.tx(ctx, "update meal", func(st *store.Stores) error {
		current, err := s.modifiable(ctx, st, email, mealID, "update")
		if err != nil {
			return err
		}
		if current.RecipeID != req.RecipeID {
			recipe, err := st.Recipes.GetByID(ctx, req.RecipeID)
			if err != nil {
				return err
			}
			if recipe == nil {
				return apperr.NotFound("You tried to update a meal based on non existing recipe")
			}
		}
		meal, err = st.Meals.Update(ctx, mealID, req.Date, req.RecipeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(meal.GroupID, EntityMeal, ActionUpdated, meal.ID)
	return meal, nil
}

// Delete removes a meal under the same rule as Update.
func (s *MealService) Delete(ctx context.Context, email string, mealID int64) error {
	var meal *model.Meal
	err := s.tx(ctx, "delete meal", func(st *store.Stores) error {
		var err error
		meal, err = s.modifiable(ctx, st, email, mealID, "delete")
		if err != nil {
			return err
		}
		return st.Meals.Delete(ctx, mealID)
	})
	if err != nil {
		return err
	}
	s.notify(meal.GroupID, EntityMeal, ActionDeleted, meal.ID)
	return nil
}

// List returns the meals of the caller's groups between after and before,
// earliest first.
func (s *MealService) List(ctx context.Context, email string, after, before time.Time) ([]model.Meal, error) {
	if after.After(before) {
		return nil, apperr.Validation("Date before must be after date after.")
	}

	var meals []model.Meal
	err := s.tx(ctx, "list meals", func(st *store.Stores) error {
		user, err := s.guard.User(ctx, st, email)
		if err != nil {
			return err
		}
		meals, err = st.Meals.ListForGroupsBetween(ctx, user.GroupIDs(), after, before, mealListLimit)
		return err
	})
	if meals == nil && err == nil {
		meals = []model.Meal{}
	}
	return meals, err
}

// modifiable is the one place where ownership substitutes for a capability.
func (s *MealService) modifiable(ctx context.Context, st *store.Stores, email string, mealID int64, action string) (*model.Meal, error) {
	user, err := s.guard.User(ctx, st, email)
	if err != nil {
		return nil, err
	}
	meal, err := st.Meals.GetByID(ctx, mealID)
	if err != nil {
		return nil, err
	}
	if meal == nil {
		return nil, apperr.NotFound(fmt.Sprintf("You tried to %s a meal which does not exist", action))
	}
	if !guard.HasAuthority(user, meal.GroupID, model.CapabilityModifyMeals) && meal.UserID != user.ID {
		s.logger.DebugContext(ctx, "meal change denied", "meal_id", mealID, "action", action)
		return nil, apperr.Forbidden(fmt.Sprintf("You tried to %s a meal from group without permission", action))
	}
	return meal, nil
}
