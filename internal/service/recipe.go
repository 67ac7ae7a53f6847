package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dukerupert/pantrypal/internal/apperr"
	"github.com/dukerupert/pantrypal/internal/imagecodec"
	"github.com/dukerupert/pantrypal/internal/model"
	"github.com/dukerupert/pantrypal/internal/store"
)

const msgRecipeNotFound = "Recipe was not found"

type RecipeService struct {
	deps
	products *ProductService
}

func validateRecipe(r model.Recipe) error {
	if strings.TrimSpace(r.Name) == "" {
		return apperr.Validation("Recipe name cannot be empty")
	}
	if !r.MealType.Valid() {
		return apperr.Validation("Recipe meal type is invalid")
	}
	if r.Portions <= 0 {
		return apperr.Validation("Recipe portions must be greater than 0")
	}
	if r.PreparationTime < 0 {
		return apperr.Validation("Recipe preparation time cannot be negative")
	}
	for _, rp := range r.Products {
		if err := validateQuantity(rp.Quantity, rp.Unit, false); err != nil {
			return err
		}
	}
	return nil
}

// Create stores a new recipe owned by the caller.
func (s *RecipeService) Create(ctx context.Context, email string, r model.Recipe) (*model.Recipe, error) {
	if r.ID != 0 {
		return nil, apperr.Validation("Recipe id must be 0 while creating it")
	}
	if err := validateRecipe(r); err != nil {
		return nil, err
	}

	var created *model.Recipe
	err := s.tx(ctx, "create recipe", func(st *store.Stores) error {
		user, err := s.guard.User(ctx, st, email)
		if err != nil {
			return err
		}
		if r.Products, err = s.resolveProducts(ctx, st, r.Products); err != nil {
			return err
		}
		r.Name = strings.TrimSpace(r.Name)
		r.CreatorID = user.ID
		created, err = st.Recipes.Create(ctx, r)
		return err
	})
	return created, err
}

func (s *RecipeService) Get(ctx context.Context, recipeID int64) (*model.Recipe, error) {
	var recipe *model.Recipe
	err := s.tx(ctx, "get recipe", func(st *store.Stores) error {
		var err error
		recipe, err = st.Recipes.GetByID(ctx, recipeID)
		if err != nil {
			return err
		}
		if recipe == nil {
			return apperr.NotFound(msgRecipeNotFound)
		}
		return nil
	})
	return recipe, err
}

// List pages over every recipe, filtered on name.
func (s *RecipeService) List(ctx context.Context, req model.PageRequest) (model.Page[model.Recipe], error) {
	return s.page(ctx, req, nil)
}

// ListForUser pages over the caller's own recipes.
func (s *RecipeService) ListForUser(ctx context.Context, email string, req model.PageRequest) (model.Page[model.Recipe], error) {
	user, err := s.guard.User(ctx, s.st, email)
	if err != nil {
		return model.Page[model.Recipe]{}, err
	}
	return s.page(ctx, req, &user.ID)
}

func (s *RecipeService) page(ctx context.Context, req model.PageRequest, creatorID *int64) (model.Page[model.Recipe], error) {
	var page model.Page[model.Recipe]
	err := s.tx(ctx, "list recipes", func(st *store.Stores) error {
		items, total, err := st.Recipes.Page(ctx, req, creatorID)
		if err != nil {
			return err
		}
		page = model.NewPage(items, req.Page, total)
		return nil
	})
	return page, err
}

// Update overwrites a recipe and its ingredients. Only the creator may
// change a recipe.
func (s *RecipeService) Update(ctx context.Context, email string, r model.Recipe) (*model.Recipe, error) {
	if err := validateRecipe(r); err != nil {
		return nil, err
	}

	var updated *model.Recipe
	err := s.tx(ctx, "update recipe", func(st *store.Stores) error {
		if _, err := s.owned(ctx, st, email, r.ID, "modify"); err != nil {
			return err
		}
		var err error
		if r.Products, err = s.resolveProducts(ctx, st, r.Products); err != nil {
			return err
		}
		r.Name = strings.TrimSpace(r.Name)
		updated, err = st.Recipes.Update(ctx, r)
		return err
	})
	return updated, err
}

// Delete removes a recipe. Meals planned from it go with it.
func (s *RecipeService) Delete(ctx context.Context, email string, recipeID int64) error {
	return s.tx(ctx, "delete recipe", func(st *store.Stores) error {
		if _, err := s.owned(ctx, st, email, recipeID, "delete"); err != nil {
			return err
		}
		return st.Recipes.Delete(ctx, recipeID)
	})
}

// SetImage stores a compressed copy of raw as the recipe's image. An empty
// raw removes the image.
func (s *RecipeService) SetImage(ctx context.Context, email string, recipeID int64, raw []byte) error {
	var compressed []byte
	if len(raw) > 0 {
		var err error
		compressed, _, err = imagecodec.Encode(raw)
		switch {
		case errors.Is(err, imagecodec.ErrNotImage):
			return apperr.Forbidden("You tried to save file in forbidden format")
		case errors.Is(err, imagecodec.ErrTooLarge):
			return apperr.Validation(fmt.Sprintf("Image cannot be larger than %d bytes", imagecodec.MaxImageSize))
		case err != nil:
			return err
		}
	}

	return s.tx(ctx, "set recipe image", func(st *store.Stores) error {
		if _, err := s.owned(ctx, st, email, recipeID, "modify"); err != nil {
			return err
		}
		return st.Recipes.SetImage(ctx, recipeID, compressed)
	})
}

// Image returns the decoded recipe image and its content type.
func (s *RecipeService) Image(ctx context.Context, recipeID int64) ([]byte, string, error) {
	var compressed []byte
	err := s.tx(ctx, "get recipe image", func(st *store.Stores) error {
		recipe, err := st.Recipes.GetByID(ctx, recipeID)
		if err != nil {
			return err
		}
		if recipe == nil {
			return apperr.NotFound(msgRecipeNotFound)
		}
		compressed, err = st.Recipes.Image(ctx, recipeID)
		if err != nil {
			return err
		}
		if compressed == nil {
			return apperr.NotFound("Recipe has no image")
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return imagecodec.Decode(compressed)
}

func (s *RecipeService) owned(ctx context.Context, st *store.Stores, email string, recipeID int64, action string) (*model.Recipe, error) {
	user, err := s.guard.User(ctx, st, email)
	if err != nil {
		return nil, err
	}
	recipe, err := st.Recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, apperr.NotFound(msgRecipeNotFound)
	}
	if recipe.CreatorID != user.ID {
		return nil, apperr.Forbidden(fmt.Sprintf("You did not create this recipe so you cannot %s it", action))
	}
	return recipe, nil
}

func (s *RecipeService) resolveProducts(ctx context.Context, st *store.Stores, in []model.RecipeProduct) ([]model.RecipeProduct, error) {
	out := make([]model.RecipeProduct, len(in))
	for i, rp := range in {
		p, err := s.products.resolve(ctx, st, rp.Product)
		if err != nil {
			return nil, err
		}
		rp.Product = p
		out[i] = rp
	}
	return out, nil
}
