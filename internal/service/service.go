// Package service implements the PantryPal use cases. Every operation
// resolves the caller, checks access through the guard and runs its reads
// and writes inside one store transaction.
package service

import (
	"context"
	"log/slog"

	"github.com/dukerupert/pantrypal/internal/apperr"
	"github.com/dukerupert/pantrypal/internal/guard"
	"github.com/dukerupert/pantrypal/internal/metrics"
	"github.com/dukerupert/pantrypal/internal/model"
	"github.com/dukerupert/pantrypal/internal/store"
)

// Entity names used in change notifications.
const (
	EntityGroup               = "group"
	EntityPantry              = "pantry"
	EntityPantryProduct       = "pantry_product"
	EntityShoppingList        = "shopping_list"
	EntityShoppingListProduct = "shopping_list_product"
	EntityMeal                = "meal"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Notifier delivers change notifications to the members of a group.
type Notifier interface {
	Notify(groupID int64, entity, action string, id int64)
	Subscribe(email string, groupID int64)
	Unsubscribe(email string, groupID int64)
}

type nopNotifier struct{}

func (nopNotifier) Notify(int64, string, string, int64) {}
func (nopNotifier) Subscribe(string, int64)             {}
func (nopNotifier) Unsubscribe(string, int64)           {}

// Deps are the collaborators shared by every service.
type Deps struct {
	Stores   *store.Stores
	Guard    *guard.Guard
	Metrics  *metrics.Metrics
	Notifier Notifier
	Logger   *slog.Logger
}

// Services groups every use case behind one value for the HTTP layer.
type Services struct {
	Auth                 *AuthService
	Groups               *GroupService
	Products             *ProductService
	Pantries             *PantryService
	PantryProducts       *PantryProductService
	ShoppingLists        *ShoppingListService
	ShoppingListProducts *ShoppingListProductService
	Recipes              *RecipeService
	Meals                *MealService
}

// New wires every service over d. The token issuer is only needed by
// AuthService.
func New(d Deps, tokens TokenIssuer) *Services {
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Guard == nil {
		d.Guard = guard.New(d.Logger, d.Metrics)
	}

	products := &ProductService{deps: d.with("products")}
	shoppingListProducts := &ShoppingListProductService{deps: d.with("shopping_list_products"), products: products}
	return &Services{
		Auth:                 &AuthService{deps: d.with("auth"), tokens: tokens},
		Groups:               &GroupService{deps: d.with("groups")},
		Products:             products,
		Pantries:             &PantryService{deps: d.with("pantries")},
		PantryProducts:       &PantryProductService{deps: d.with("pantry_products"), products: products},
		ShoppingLists:        &ShoppingListService{deps: d.with("shopping_lists")},
		ShoppingListProducts: shoppingListProducts,
		Recipes:              &RecipeService{deps: d.with("recipes"), products: products},
		Meals:                &MealService{deps: d.with("meals"), lists: shoppingListProducts},
	}
}

type deps struct {
	st       *store.Stores
	guard    *guard.Guard
	metrics  *metrics.Metrics
	notifier Notifier
	logger   *slog.Logger
}

func (d Deps) with(component string) deps {
	return deps{
		st:       d.Stores,
		guard:    d.Guard,
		metrics:  d.Metrics,
		notifier: d.Notifier,
		logger:   d.Logger.With("component", component),
	}
}

// tx runs fn in one transaction. Uncoded errors are store failures and are
// logged here once.
func (d deps) tx(ctx context.Context, op string, fn func(st *store.Stores) error) error {
	err := d.st.RunInTx(ctx, fn)
	if err != nil && apperr.CodeOf(err) == apperr.CodeInternal {
		d.logger.ErrorContext(ctx, "store failure", "op", op, "error", err)
	}
	return err
}

func (d deps) notify(groupID int64, entity, action string, id int64) {
	d.notifier.Notify(groupID, entity, action, id)
}

// requireGroup returns the caller's membership in groupID, failing with
// msg when the caller is not a member.
func requireGroup(user *model.User, groupID int64, msg string) (*model.UserGroup, error) {
	g := guard.FindGroup(user, groupID)
	if g == nil {
		return nil, apperr.Forbidden(msg)
	}
	return g, nil
}

func requireAuthority(user *model.User, groupID int64, capability model.Capability) error {
	if !guard.HasAuthority(user, groupID, capability) {
		return apperr.Forbidden(guard.MsgNoPermission)
	}
	return nil
}

// validateQuantity checks an incoming line. Edits of pantry lines may drop
// quantity to zero once everything is reserved.
func validateQuantity(quantity int, unit model.Unit, allowZero bool) error {
	if quantity < 0 || (quantity == 0 && !allowZero) {
		return apperr.Validation("Quantity must be greater than 0")
	}
	if !unit.Valid() {
		return apperr.Validation("Unit is invalid")
	}
	return nil
}
