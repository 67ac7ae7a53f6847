package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Stores bundles every store over one connection or one transaction.
type Stores struct {
	db *sql.DB

	Users                *UserStore
	Groups               *GroupStore
	Authorities          *AuthorityStore
	Products             *ProductStore
	Pantries             *PantryStore
	PantryProducts       *PantryProductStore
	ShoppingLists        *ShoppingListStore
	ShoppingListProducts *ShoppingListProductStore
	Recipes              *RecipeStore
	Meals                *MealStore
}

func New(db *sql.DB) *Stores {
	return newStores(db, db)
}

func newStores(db *sql.DB, q DBTX) *Stores {
	return &Stores{
		db:                   db,
		Users:                NewUserStore(q),
		Groups:               NewGroupStore(q),
		Authorities:          NewAuthorityStore(q),
		Products:             NewProductStore(q),
		Pantries:             NewPantryStore(q),
		PantryProducts:       NewPantryProductStore(q),
		ShoppingLists:        NewShoppingListStore(q),
		ShoppingListProducts: NewShoppingListProductStore(q),
		Recipes:              NewRecipeStore(q),
		Meals:                NewMealStore(q),
	}
}

// RunInTx runs fn against stores bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise. Calling
// RunInTx on stores that are already transactional runs fn in place.
func (s *Stores) RunInTx(ctx context.Context, fn func(tx *Stores) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newStores(nil, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
