package store

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/pantrypal/internal/database"
	"github.com/dukerupert/pantrypal/internal/model"
)

func setupTestStores(t *testing.T) *Stores {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func createUser(t *testing.T, s *Stores, username string) *model.User {
	t.Helper()
	u, err := s.Users.Create(context.Background(), username, username+"@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func createGroup(t *testing.T, s *Stores, name string, creatorID int64) *model.Group {
	t.Helper()
	g, err := s.Groups.Create(context.Background(), name, creatorID)
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	return g
}

func createProduct(t *testing.T, s *Stores, name string, category model.Category) *model.Product {
	t.Helper()
	p, err := s.Products.Create(context.Background(), name, category)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func TestRunInTxCommits(t *testing.T) {
	s := setupTestStores(t)
	ctx := context.Background()

	err := s.RunInTx(ctx, func(tx *Stores) error {
		_, err := tx.Users.Create(ctx, "alice", "alice@example.com", "hash")
		return err
	})
	if err != nil {
		t.Fatalf("run in tx: %v", err)
	}

	u, err := s.Users.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u == nil {
		t.Fatal("expected committed user")
	}
}

func TestRunInTxRollsBack(t *testing.T) {
	s := setupTestStores(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunInTx(ctx, func(tx *Stores) error {
		if _, err := tx.Users.Create(ctx, "bob", "bob@example.com", "hash"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}

	u, err := s.Users.GetByEmail(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u != nil {
		t.Error("expected rolled back user to be absent")
	}
}

func TestRunInTxNested(t *testing.T) {
	s := setupTestStores(t)
	ctx := context.Background()

	err := s.RunInTx(ctx, func(tx *Stores) error {
		return tx.RunInTx(ctx, func(inner *Stores) error {
			if inner != tx {
				t.Error("expected nested call to reuse the transaction")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("run in tx: %v", err)
	}
}

func TestUserNotFound(t *testing.T) {
	s := setupTestStores(t)

	u, err := s.Users.GetByEmail(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u != nil {
		t.Errorf("expected nil user, got %+v", u)
	}
}

func TestUserEmailUnique(t *testing.T) {
	s := setupTestStores(t)
	ctx := context.Background()
	createUser(t, s, "alice")

	if _, err := s.Users.Create(ctx, "alice2", "alice@example.com", "hash"); err == nil {
		t.Error("expected duplicate email to fail")
	}
}

func TestListMemberships(t *testing.T) {
	s := setupTestStores(t)
	ctx := context.Background()

	alice := createUser(t, s, "alice")
	home := createGroup(t, s, "Home", alice.ID)
	work := createGroup(t, s, "Work", alice.ID)

	pantry, err := s.Pantries.Create(ctx, home.ID, "Kitchen")
	if err != nil {
		t.Fatalf("create pantry: %v", err)
	}
	l1, _ := s.ShoppingLists.Create(ctx, home.ID, "Weekly", alice.ID)
	l2, _ := s.ShoppingLists.Create(ctx, home.ID, "Party", alice.ID)

	groups, err := s.Users.ListMemberships(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list memberships: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	if groups[0].GroupID != home.ID {
		t.Fatalf("groups[0].GroupID = %d, want %d", groups[0].GroupID, home.ID)
	}
	if groups[0].PantryID == nil || *groups[0].PantryID != pantry.ID {
		t.Errorf("home pantry = %v, want %d", groups[0].PantryID, pantry.ID)
	}
	if len(groups[0].ShoppingListIDs) != 2 || groups[0].ShoppingListIDs[0] != l1.ID || groups[0].ShoppingListIDs[1] != l2.ID {
		t.Errorf("home lists = %v, want [%d %d]", groups[0].ShoppingListIDs, l1.ID, l2.ID)
	}

	if groups[1].GroupID != work.ID {
		t.Fatalf("groups[1].GroupID = %d, want %d", groups[1].GroupID, work.ID)
	}
	if groups[1].PantryID != nil {
		t.Errorf("work pantry = %d, want nil", *groups[1].PantryID)
	}
	if len(groups[1].ShoppingListIDs) != 0 {
		t.Errorf("work lists = %v, want none", groups[1].ShoppingListIDs)
	}
}

func TestGroupMembers(t *testing.T) {
	s := setupTestStores(t)
	ctx := context.Background()

	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")
	g := createGroup(t, s, "Home", alice.ID)

	if err := s.Groups.AddMember(ctx, g.ID, bob.ID); err != nil {
		t.Fatalf("add member: %v", err)
	}
	members, err := s.Groups.ListMembers(ctx, g.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	ok, err := s.Groups.IsMember(ctx, g.ID, bob.ID)
	if err != nil || !ok {
		t.Errorf("IsMember(bob) = %v, %v; want true", ok, err)
	}

	if err := s.Groups.RemoveMember(ctx, g.ID, bob.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	ok, _ = s.Groups.IsMember(ctx, g.ID, bob.ID)
	if ok {
		t.Error("expected bob removed")
	}
}

func TestDeleteGroupCascades(t *testing.T) {
	s := setupTestStores(t)
	ctx := context.Background()

	alice := createUser(t, s, "alice")
	g := createGroup(t, s, "Home", alice.ID)
	pantry, _ := s.Pantries.Create(ctx, g.ID, "Kitchen")
	list, _ := s.ShoppingLists.Create(ctx, g.ID, "Weekly", alice.ID)
	s.Authorities.Grant(ctx, []model.Authority{{UserID: alice.ID, GroupID: g.ID, Capability: model.CapabilityAdd}})

	if err := s.Groups.Delete(ctx, g.ID); err != nil {
		t.Fatalf("delete group: %v", err)
	}

	if p, _ := s.Pantries.GetByID(ctx, pantry.ID); p != nil {
		t.Error("expected pantry deleted with group")
	}
	if l, _ := s.ShoppingLists.GetByID(ctx, list.ID); l != nil {
		t.Error("expected shopping list deleted with group")
	}
	auths, _ := s.Authorities.ListByUser(ctx, alice.ID)
	if len(auths) != 0 {
		t.Errorf("expected authorities deleted, got %d", len(auths))
	}
}

func TestAuthorityGrantIgnoresDuplicates(t *testing.T) {
	s := setupTestStores(t)
	ctx := context.Background()

	alice := createUser(t, s, "alice")
	g := createGroup(t, s, "Home", alice.ID)

	grant := []model.Authority{
		{UserID: alice.ID, GroupID: g.ID, Capability: model.CapabilityAdd},
		{UserID: alice.ID, GroupID: g.ID, Capability: model.CapabilityReserve},
	}
	if err := s.Authorities.Grant(ctx, grant); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := s.Authorities.Grant(ctx, grant[:1]); err != nil {
		t.Fatalf("grant again: %v", err)
	}

	auths, err := s.Authorities.ListByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(auths) != 2 {
		t.Fatalf("expected 2 authorities, got %d", len(auths))
	}

	if err := s.Authorities.Revoke(ctx, alice.ID, g.ID, []model.Capability{model.CapabilityAdd}); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	auths, _ = s.Authorities.ListByGroup(ctx, g.ID)
	if len(auths) != 1 || auths[0].Capability != model.CapabilityReserve {
		t.Errorf("after revoke = %+v, want only RESERVE", auths)
	}
}
