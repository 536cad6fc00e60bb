package sqlitestore_test

import (
	"context"
	"errors"
	"testing"

	"minimart/internal/domain"
	"minimart/internal/store"
	"minimart/internal/store/sqlitestore"
)

func memdb(t *testing.T) *sqlitestore.SQLite {
	t.Helper()
	st, err := sqlitestore.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

func TestUserRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := memdb(t)

	u := &domain.User{Name: "alice", Age: 20, Password: "p", Role: domain.RoleUser}
	if err := st.Users().Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 || u.Token == "" {
		t.Fatalf("create must assign id and token, got %+v", u)
	}

	got, err := st.Users().ByToken(ctx, u.Token)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Name != "alice" || got.Role != domain.RoleUser {
		t.Fatalf("token lookup: %+v", got)
	}

	if got, _ := st.Users().ByToken(ctx, "stale"); got != nil {
		t.Fatal("unknown token must resolve to nil")
	}
}

func TestDuplicateNameMapsToSentinel(t *testing.T) {
	ctx := context.Background()
	st := memdb(t)

	if err := st.Users().Create(ctx, &domain.User{Name: "bob", Age: 1, Password: "x", Role: domain.RoleUser}); err != nil {
		t.Fatal(err)
	}
	err := st.Users().Create(ctx, &domain.User{Name: "bob", Age: 2, Password: "y", Role: domain.RoleUser})
	if !errors.Is(err, store.ErrDuplicateName) {
		t.Fatalf("want ErrDuplicateName, got %v", err)
	}
}

func TestBootstrapAdminIdempotent(t *testing.T) {
	ctx := context.Background()
	st := memdb(t)

	if err := store.EnsureDefaultAdmin(ctx, st.Users()); err != nil {
		t.Fatal(err)
	}
	if err := store.EnsureDefaultAdmin(ctx, st.Users()); err != nil {
		t.Fatal(err)
	}

	var admins int
	if err := st.DB().Get(&admins, `SELECT COUNT(*) FROM users WHERE role='admin'`); err != nil {
		t.Fatal(err)
	}
	if admins != 1 {
		t.Fatalf("want exactly one admin, got %d", admins)
	}
}

func TestMissingIDMutationsSilentlySucceed(t *testing.T) {
	ctx := context.Background()
	st := memdb(t)

	if err := st.Users().Update(ctx, 9999, "ghost", 1); err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if err := st.Products().Delete(ctx, 9999); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if n, _ := st.Users().Count(ctx); n != 0 {
		t.Fatalf("store mutated: %d users", n)
	}
}

func TestProductOrderingAndSearch(t *testing.T) {
	ctx := context.Background()
	st := memdb(t)

	for _, p := range []domain.Product{
		{Name: "NES Console", Price: 199},
		{Name: "Game Boy Color", Price: 129},
		{Name: "SNES Console", Price: 249},
	} {
		p := p
		if err := st.Products().Create(ctx, &p); err != nil {
			t.Fatal(err)
		}
	}

	list, err := st.Products().List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].Price != 129 || list[2].Price != 249 {
		t.Fatalf("want price-ascending list, got %+v", list)
	}

	found, err := st.Products().SearchByName(ctx, "console")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 2 {
		t.Fatalf("case-insensitive substring search: want 2, got %d", len(found))
	}

	all, err := st.Products().SearchByName(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("empty query lists all, got %d", len(all))
	}
}

func TestUpdateAndListByName(t *testing.T) {
	ctx := context.Background()
	st := memdb(t)

	u := &domain.User{Name: "carol", Age: 25, Password: "p", Role: domain.RoleUser}
	if err := st.Users().Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	if err := st.Users().Create(ctx, &domain.User{Name: "bob", Age: 30, Password: "p", Role: domain.RoleUser}); err != nil {
		t.Fatal(err)
	}

	if err := st.Users().Update(ctx, u.ID, "alice", 26); err != nil {
		t.Fatal(err)
	}
	got, _ := st.Users().ByID(ctx, u.ID)
	if got == nil || got.Name != "alice" || got.Age != 26 {
		t.Fatalf("update not applied: %+v", got)
	}

	sorted, err := st.Users().ListByName(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sorted) != 2 || sorted[0].Name != "alice" || sorted[1].Name != "bob" {
		t.Fatalf("want name-sorted users, got %+v", sorted)
	}
}

func TestUpdateToTakenNameRejected(t *testing.T) {
	ctx := context.Background()
	st := memdb(t)

	alice := &domain.User{Name: "alice", Age: 20, Password: "p", Role: domain.RoleUser}
	bob := &domain.User{Name: "bob", Age: 22, Password: "q", Role: domain.RoleUser}
	if err := st.Users().Create(ctx, alice); err != nil {
		t.Fatal(err)
	}
	if err := st.Users().Create(ctx, bob); err != nil {
		t.Fatal(err)
	}

	err := st.Users().Update(ctx, bob.ID, "alice", 23)
	if !errors.Is(err, store.ErrDuplicateName) {
		t.Fatalf("want ErrDuplicateName, got %v", err)
	}
	got, _ := st.Users().ByID(ctx, bob.ID)
	if got == nil || got.Name != "bob" || got.Age != 22 {
		t.Fatalf("rejected rename must not apply: %+v", got)
	}

	// Same name, same user: no collision.
	if err := st.Users().Update(ctx, bob.ID, "bob", 23); err != nil {
		t.Fatalf("self-rename: %v", err)
	}
}
