package handlers_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"minimart/internal/domain"
)

func TestAdminUpdatesUserAndProduct(t *testing.T) {
	app, st := newTestApp(t)
	ctx := context.Background()
	alice := mustCreateUser(t, st, "alice", "p", 20, domain.RoleUser)
	admin, _ := st.Users().ByName(ctx, "admin")
	adminCookie := &http.Cookie{Name: "auth_token", Value: admin.Token}

	p := &domain.Product{Name: "Widget", Price: 10}
	if err := st.Products().Create(ctx, p); err != nil {
		t.Fatal(err)
	}

	// Update user name and age.
	form := url.Values{"username": {"alicia"}, "age": {"21"}}
	resp, err := app.Test(postForm(t, fmt.Sprintf("/admin/users/%d", alice.ID), form, adminCookie))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("user update: expected 303, got %d", resp.StatusCode)
	}
	got, _ := st.Users().ByID(ctx, alice.ID)
	if got == nil || got.Name != "alicia" || got.Age != 21 {
		t.Fatalf("user not updated: %+v", got)
	}

	// Update product.
	form = url.Values{"name": {"Gadget"}, "price": {"15"}}
	resp, err = app.Test(postForm(t, fmt.Sprintf("/admin/products/%d", p.ID), form, adminCookie))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("product update: expected 303, got %d", resp.StatusCode)
	}
	gp, _ := st.Products().ByID(ctx, p.ID)
	if gp == nil || gp.Name != "Gadget" || gp.Price != 15 {
		t.Fatalf("product not updated: %+v", gp)
	}
}

func TestAdminDeletes(t *testing.T) {
	app, st := newTestApp(t)
	ctx := context.Background()
	alice := mustCreateUser(t, st, "alice", "p", 20, domain.RoleUser)
	admin, _ := st.Users().ByName(ctx, "admin")
	adminCookie := &http.Cookie{Name: "auth_token", Value: admin.Token}

	p := &domain.Product{Name: "Widget", Price: 10}
	if err := st.Products().Create(ctx, p); err != nil {
		t.Fatal(err)
	}

	resp, err := app.Test(postForm(t, fmt.Sprintf("/admin/users/%d/delete", alice.ID), url.Values{}, adminCookie))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("user delete: expected 302, got %d", resp.StatusCode)
	}
	if got, _ := st.Users().ByID(ctx, alice.ID); got != nil {
		t.Fatal("user still present after delete")
	}
	// The deleted user's token no longer resolves.
	if u, _ := st.Users().ByToken(ctx, alice.Token); u != nil {
		t.Fatal("deleted user's token must not resolve")
	}

	resp, err = app.Test(postForm(t, fmt.Sprintf("/admin/products/%d/delete", p.ID), url.Values{}, adminCookie))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("product delete: expected 302, got %d", resp.StatusCode)
	}
	if gp, _ := st.Products().ByID(ctx, p.ID); gp != nil {
		t.Fatal("product still present after delete")
	}
}

func TestAdminRenameUserToTakenName(t *testing.T) {
	app, st := newTestApp(t)
	ctx := context.Background()
	alice := mustCreateUser(t, st, "alice", "p", 20, domain.RoleUser)
	bob := mustCreateUser(t, st, "bob", "q", 22, domain.RoleUser)
	admin, _ := st.Users().ByName(ctx, "admin")
	adminCookie := &http.Cookie{Name: "auth_token", Value: admin.Token}

	form := url.Values{"username": {alice.Name}, "age": {"23"}}
	resp, err := app.Test(postForm(t, fmt.Sprintf("/admin/users/%d", bob.ID), form, adminCookie))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with panel re-render, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "User name already taken") {
		t.Fatal("expected duplicate-name message in panel")
	}

	got, _ := st.Users().ByID(ctx, bob.ID)
	if got == nil || got.Name != "bob" || got.Age != 22 {
		t.Fatalf("rejected rename must not apply: %+v", got)
	}
}

// Update/delete on ids that do not exist succeed silently with the same
// redirect, leaving the store unchanged.
func TestAdminMutationsOnMissingIDAreNoOps(t *testing.T) {
	app, st := newTestApp(t)
	ctx := context.Background()
	admin, _ := st.Users().ByName(ctx, "admin")
	adminCookie := &http.Cookie{Name: "auth_token", Value: admin.Token}

	before, _ := st.Users().Count(ctx)

	form := url.Values{"username": {"ghost"}, "age": {"40"}}
	resp, err := app.Test(postForm(t, "/admin/users/9999", form, adminCookie))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("missing-id update: expected 303, got %d", resp.StatusCode)
	}

	resp, err = app.Test(postForm(t, "/admin/products/9999/delete", url.Values{}, adminCookie))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("missing-id delete: expected 302, got %d", resp.StatusCode)
	}

	after, _ := st.Users().Count(ctx)
	if before != after {
		t.Fatalf("no-op mutations changed user count: %d -> %d", before, after)
	}
	if n, _ := st.Products().Count(ctx); n != 0 {
		t.Fatalf("no-op mutations changed product count: %d", n)
	}
}
