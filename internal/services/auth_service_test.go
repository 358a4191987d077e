package services_test

import (
	"errors"
	"testing"

	"dealersite/internal/repos"
	"dealersite/internal/services"
)

func TestEnsureAdminRekeysSeededAccount(t *testing.T) {
	db := memdb(t)
	auth := &services.AuthService{Users: repos.NewUserRepo(db)}

	if err := auth.EnsureAdmin("admin@dealersite.test", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := auth.Login("sid-1", "admin@dealersite.test", "Passw0rd!"); err != nil {
		t.Fatalf("empty password must keep the seeded one: %v", err)
	}

	if err := auth.EnsureAdmin("admin@dealersite.test", "N3w-Secret!"); err != nil {
		t.Fatal(err)
	}
	if _, err := auth.Login("sid-2", "admin@dealersite.test", "Passw0rd!"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("old password still accepted: %v", err)
	}
	u, err := auth.Login("sid-3", "admin@dealersite.test", "N3w-Secret!")
	if err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if u.ID != "u-admin" {
		t.Fatalf("want the seeded row re-keyed, got id %q", u.ID)
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("want 1 user, got %d", n)
	}
}

func TestEnsureAdminCreatesMissingAccount(t *testing.T) {
	db := memdb(t)
	auth := &services.AuthService{Users: repos.NewUserRepo(db)}

	if err := auth.EnsureAdmin("owner@dealersite.test", "0wner-Pass"); err != nil {
		t.Fatal(err)
	}
	u, err := auth.Login("sid-1", "owner@dealersite.test", "0wner-Pass")
	if err != nil {
		t.Fatal(err)
	}
	if !u.IsAdmin() {
		t.Fatalf("want admin role, got %q", u.Role)
	}
	cur, err := auth.CurrentUser("sid-1")
	if err != nil || cur.ID != u.ID {
		t.Fatalf("session not bound: %v %+v", err, cur)
	}
}

func TestEnsureAdminRetiresSeededAccount(t *testing.T) {
	db := memdb(t)
	users := repos.NewUserRepo(db)
	auth := &services.AuthService{Users: users}

	if _, err := auth.Login("sid-old", "admin@dealersite.test", "Passw0rd!"); err != nil {
		t.Fatal(err)
	}
	if err := auth.EnsureAdmin("ops@example.com", "Str0ng!Secret"); err != nil {
		t.Fatal(err)
	}

	if _, err := auth.Login("sid-1", "admin@dealersite.test", "Passw0rd!"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("default credentials still accepted: %v", err)
	}
	if _, err := auth.CurrentUser("sid-old"); err == nil {
		t.Fatal("session of the retired account still authenticated")
	}
	if _, err := auth.Login("sid-2", "ops@example.com", "Str0ng!Secret"); err != nil {
		t.Fatalf("configured admin login: %v", err)
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("want only the configured admin, got %d users", n)
	}

	// a second boot re-seeds before EnsureAdmin runs again
	db.MustExec(`INSERT INTO users(id,email,name,password_hash,role) VALUES(?,'admin@dealersite.test','Admin','x','ADMIN')`, repos.SeedAdminID)
	if err := auth.EnsureAdmin("ops@example.com", "Str0ng!Secret"); err != nil {
		t.Fatal(err)
	}
	if _, err := users.ByID(repos.SeedAdminID); err == nil {
		t.Fatal("seeded admin came back after restart")
	}
}
