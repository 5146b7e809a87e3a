package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/jayan110105/neura/internal/domain"
	"golang.org/x/oauth2"
)

func TestUpsertUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := &domain.User{Email: "ada@test.com", Name: "Ada", Token: &oauth2.Token{AccessToken: "a1", RefreshToken: "r1"}}
	if err := db.UpsertUser(ctx, u); err != nil {
		t.Fatalf("UpsertUser() error: %v", err)
	}
	if u.ID == "" {
		t.Fatal("UpsertUser() did not assign an ID")
	}
	firstID := u.ID

	// Same email, new ID candidate and no token: the stored row wins.
	again := &domain.User{Email: "ada@test.com", Name: "Ada L."}
	if err := db.UpsertUser(ctx, again); err != nil {
		t.Fatalf("second UpsertUser() error: %v", err)
	}
	if again.ID != firstID {
		t.Errorf("ID = %q, want existing %q", again.ID, firstID)
	}

	got, err := db.GetUser(ctx, firstID)
	if err != nil {
		t.Fatalf("GetUser() error: %v", err)
	}
	if got.Name != "Ada L." {
		t.Errorf("name = %q, want %q", got.Name, "Ada L.")
	}
	if got.Token == nil || got.Token.RefreshToken != "r1" {
		t.Errorf("token = %+v, want the original token kept", got.Token)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := db.GetUser(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetUser() error = %v, want ErrNotFound", err)
	}
}

func TestSaveLoadToken(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	id := createUser(t, db, "tok@test.com")

	tok, err := db.LoadToken(ctx, id)
	if err != nil {
		t.Fatalf("LoadToken() error: %v", err)
	}
	if tok != nil {
		t.Errorf("LoadToken() = %+v, want nil for a user without a token", tok)
	}

	if err := db.SaveToken(ctx, id, &oauth2.Token{AccessToken: "new", RefreshToken: "r"}); err != nil {
		t.Fatalf("SaveToken() error: %v", err)
	}
	tok, err = db.LoadToken(ctx, id)
	if err != nil {
		t.Fatalf("LoadToken() error: %v", err)
	}
	if tok.AccessToken != "new" {
		t.Errorf("access token = %q, want %q", tok.AccessToken, "new")
	}

	if err := db.SaveToken(ctx, "missing", tok); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("SaveToken() for missing user error = %v, want ErrNotFound", err)
	}
}
