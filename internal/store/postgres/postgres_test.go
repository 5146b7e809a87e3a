package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jayan110105/neura/internal/domain"
	"golang.org/x/oauth2"
)

// newTestDB connects to NEURA_TEST_POSTGRES_DSN and skips when it is unset.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("NEURA_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("NEURA_TEST_POSTGRES_DSN not set")
	}
	db, err := New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *DB) string {
	t.Helper()
	u := &domain.User{Email: uuid.NewString() + "@test.com", Name: "Test"}
	if err := db.UpsertUser(context.Background(), u); err != nil {
		t.Fatalf("UpsertUser() error: %v", err)
	}
	t.Cleanup(func() {
		db.pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, u.ID)
	})
	return u.ID
}

func TestUsers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	id := createUser(t, db)

	if err := db.SaveToken(ctx, id, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatalf("SaveToken() error: %v", err)
	}
	u, err := db.GetUser(ctx, id)
	if err != nil {
		t.Fatalf("GetUser() error: %v", err)
	}
	if u.Token == nil || u.Token.RefreshToken != "r" {
		t.Errorf("token = %+v, want refresh token r", u.Token)
	}
	if _, err := db.GetUser(ctx, uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetUser() for missing id error = %v, want ErrNotFound", err)
	}
}

func TestTranscripts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	id := createUser(t, db)

	tr := &domain.Transcript{UserID: id, Messages: []domain.Message{domain.NewMessage(domain.RoleUser, "hi")}}
	if err := db.SaveTranscript(ctx, tr); err != nil {
		t.Fatalf("SaveTranscript() error: %v", err)
	}
	got, err := db.GetTranscript(ctx, id)
	if err != nil {
		t.Fatalf("GetTranscript() error: %v", err)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "hi" {
		t.Errorf("Messages = %+v, want one 'hi'", got.Messages)
	}

	if err := db.DeleteTranscript(ctx, id); err != nil {
		t.Fatalf("DeleteTranscript() error: %v", err)
	}
	got, err = db.GetTranscript(ctx, id)
	if err != nil {
		t.Fatalf("GetTranscript() error: %v", err)
	}
	if len(got.Messages) != 0 {
		t.Errorf("got %d messages after reset, want 0", len(got.Messages))
	}
}

func TestNotes(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db)

	base := time.Now().UTC().Truncate(time.Second)
	for i, title := range []string{"first", "second"} {
		n := &domain.Note{
			ID: uuid.NewString(), Title: title, OwnerID: owner,
			Tags: []string{"t"}, Category: domain.CategoryIdeas,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.CreateNote(ctx, n); err != nil {
			t.Fatalf("CreateNote() error: %v", err)
		}
	}

	notes, err := db.ListNotes(ctx, owner)
	if err != nil {
		t.Fatalf("ListNotes() error: %v", err)
	}
	if len(notes) != 2 || notes[0].Title != "second" {
		t.Fatalf("ListNotes() = %+v, want newest first", notes)
	}
	if err := db.DeleteNote(ctx, owner, notes[0].ID); err != nil {
		t.Fatalf("DeleteNote() error: %v", err)
	}
	if err := db.DeleteNote(ctx, owner, notes[0].ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second DeleteNote() error = %v, want ErrNotFound", err)
	}
}
