package store

import (
	"context"

	"github.com/jayan110105/neura/internal/domain"
	"golang.org/x/oauth2"
)

// TokenStore loads and saves a user's mail provider token.
type TokenStore interface {
	LoadToken(ctx context.Context, userID string) (*oauth2.Token, error)
	SaveToken(ctx context.Context, userID string, token *oauth2.Token) error
}

// UserStore persists signed-in users and their provider tokens.
type UserStore interface {
	TokenStore

	// UpsertUser inserts the user or updates the row with the same email.
	// On return u.ID holds the stored ID. A nil token leaves the stored
	// token unchanged.
	UpsertUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// TranscriptStore keeps one chat transcript per user.
type TranscriptStore interface {
	// GetTranscript returns an empty transcript when none is stored.
	GetTranscript(ctx context.Context, userID string) (*domain.Transcript, error)
	// SaveTranscript upserts by user ID. Concurrent saves for one user
	// resolve last writer wins.
	SaveTranscript(ctx context.Context, t *domain.Transcript) error
	DeleteTranscript(ctx context.Context, userID string) error
}

// NoteStore persists notes. Notes are never updated after creation.
type NoteStore interface {
	CreateNote(ctx context.Context, n *domain.Note) error
	// ListNotes returns the owner's notes, newest first.
	ListNotes(ctx context.Context, ownerID string) ([]domain.Note, error)
	// DeleteNote removes one of the owner's notes. It returns
	// domain.ErrNotFound when no such note belongs to the owner.
	DeleteNote(ctx context.Context, ownerID, id string) error
}

// Store is the full persistence interface of the application.
type Store interface {
	UserStore
	TranscriptStore
	NoteStore

	Close() error
}
