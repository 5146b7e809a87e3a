// Package postgres implements store.Store on PostgreSQL through a pgx
// connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/store"
	"golang.org/x/oauth2"
)

var _ store.Store = (*DB)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id          TEXT PRIMARY KEY,
    email       TEXT NOT NULL UNIQUE,
    name        TEXT NOT NULL DEFAULT '',
    token       TEXT,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS chats (
    user_id     TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    messages    TEXT NOT NULL DEFAULT '[]',
    updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
    id              TEXT PRIMARY KEY,
    title           TEXT NOT NULL,
    content         TEXT NOT NULL DEFAULT '',
    created_by_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    tags            TEXT[] NOT NULL DEFAULT '{}',
    category        TEXT NOT NULL CHECK (category IN ('work', 'personal', 'ideas', 'tasks')),
    created_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_owner_created ON notes(created_by_id, created_at DESC);
`

type DB struct {
	pool *pgxpool.Pool
}

// New connects to connString and applies the schema.
func New(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &DB{pool: pool}, nil
}

func (s *DB) Close() error {
	s.pool.Close()
	return nil
}

// --- users ---

func (s *DB) UpsertUser(ctx context.Context, u *domain.User) error {
	token, err := store.MarshalToken(u.Token)
	if err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	query := `
        INSERT INTO users (id, email, name, token, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $5)
        ON CONFLICT (email) DO UPDATE SET
            name       = EXCLUDED.name,
            token      = COALESCE(EXCLUDED.token, users.token),
            updated_at = EXCLUDED.updated_at
        RETURNING id
    `
	if err := s.pool.QueryRow(ctx, query, u.ID, u.Email, u.Name, token, now).Scan(&u.ID); err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", u.Email, err)
	}
	return nil
}

func (s *DB) GetUser(ctx context.Context, id string) (*domain.User, error) {
	query := `
        SELECT id, email, name, token, created_at, updated_at
        FROM users
        WHERE id = $1
    `
	var (
		u     domain.User
		token *string
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.Name, &token, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	if u.Token, err = store.UnmarshalToken(token); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *DB) LoadToken(ctx context.Context, userID string) (*oauth2.Token, error) {
	var token *string
	err := s.pool.QueryRow(ctx, `SELECT token FROM users WHERE id = $1`, userID).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token for %s: %w", userID, err)
	}
	return store.UnmarshalToken(token)
}

func (s *DB) SaveToken(ctx context.Context, userID string, token *oauth2.Token) error {
	data, err := store.MarshalToken(token)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET token = $1, updated_at = $2 WHERE id = $3`,
		data, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to save token for %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	return nil
}

// --- chats ---

func (s *DB) GetTranscript(ctx context.Context, userID string) (*domain.Transcript, error) {
	var (
		data      string
		updatedAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT messages, updated_at FROM chats WHERE user_id = $1`, userID,
	).Scan(&data, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.Transcript{UserID: userID, Messages: []domain.Message{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript for %s: %w", userID, err)
	}

	msgs, err := store.UnmarshalMessages(data)
	if err != nil {
		return nil, err
	}
	return &domain.Transcript{UserID: userID, Messages: msgs, UpdatedAt: updatedAt}, nil
}

func (s *DB) SaveTranscript(ctx context.Context, t *domain.Transcript) error {
	data, err := store.MarshalMessages(t.Messages)
	if err != nil {
		return err
	}
	t.UpdatedAt = time.Now().UTC()

	query := `
        INSERT INTO chats (user_id, messages, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE SET
            messages   = EXCLUDED.messages,
            updated_at = EXCLUDED.updated_at
    `
	if _, err := s.pool.Exec(ctx, query, t.UserID, data, t.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save transcript for %s: %w", t.UserID, err)
	}
	return nil
}

func (s *DB) DeleteTranscript(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM chats WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete transcript for %s: %w", userID, err)
	}
	return nil
}

// --- notes ---

func (s *DB) CreateNote(ctx context.Context, n *domain.Note) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	query := `
        INSERT INTO notes (id, title, content, created_by_id, tags, category, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := s.pool.Exec(ctx, query,
		n.ID, n.Title, n.Content, n.OwnerID, n.Tags, string(n.Category), n.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

func (s *DB) ListNotes(ctx context.Context, ownerID string) ([]domain.Note, error) {
	query := `
        SELECT id, title, content, created_by_id, tags, category, created_at
        FROM notes
        WHERE created_by_id = $1
        ORDER BY created_at DESC, id DESC
    `
	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes for %s: %w", ownerID, err)
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		var (
			n        domain.Note
			category string
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.OwnerID, &n.Tags, &category, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		n.Category = domain.Category(category)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *DB) DeleteNote(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM notes WHERE id = $1 AND created_by_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
