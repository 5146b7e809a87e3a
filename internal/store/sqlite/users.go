package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/store"
	"golang.org/x/oauth2"
)

type userRow struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	Token     *string   `db:"token"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *userRow) toDomain() (*domain.User, error) {
	token, err := store.UnmarshalToken(r.Token)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:        r.ID,
		Email:     r.Email,
		Name:      r.Name,
		Token:     token,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func (s *DB) UpsertUser(ctx context.Context, u *domain.User) error {
	token, err := store.MarshalToken(u.Token)
	if err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	var id string
	err = s.db.GetContext(ctx, &id, `
		INSERT INTO users (id, email, name, token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			name       = excluded.name,
			token      = COALESCE(excluded.token, users.token),
			updated_at = excluded.updated_at
		RETURNING id`,
		u.ID, u.Email, u.Name, token, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", u.Email, err)
	}
	u.ID = id
	return nil
}

func (s *DB) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, email, name, token, created_at, updated_at FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return row.toDomain()
}

// LoadToken returns the user's stored token, or nil when none is stored.
func (s *DB) LoadToken(ctx context.Context, userID string) (*oauth2.Token, error) {
	var token *string
	err := s.db.GetContext(ctx, &token, `SELECT token FROM users WHERE id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
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
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET token = ?, updated_at = ? WHERE id = ?`,
		data, time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to save token for %s: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	return nil
}
