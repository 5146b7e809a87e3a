package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/store"
)

type chatRow struct {
	UserID    string    `db:"user_id"`
	Messages  string    `db:"messages"`
	UpdatedAt time.Time `db:"updated_at"`
}

// GetTranscript retrieves the transcript for a user.
// If none exists, it returns an empty transcript with the UserID set.
func (s *DB) GetTranscript(ctx context.Context, userID string) (*domain.Transcript, error) {
	var row chatRow
	err := s.db.GetContext(ctx, &row,
		`SELECT user_id, messages, updated_at FROM chats WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.Transcript{UserID: userID, Messages: []domain.Message{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript for %s: %w", userID, err)
	}

	msgs, err := store.UnmarshalMessages(row.Messages)
	if err != nil {
		return nil, err
	}
	return &domain.Transcript{UserID: row.UserID, Messages: msgs, UpdatedAt: row.UpdatedAt}, nil
}

// SaveTranscript inserts or replaces the transcript for a user.
func (s *DB) SaveTranscript(ctx context.Context, t *domain.Transcript) error {
	data, err := store.MarshalMessages(t.Messages)
	if err != nil {
		return err
	}
	t.UpdatedAt = time.Now().UTC()

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO chats (user_id, messages, updated_at)
		VALUES (:user_id, :messages, :updated_at)
		ON CONFLICT(user_id) DO UPDATE SET
			messages   = excluded.messages,
			updated_at = excluded.updated_at`,
		chatRow{UserID: t.UserID, Messages: data, UpdatedAt: t.UpdatedAt},
	)
	if err != nil {
		return fmt.Errorf("failed to save transcript for %s: %w", t.UserID, err)
	}
	return nil
}

func (s *DB) DeleteTranscript(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transcript for %s: %w", userID, err)
	}
	return nil
}
