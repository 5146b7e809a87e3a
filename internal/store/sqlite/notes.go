package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jayan110105/neura/internal/domain"
)

type noteRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Content     string    `db:"content"`
	CreatedByID string    `db:"created_by_id"`
	Tags        string    `db:"tags"`
	Category    string    `db:"category"`
	CreatedAt   time.Time `db:"created_at"`
}

func (s *DB) CreateNote(ctx context.Context, n *domain.Note) error {
	tags, err := json.Marshal(n.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO notes (id, title, content, created_by_id, tags, category, created_at)
		VALUES (:id, :title, :content, :created_by_id, :tags, :category, :created_at)`,
		noteRow{
			ID:          n.ID,
			Title:       n.Title,
			Content:     n.Content,
			CreatedByID: n.OwnerID,
			Tags:        string(tags),
			Category:    string(n.Category),
			CreatedAt:   n.CreatedAt.UTC(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

func (s *DB) ListNotes(ctx context.Context, ownerID string) ([]domain.Note, error) {
	var rows []noteRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, title, content, created_by_id, tags, category, created_at
		FROM notes
		WHERE created_by_id = ?
		ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes for %s: %w", ownerID, err)
	}

	notes := make([]domain.Note, 0, len(rows))
	for _, r := range rows {
		var tags []string
		if err := json.Unmarshal([]byte(r.Tags), &tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags of note %s: %w", r.ID, err)
		}
		notes = append(notes, domain.Note{
			ID:        r.ID,
			Title:     r.Title,
			Content:   r.Content,
			OwnerID:   r.CreatedByID,
			Tags:      tags,
			Category:  domain.Category(r.Category),
			CreatedAt: r.CreatedAt,
		})
	}
	return notes, nil
}

func (s *DB) DeleteNote(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND created_by_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
