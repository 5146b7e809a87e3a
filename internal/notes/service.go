// Package notes creates, lists and deletes user notes. Notes created from
// free text are categorized and tagged by the model.
package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/llm"
	"github.com/jayan110105/neura/internal/store"
)

var categorySchema = llm.Schema{
	Name:        "note_category",
	Description: "The category of a note.",
	Parameters: json.RawMessage(`{
	"type": "object",
	"properties": {
		"category": {"type": "string", "enum": ["work", "personal", "ideas", "tasks"], "description": "The assigned category for the note"}
	},
	"required": ["category"]
}`),
}

var tagsSchema = llm.Schema{
	Name:        "note_tags",
	Description: "Keywords describing a note.",
	Parameters: json.RawMessage(`{
	"type": "object",
	"properties": {
		"tags": {"type": "array", "items": {"type": "string"}, "minItems": 1, "maxItems": 5, "description": "Relevant keywords for the note"}
	},
	"required": ["tags"]
}`),
}

const categorizePrompt = `Categorize the note into exactly one of: work, personal, ideas, tasks.
Notes about projects, deadlines, meetings or colleagues are work, or tasks when they are mainly a to-do.
Answer only through the note_category tool.`

const tagsPrompt = `Extract between 1 and 5 short keywords that best describe the note.
Answer only through the note_tags tool.`

// ErrInvalidNote wraps validation failures of caller-supplied notes.
var ErrInvalidNote = errors.New("invalid note")

type categoryOutput struct {
	Category string `json:"category"`
}

type tagsOutput struct {
	Tags []string `json:"tags"`
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Query      string
	Categories []domain.Category
}

type Service struct {
	model llm.Model
	store store.NoteStore
	now   func() time.Time
}

func NewService(model llm.Model, s store.NoteStore) *Service {
	return &Service{model: model, store: s, now: time.Now}
}

// Categorize makes one structured call and returns a category from the
// closed set.
func (s *Service) Categorize(ctx context.Context, content string) (domain.Category, error) {
	raw, err := s.model.GenerateObject(ctx, categorizePrompt, llm.UserText(content), categorySchema)
	if err != nil {
		return "", fmt.Errorf("failed to categorize note: %w", err)
	}
	out, err := llm.Decode(raw, categorySchema.Name, func(v categoryOutput) error {
		_, err := domain.ParseCategory(v.Category)
		return err
	})
	if err != nil {
		return "", err
	}
	c, _ := domain.ParseCategory(out.Category)
	return c, nil
}

// GenerateTags makes one structured call and returns 1 to 5 tags.
func (s *Service) GenerateTags(ctx context.Context, content string) ([]string, error) {
	raw, err := s.model.GenerateObject(ctx, tagsPrompt, llm.UserText(content), tagsSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tags: %w", err)
	}
	out, err := llm.Decode(raw, tagsSchema.Name, func(v tagsOutput) error {
		n := len(cleanTags(v.Tags))
		if n < domain.MinNoteTags || n > domain.MaxNoteTags {
			return fmt.Errorf("got %d tags, want between %d and %d", n, domain.MinNoteTags, domain.MaxNoteTags)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cleanTags(out.Tags), nil
}

// Create categorizes and tags the content, then stores the note.
func (s *Service) Create(ctx context.Context, ownerID, title, content string) (*domain.Note, error) {
	text := strings.TrimSpace(title + "\n" + content)

	category, err := s.Categorize(ctx, text)
	if err != nil {
		return nil, err
	}
	tags, err := s.GenerateTags(ctx, text)
	if err != nil {
		return nil, err
	}

	return s.Add(ctx, &domain.Note{
		Title:    title,
		Content:  content,
		OwnerID:  ownerID,
		Tags:     tags,
		Category: category,
	})
}

// Add stores a note whose category and tags the caller already chose.
func (s *Service) Add(ctx context.Context, n *domain.Note) (*domain.Note, error) {
	n.Title = strings.TrimSpace(n.Title)
	n.Tags = cleanTags(n.Tags)
	if c, err := domain.ParseCategory(string(n.Category)); err == nil {
		n.Category = c
	}
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNote, err)
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}

	if err := s.store.CreateNote(ctx, n); err != nil {
		return nil, &domain.PersistenceError{Op: "notes.Add", Err: err}
	}
	return n, nil
}

// List returns the owner's notes newest first, narrowed by f.
func (s *Service) List(ctx context.Context, ownerID string, f Filter) ([]domain.Note, error) {
	all, err := s.store.ListNotes(ctx, ownerID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "notes.List", Err: err}
	}

	out := make([]domain.Note, 0, len(all))
	for i := range all {
		if all[i].Matches(f.Query, f.Categories) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	err := s.store.DeleteNote(ctx, ownerID, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return &domain.PersistenceError{Op: "notes.Delete", Err: err}
	}
	return err
}

// cleanTags trims tags and drops blanks and case-insensitive duplicates.
func cleanTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
