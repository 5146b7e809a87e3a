package domain

import (
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryIdeas    Category = "ideas"
	CategoryTasks    Category = "tasks"
)

var Categories = []Category{CategoryWork, CategoryPersonal, CategoryIdeas, CategoryTasks}

func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if s == string(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

const (
	MinNoteTags = 1
	MaxNoteTags = 5
)

// Note is immutable after creation; it can only be deleted by its owner.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   string    `json:"createdById"`
	Tags      []string  `json:"tags"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

func (n *Note) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("note title must not be empty")
	}
	if strings.TrimSpace(n.OwnerID) == "" {
		return fmt.Errorf("note owner must not be empty")
	}
	if _, err := ParseCategory(string(n.Category)); err != nil {
		return err
	}
	if len(n.Tags) < MinNoteTags || len(n.Tags) > MaxNoteTags {
		return fmt.Errorf("note must have between %d and %d tags, got %d", MinNoteTags, MaxNoteTags, len(n.Tags))
	}
	return nil
}

// HasTag reports whether any tag contains sub, case-insensitively.
func (n *Note) HasTag(sub string) bool {
	sub = strings.ToLower(sub)
	for _, t := range n.Tags {
		if strings.Contains(strings.ToLower(t), sub) {
			return true
		}
	}
	return false
}

// Matches applies the notes list filter: a substring of the title or of
// any tag, and membership in categories when any are given.
func (n *Note) Matches(query string, categories []Category) bool {
	if query != "" {
		q := strings.ToLower(query)
		if !strings.Contains(strings.ToLower(n.Title), q) && !n.HasTag(q) {
			return false
		}
	}
	if len(categories) == 0 {
		return true
	}
	for _, c := range categories {
		if n.Category == c {
			return true
		}
	}
	return false
}
