package notes

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/llm"
)

type fakeModel struct {
	replies map[string]string // schema name -> JSON reply
	calls   []string
	inputs  []string
}

func (m *fakeModel) GenerateObject(_ context.Context, _ string, msgs []domain.Message, schema llm.Schema) (json.RawMessage, error) {
	m.calls = append(m.calls, schema.Name)
	m.inputs = append(m.inputs, msgs[0].Content)
	reply, ok := m.replies[schema.Name]
	if !ok {
		return nil, errors.New("no reply for " + schema.Name)
	}
	return json.RawMessage(reply), nil
}

func (m *fakeModel) GenerateText(context.Context, string, []domain.Message) (string, error) {
	return "", errors.New("unexpected text call")
}

type memStore struct {
	notes   []domain.Note
	failing error
}

func (s *memStore) CreateNote(_ context.Context, n *domain.Note) error {
	if s.failing != nil {
		return s.failing
	}
	s.notes = append(s.notes, *n)
	return nil
}

func (s *memStore) ListNotes(_ context.Context, ownerID string) ([]domain.Note, error) {
	if s.failing != nil {
		return nil, s.failing
	}
	var out []domain.Note
	for _, n := range s.notes {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) DeleteNote(_ context.Context, ownerID, id string) error {
	for i, n := range s.notes {
		if n.ID == id && n.OwnerID == ownerID {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func TestCreate(t *testing.T) {
	m := &fakeModel{replies: map[string]string{
		"note_category": `{"category":"Work"}`,
		"note_tags":     `{"tags":["launch"," deadline ","Launch",""]}`,
	}}
	st := &memStore{}
	svc := NewService(m, st)
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC) }

	n, err := svc.Create(context.Background(), "user-1", "Launch", "Project launch deadline is Friday")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if n.Category != domain.CategoryWork {
		t.Errorf("category = %q, want %q", n.Category, domain.CategoryWork)
	}
	if strings.Join(n.Tags, ",") != "launch,deadline" {
		t.Errorf("tags = %v, want [launch deadline]", n.Tags)
	}
	if n.ID == "" || n.OwnerID != "user-1" {
		t.Errorf("note = %+v, want ID and owner set", n)
	}
	if !n.CreatedAt.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("created_at = %v", n.CreatedAt)
	}
	if strings.Join(m.calls, ",") != "note_category,note_tags" {
		t.Errorf("model calls = %v, want category then tags", m.calls)
	}
	if !strings.Contains(m.inputs[0], "deadline is Friday") {
		t.Errorf("categorize input = %q, want note content", m.inputs[0])
	}
	if len(st.notes) != 1 {
		t.Errorf("stored %d notes, want 1", len(st.notes))
	}
}

func TestCategorizeDeadlineNote(t *testing.T) {
	if !strings.Contains(categorizePrompt, "deadlines") {
		t.Fatal("categorize prompt should route deadlines to work or tasks")
	}
	for _, reply := range []string{"work", "tasks"} {
		m := &fakeModel{replies: map[string]string{"note_category": `{"category":"` + reply + `"}`}}
		got, err := NewService(m, &memStore{}).Categorize(context.Background(), "Finish the report before the Q3 deadline")
		if err != nil {
			t.Fatalf("Categorize() error: %v", err)
		}
		if got != domain.CategoryWork && got != domain.CategoryTasks {
			t.Errorf("Categorize() = %q, want work or tasks", got)
		}
	}
}

func TestCreateSchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		replies map[string]string
	}{
		{"unknown category", map[string]string{"note_category": `{"category":"hobby"}`, "note_tags": `{"tags":["a"]}`}},
		{"no tags", map[string]string{"note_category": `{"category":"ideas"}`, "note_tags": `{"tags":[]}`}},
		{"too many tags", map[string]string{"note_category": `{"category":"ideas"}`, "note_tags": `{"tags":["a","b","c","d","e","f"]}`}},
		{"malformed", map[string]string{"note_category": `{"category":`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &memStore{}
			_, err := NewService(&fakeModel{replies: tt.replies}, st).Create(context.Background(), "u", "t", "c")
			if !domain.IsModelSchemaError(err) {
				t.Errorf("Create() error = %v, want ModelSchemaError", err)
			}
			if len(st.notes) != 0 {
				t.Error("nothing should be stored when the model output is invalid")
			}
		})
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name    string
		note    domain.Note
		wantErr bool
	}{
		{"valid", domain.Note{Title: "Groceries", OwnerID: "u", Tags: []string{"food"}, Category: "Personal"}, false},
		{"empty title", domain.Note{Title: "  ", OwnerID: "u", Tags: []string{"a"}, Category: domain.CategoryIdeas}, true},
		{"no tags", domain.Note{Title: "t", OwnerID: "u", Category: domain.CategoryIdeas}, true},
		{"bad category", domain.Note{Title: "t", OwnerID: "u", Tags: []string{"a"}, Category: "misc"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.note
			got, err := NewService(&fakeModel{}, &memStore{}).Add(context.Background(), &n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Add() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidNote) {
					t.Errorf("Add() error = %v, want ErrInvalidNote", err)
				}
				return
			}
			if got.Category != domain.CategoryPersonal {
				t.Errorf("category = %q, want normalized %q", got.Category, domain.CategoryPersonal)
			}
		})
	}
}

func TestList(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	st := &memStore{notes: []domain.Note{
		{ID: "1", Title: "Sprint plan", OwnerID: "u", Tags: []string{"agile"}, Category: domain.CategoryWork, CreatedAt: base},
		{ID: "2", Title: "Birthday", OwnerID: "u", Tags: []string{"family"}, Category: domain.CategoryPersonal, CreatedAt: base.Add(time.Hour)},
		{ID: "3", Title: "App idea", OwnerID: "u", Tags: []string{"startup", "agile"}, Category: domain.CategoryIdeas, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "4", Title: "Other user", OwnerID: "v", Tags: []string{"agile"}, Category: domain.CategoryWork, CreatedAt: base},
	}}
	svc := NewService(&fakeModel{}, st)

	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{"all newest first", Filter{}, "3,2,1"},
		{"title search", Filter{Query: "birth"}, "2"},
		{"tag search", Filter{Query: "AGILE"}, "3,1"},
		{"category", Filter{Categories: []domain.Category{domain.CategoryWork, domain.CategoryIdeas}}, "3,1"},
		{"query and category", Filter{Query: "agile", Categories: []domain.Category{domain.CategoryWork}}, "1"},
		{"no match", Filter{Query: "zzz"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.List(context.Background(), "u", tt.filter)
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			var ids []string
			for _, n := range got {
				ids = append(ids, n.ID)
			}
			if strings.Join(ids, ",") != tt.want {
				t.Errorf("List(%+v) = %v, want %s", tt.filter, ids, tt.want)
			}
		})
	}
}

func TestListIdempotent(t *testing.T) {
	st := &memStore{notes: []domain.Note{
		{ID: "1", Title: "a", OwnerID: "u", Tags: []string{"x"}, Category: domain.CategoryWork, CreatedAt: time.Unix(1, 0)},
		{ID: "2", Title: "b", OwnerID: "u", Tags: []string{"y"}, Category: domain.CategoryWork, CreatedAt: time.Unix(2, 0)},
	}}
	svc := NewService(&fakeModel{}, st)

	first, _ := svc.List(context.Background(), "u", Filter{})
	second, _ := svc.List(context.Background(), "u", Filter{})
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("read %d: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
}

func TestDelete(t *testing.T) {
	st := &memStore{notes: []domain.Note{{ID: "1", OwnerID: "u"}}}
	svc := NewService(&fakeModel{}, st)

	if err := svc.Delete(context.Background(), "v", "1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete() by non-owner error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(context.Background(), "u", "1"); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
}

func TestPersistenceErrors(t *testing.T) {
	st := &memStore{failing: errors.New("disk full")}
	svc := NewService(&fakeModel{}, st)

	_, err := svc.Add(context.Background(), &domain.Note{Title: "t", OwnerID: "u", Tags: []string{"a"}, Category: domain.CategoryIdeas})
	var pe *domain.PersistenceError
	if !errors.As(err, &pe) {
		t.Errorf("Add() error = %v, want PersistenceError", err)
	}
	if _, err := svc.List(context.Background(), "u", Filter{}); !errors.As(err, &pe) {
		t.Errorf("List() error = %v, want PersistenceError", err)
	}
}
