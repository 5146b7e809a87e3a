package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/jayan110105/neura/internal/agent"
	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/pipeline"
)

func TestToJSONNotes(t *testing.T) {
	list := []domain.Note{
		{
			ID:        "n1",
			Title:     "Submit report",
			Category:  domain.CategoryWork,
			Tags:      []string{"deadline", "report"},
			CreatedAt: time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			ID:        "n2",
			Title:     "Untagged",
			Category:  domain.CategoryIdeas,
			CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	got := toJSONNotes(list)

	if len(got) != 2 {
		t.Fatalf("got %d notes, want 2", len(got))
	}
	if got[0].Category != "work" {
		t.Errorf("got category %q, want %q", got[0].Category, "work")
	}
	if got[0].CreatedAt != "2025-01-15T09:30:00Z" {
		t.Errorf("got created_at %q, want %q", got[0].CreatedAt, "2025-01-15T09:30:00Z")
	}
	if got[1].Tags == nil {
		t.Error("nil tags should encode as an empty array")
	}

	var buf bytes.Buffer
	if err := fprintJSON(&buf, got); err != nil {
		t.Fatalf("fprintJSON() error = %v", err)
	}
	var parsed []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if tags, ok := parsed[1]["tags"].([]any); !ok || len(tags) != 0 {
		t.Errorf("tags = %v, want []", parsed[1]["tags"])
	}
	if _, ok := parsed[1]["content"]; ok {
		t.Error("empty content should be omitted")
	}
}

func TestToJSONNotes_Empty(t *testing.T) {
	got := toJSONNotes(nil)

	var buf bytes.Buffer
	if err := fprintJSON(&buf, got); err != nil {
		t.Fatalf("fprintJSON() error = %v", err)
	}
	if got := buf.String(); got != "[]\n" {
		t.Errorf("got %q, want %q", got, "[]\n")
	}
}

func TestToJSONSummary(t *testing.T) {
	res := &pipeline.Result{
		Query: domain.QuerySpec{Q: "is:unread from:John", MaxResults: 5},
		Emails: []domain.NormalizedEmail{
			{
				ID:             "m1",
				ThreadID:       "t1",
				From:           "John <john@example.com>",
				Subject:        "Contract",
				Date:           time.Date(2024, 3, 1, 9, 30, 0, 0, time.FixedZone("EST", -5*3600)),
				Unread:         true,
				HasAttachments: true,
				Classification: domain.Classification{Label: domain.LabelImportant, Reason: "contract deadline"},
			},
		},
		Summary: "## Important\n- Contract",
	}

	got := toJSONSummary(res)

	if got.Query != "is:unread from:John" || got.MaxResults != 5 {
		t.Errorf("query = %q/%d, want %q/5", got.Query, got.MaxResults, "is:unread from:John")
	}
	if len(got.Emails) != 1 {
		t.Fatalf("got %d emails, want 1", len(got.Emails))
	}
	if got.Emails[0].Label != "Important" {
		t.Errorf("label = %q, want %q", got.Emails[0].Label, "Important")
	}
	if !got.Emails[0].HasAttachments {
		t.Error("has_attachments = false, want true")
	}
	if got.Emails[0].Date != "2024-03-01T14:30:00Z" {
		t.Errorf("date = %q, want %q", got.Emails[0].Date, "2024-03-01T14:30:00Z")
	}
	if got.Emails[0].ThreadID != "t1" || !got.Emails[0].Unread {
		t.Errorf("thread/unread = %q/%v, want %q/true", got.Emails[0].ThreadID, got.Emails[0].Unread, "t1")
	}

	undated := toJSONSummary(&pipeline.Result{Emails: []domain.NormalizedEmail{{ID: "m2"}}})
	if undated.Emails[0].Date != "" {
		t.Errorf("date = %q, want empty for unknown date", undated.Emails[0].Date)
	}
}

func TestToJSONSummary_NoEmails(t *testing.T) {
	got := toJSONSummary(&pipeline.Result{Summary: pipeline.NoEmails})
	if got.Emails == nil || len(got.Emails) != 0 {
		t.Errorf("emails = %v, want empty slice", got.Emails)
	}
	if got.Summary != "No emails found." {
		t.Errorf("summary = %q, want %q", got.Summary, "No emails found.")
	}
}

func TestToJSONTurn(t *testing.T) {
	call := domain.ToolCall{ID: "call_1", Name: "readEmail"}
	assistant := domain.NewMessage(domain.RoleAssistant, "")
	assistant.ToolCalls = []domain.ToolCall{call}
	tool := domain.NewMessage(domain.RoleTool, "")
	tool.ToolResults = []domain.ToolResult{{ToolCallID: "call_1", Name: "readEmail", Content: "summary"}}
	answer := domain.NewMessage(domain.RoleAssistant, "Two important emails.")

	got := toJSONTurn(&agent.Result{
		Messages: []domain.Message{assistant, tool, answer},
		Text:     "Two important emails.",
		Steps:    2,
	})

	if got.Answer != "Two important emails." || got.Steps != 2 || got.StepLimitReached {
		t.Errorf("turn = %+v", got)
	}
	if len(got.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(got.Messages))
	}
	if len(got.Messages[0].ToolCalls) != 1 || got.Messages[0].ToolCalls[0] != "readEmail" {
		t.Errorf("tool calls = %v, want [readEmail]", got.Messages[0].ToolCalls)
	}
	if len(got.Messages[1].ToolResults) != 1 || got.Messages[1].Role != "tool" {
		t.Errorf("tool message = %+v", got.Messages[1])
	}
}

func TestJSONAction(t *testing.T) {
	var buf bytes.Buffer
	if err := fprintJSON(&buf, jsonAction{OK: true, Action: "note-delete", NoteID: "n1"}); err != nil {
		t.Fatalf("fprintJSON() error = %v", err)
	}
	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatal(err)
	}
	if parsed["note_id"] != "n1" || parsed["ok"] != true {
		t.Errorf("parsed = %v", parsed)
	}
	if _, ok := parsed["email"]; ok {
		t.Error("empty email should be omitted")
	}
}
