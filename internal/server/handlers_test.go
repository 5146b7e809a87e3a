package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jayan110105/neura/internal/agent"
	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/pipeline"
)

func TestChat_StreamsEvents(t *testing.T) {
	env := newTestEnv(t)
	call := &domain.ToolCall{ID: "call_1", Name: "readNotes"}
	env.agent.events = []agent.Event{
		{Type: agent.EventToolCall, ToolCall: call},
		{Type: agent.EventToolResult, ToolResult: &domain.ToolResult{ToolCallID: "call_1", Name: "readNotes", Content: "[]"}},
		{Type: agent.EventText, Text: "You have no notes."},
		{Type: agent.EventDone},
	}

	w := env.do(t, http.MethodPost, "/api/chat", env.bearer(t, "user-1"),
		`{"messages":[{"role":"user","content":"what are my notes?"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/event-stream") {
		t.Errorf("Content-Type = %q, want text/event-stream", got)
	}

	body := w.Body.String()
	order := []string{"event:tool_call", "event:tool_result", "event:text", "event:done"}
	pos := 0
	for _, want := range order {
		i := strings.Index(body[pos:], want)
		if i < 0 {
			t.Fatalf("stream lacks %q after offset %d:\n%s", want, pos, body)
		}
		pos += i + len(want)
	}
	if !strings.Contains(body, "You have no notes.") {
		t.Errorf("stream lacks the answer text:\n%s", body)
	}

	if env.agent.sess.UserID != "user-1" {
		t.Errorf("session user = %q, want %q", env.agent.sess.UserID, "user-1")
	}
	if len(env.agent.got) != 1 || env.agent.got[0].Content != "what are my notes?" {
		t.Errorf("agent got %+v", env.agent.got)
	}
}

func TestChat_ErrorEvent(t *testing.T) {
	env := newTestEnv(t)
	env.agent.err = &domain.AuthError{Op: "auth.Token", Err: errors.New("sign in again")}

	w := env.do(t, http.MethodPost, "/api/chat", env.bearer(t, "user-1"),
		`{"messages":[{"role":"user","content":"hi"}]}`)
	body := w.Body.String()
	if !strings.Contains(body, "event:error") || !strings.Contains(body, `"status":401`) {
		t.Errorf("stream lacks a 401 error event:\n%s", body)
	}
}

func TestChat_BadRequests(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"no messages", `{"messages":[]}`},
		{"last not user", `{"messages":[{"role":"assistant","content":"hi"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/chat", env.bearer(t, "user-1"), tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestChat_GetAndReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := &domain.User{Email: "ada@example.com"}
	if err := env.db.UpsertUser(ctx, user); err != nil {
		t.Fatal(err)
	}
	u := user.ID
	authz := env.bearer(t, u)

	w := env.do(t, http.MethodGet, "/api/chat", authz, "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("empty transcript = %d %q, want 200 []", w.Code, w.Body.String())
	}

	err := env.db.SaveTranscript(ctx, &domain.Transcript{UserID: u, Messages: []domain.Message{
		domain.NewMessage(domain.RoleUser, "hello"),
		domain.NewMessage(domain.RoleAssistant, "hi there"),
	}})
	if err != nil {
		t.Fatal(err)
	}

	w = env.do(t, http.MethodGet, "/api/chat", authz, "")
	msgs := decodeJSON[[]domain.Message](t, w)
	if len(msgs) != 2 || msgs[1].Content != "hi there" {
		t.Errorf("transcript = %+v", msgs)
	}

	w = env.do(t, http.MethodDelete, "/api/chat", authz, "")
	if w.Code != http.StatusOK || !decodeJSON[map[string]bool](t, w)["success"] {
		t.Fatalf("reset = %d %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/chat", authz, "")
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("after reset = %q, want []", got)
	}
}

func TestListNotes(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	env.notes.notes = []domain.Note{
		{ID: "1", Title: "Submit report", OwnerID: "user-1", Category: domain.CategoryWork, Tags: []string{"deadline"}, CreatedAt: now},
		{ID: "2", Title: "Buy milk", OwnerID: "user-1", Category: domain.CategoryPersonal, Tags: []string{"shopping"}, CreatedAt: now},
		{ID: "3", Title: "Other user", OwnerID: "user-2", Category: domain.CategoryWork, Tags: []string{"x"}, CreatedAt: now},
	}
	authz := env.bearer(t, "user-1")

	tests := []struct {
		name    string
		target  string
		wantIDs []string
	}{
		{"all", "/api/notes", []string{"1", "2"}},
		{"query title", "/api/notes?q=report", []string{"1"}},
		{"query tag", "/api/notes?q=shop", []string{"2"}},
		{"category", "/api/notes?category=personal", []string{"2"}},
		{"categories comma", "/api/notes?category=work,personal", []string{"1", "2"}},
		{"categories repeated", "/api/notes?category=ideas&category=work", []string{"1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, tt.target, authz, "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			got := decodeJSON[[]domain.Note](t, w)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d notes, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("note[%d] = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}

	t.Run("bad category", func(t *testing.T) {
		if w := env.do(t, http.MethodGet, "/api/notes?category=chores", authz, ""); w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestCreateNote(t *testing.T) {
	authz := func(env *testEnv) string { return env.bearer(t, "user-1") }

	t.Run("explicit category and tags", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do(t, http.MethodPost, "/api/notes", authz(env),
			`{"title":"Plan trip","content":"Lisbon","category":"personal","tags":["travel"]}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body.String())
		}
		if env.notes.usedModel {
			t.Error("explicit note should not use the model")
		}
		if env.notes.created.OwnerID != "user-1" {
			t.Errorf("owner = %q, want %q", env.notes.created.OwnerID, "user-1")
		}
	})

	t.Run("model chooses", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do(t, http.MethodPost, "/api/notes", authz(env),
			`{"title":"Project deadline","content":"Submit by Friday"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", w.Code)
		}
		if !env.notes.usedModel {
			t.Error("note without category should use the model")
		}
		if got := decodeJSON[domain.Note](t, w); got.Category != domain.CategoryTasks {
			t.Errorf("category = %q, want %q", got.Category, domain.CategoryTasks)
		}
	})

	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"invalid json", `{`, nil, http.StatusBadRequest},
		{"missing title", `{"content":"x"}`, nil, http.StatusBadRequest},
		{"bad category", `{"title":"t","category":"chores","tags":["a"]}`, nil, http.StatusBadRequest},
		{"model schema", `{"title":"t"}`, &domain.ModelSchemaError{Schema: "note_category", Err: errors.New("bad")}, http.StatusBadGateway},
		{"store failure", `{"title":"t"}`, &domain.PersistenceError{Op: "notes.Add", Err: errors.New("disk")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.notes.createErr = tt.err
			w := env.do(t, http.MethodPost, "/api/notes", authz(env), tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			if tt.want == http.StatusInternalServerError && strings.Contains(w.Body.String(), "disk") {
				t.Errorf("internal error details leaked: %s", w.Body.String())
			}
		})
	}
}

func TestDeleteNote(t *testing.T) {
	env := newTestEnv(t)
	authz := env.bearer(t, "user-1")

	if w := env.do(t, http.MethodDelete, "/api/notes/note-1", authz, ""); w.Code != http.StatusOK {
		t.Errorf("delete status = %d, want 200", w.Code)
	}
	if w := env.do(t, http.MethodDelete, "/api/notes/missing", authz, ""); w.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", w.Code)
	}
}

func TestEmailSummary(t *testing.T) {
	env := newTestEnv(t)
	authz := env.bearer(t, "user-1")
	env.reader.res = &pipeline.Result{
		Query:   domain.QuerySpec{Q: "is:unread", MaxResults: 5},
		Summary: "## Important\nNone.",
	}

	w := env.do(t, http.MethodPost, "/api/email/summary", authz, `{"request":"  my unread email "}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if env.reader.request != "my unread email" {
		t.Errorf("request = %q, want %q", env.reader.request, "my unread email")
	}
	if env.reader.token == nil || env.reader.token.AccessToken != "mail-token" {
		t.Errorf("token = %+v", env.reader.token)
	}
	if got := decodeJSON[pipeline.Result](t, w); got.Summary != "## Important\nNone." {
		t.Errorf("summary = %q", got.Summary)
	}

	tests := []struct {
		name     string
		body     string
		tokenErr error
		readErr  error
		want     int
	}{
		{"empty request", `{"request":" "}`, nil, nil, http.StatusBadRequest},
		{"no mail token", `{"request":"x"}`, &domain.AuthError{Op: "auth.Token", Err: errors.New("none")}, nil, http.StatusUnauthorized},
		{"provider failure", `{"request":"x"}`, nil, &domain.ProviderError{Op: "gmail.List", Err: errors.New("503")}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.tokenErr = tt.tokenErr
			env.reader.err = tt.readErr
			defer func() { env.tokenErr, env.reader.err = nil, nil }()
			if w := env.do(t, http.MethodPost, "/api/email/summary", authz, tt.body); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
