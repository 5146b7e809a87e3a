package cli

import (
	"time"

	"github.com/jayan110105/neura/internal/agent"
	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/pipeline"
)

// ---------------------------------------------------------------------------
// Note JSON type (notes list, add, create)
// ---------------------------------------------------------------------------

type jsonNote struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content,omitempty"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"created_at"`
}

func toJSONNote(n domain.Note) jsonNote {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return jsonNote{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Category:  string(n.Category),
		Tags:      tags,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toJSONNotes(list []domain.Note) []jsonNote {
	out := make([]jsonNote, 0, len(list))
	for _, n := range list {
		out = append(out, toJSONNote(n))
	}
	return out
}

// ---------------------------------------------------------------------------
// Summary JSON type (mail summarize)
// ---------------------------------------------------------------------------

type jsonSummary struct {
	Query      string      `json:"query"`
	MaxResults int         `json:"max_results"`
	Emails     []jsonEmail `json:"emails"`
	Summary    string      `json:"summary"`
}

type jsonEmail struct {
	ID             string `json:"id"`
	ThreadID       string `json:"thread_id,omitempty"`
	From           string `json:"from"`
	Subject        string `json:"subject"`
	Date           string `json:"date,omitempty"`
	Unread         bool   `json:"unread"`
	Label          string `json:"label"`
	Reason         string `json:"reason,omitempty"`
	HasAttachments bool   `json:"has_attachments"`
}

func toJSONSummary(res *pipeline.Result) jsonSummary {
	emails := make([]jsonEmail, 0, len(res.Emails))
	for _, e := range res.Emails {
		je := jsonEmail{
			ID:             e.ID,
			ThreadID:       e.ThreadID,
			From:           e.From,
			Subject:        e.Subject,
			Unread:         e.Unread,
			Label:          string(e.Classification.Label),
			Reason:         e.Classification.Reason,
			HasAttachments: e.HasAttachments,
		}
		if !e.Date.IsZero() {
			je.Date = e.Date.UTC().Format(time.RFC3339)
		}
		emails = append(emails, je)
	}
	return jsonSummary{
		Query:      res.Query.Q,
		MaxResults: res.Query.MaxResults,
		Emails:     emails,
		Summary:    res.Summary,
	}
}

// ---------------------------------------------------------------------------
// Chat JSON types (chat, chat show)
// ---------------------------------------------------------------------------

type jsonMessage struct {
	ID          string   `json:"id"`
	Role        string   `json:"role"`
	Content     string   `json:"content,omitempty"`
	ToolCalls   []string `json:"tool_calls,omitempty"`
	ToolResults []string `json:"tool_results,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

func toJSONMessages(msgs []domain.Message) []jsonMessage {
	out := make([]jsonMessage, 0, len(msgs))
	for _, m := range msgs {
		jm := jsonMessage{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		}
		for _, c := range m.ToolCalls {
			jm.ToolCalls = append(jm.ToolCalls, c.Name)
		}
		for _, r := range m.ToolResults {
			jm.ToolResults = append(jm.ToolResults, r.Name)
		}
		out = append(out, jm)
	}
	return out
}

type jsonTurn struct {
	Answer           string        `json:"answer"`
	Steps            int           `json:"steps"`
	StepLimitReached bool          `json:"step_limit_reached"`
	Messages         []jsonMessage `json:"messages"`
}

func toJSONTurn(res *agent.Result) jsonTurn {
	return jsonTurn{
		Answer:           res.Text,
		Steps:            res.Steps,
		StepLimitReached: res.StepLimitReached,
		Messages:         toJSONMessages(res.Messages),
	}
}

// ---------------------------------------------------------------------------
// Action JSON type (login, logout, chat reset, note delete, secrets)
// ---------------------------------------------------------------------------

type jsonAction struct {
	OK     bool   `json:"ok"`
	Action string `json:"action"`
	Email  string `json:"email,omitempty"`
	UserID string `json:"user_id,omitempty"`
	NoteID string `json:"note_id,omitempty"`
	Name   string `json:"name,omitempty"`
}
