package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/llm"
	"github.com/jayan110105/neura/internal/notes"
	"github.com/jayan110105/neura/internal/pipeline"
	"golang.org/x/oauth2"
)

// Tool names as seen by the model.
const (
	ToolReadEmail  = "readEmail"
	ToolReadNotes  = "readNotes"
	ToolCreateNote = "createNote"
)

// Tool is a function the model may invoke during a turn.
type Tool interface {
	Definition() llm.Tool
	// Run executes the tool for the session's user. The returned string is
	// fed back to the model as the tool result.
	Run(ctx context.Context, sess Session, input json.RawMessage) (string, error)
}

// EmailReader is the email read path used by the readEmail tool.
type EmailReader interface {
	ReadEmail(ctx context.Context, userID string, token *oauth2.Token, request string) (*pipeline.Result, error)
}

// NoteService is the subset of notes.Service the note tools need.
type NoteService interface {
	List(ctx context.Context, ownerID string, f notes.Filter) ([]domain.Note, error)
	Create(ctx context.Context, ownerID, title, content string) (*domain.Note, error)
}

// errBadInput marks tool input the model got wrong. It is reported back
// to the model as an error result.
var errBadInput = errors.New("invalid tool input")

func decodeInput(input json.RawMessage, v any) error {
	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}
	if err := json.Unmarshal(input, v); err != nil {
		return fmt.Errorf("%w: %v", errBadInput, err)
	}
	return nil
}

// --- readEmail ---

type ReadEmailTool struct {
	reader EmailReader
}

func NewReadEmailTool(r EmailReader) *ReadEmailTool {
	return &ReadEmailTool{reader: r}
}

func (t *ReadEmailTool) Definition() llm.Tool {
	return llm.Tool{
		Name: ToolReadEmail,
		Description: "Reads the user's Gmail inbox. Pass the user's request in plain language " +
			"(for example \"my last 5 unread emails from John\"); it is translated into a mailbox query, " +
			"each email is classified by importance and a Markdown summary is returned.",
		InputSchema: json.RawMessage(`{
	"type": "object",
	"properties": {
		"request": {"type": "string", "description": "What to read, in the user's words"}
	},
	"required": ["request"]
}`),
	}
}

func (t *ReadEmailTool) Run(ctx context.Context, sess Session, input json.RawMessage) (string, error) {
	var in struct {
		Request string `json:"request"`
	}
	if err := decodeInput(input, &in); err != nil {
		return "", err
	}
	in.Request = strings.TrimSpace(in.Request)
	if in.Request == "" {
		in.Request = "my most recent emails"
	}

	token, err := sess.MailToken(ctx)
	if err != nil {
		return "", err
	}
	res, err := t.reader.ReadEmail(ctx, sess.UserID, token, in.Request)
	if err != nil {
		return "", err
	}
	return res.Summary, nil
}

// --- readNotes ---

type ReadNotesTool struct {
	notes NoteService
}

func NewReadNotesTool(n NoteService) *ReadNotesTool {
	return &ReadNotesTool{notes: n}
}

func (t *ReadNotesTool) Definition() llm.Tool {
	return llm.Tool{
		Name:        ToolReadNotes,
		Description: "Fetches all of the user's notes, newest first.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}
}

func (t *ReadNotesTool) Run(ctx context.Context, sess Session, _ json.RawMessage) (string, error) {
	list, err := t.notes.List(ctx, sess.UserID, notes.Filter{})
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("failed to encode notes: %w", err)
	}
	return string(data), nil
}

// --- createNote ---

type CreateNoteTool struct {
	notes NoteService
}

func NewCreateNoteTool(n NoteService) *CreateNoteTool {
	return &CreateNoteTool{notes: n}
}

func (t *CreateNoteTool) Definition() llm.Tool {
	return llm.Tool{
		Name:        ToolCreateNote,
		Description: "Creates a new note for the user. Category and tags are assigned automatically.",
		InputSchema: json.RawMessage(`{
	"type": "object",
	"properties": {
		"title": {"type": "string", "description": "The title of the note"},
		"content": {"type": "string", "description": "The main body of the note"}
	},
	"required": ["title", "content"]
}`),
	}
}

type createNoteResult struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	ID       string          `json:"id"`
	Category domain.Category `json:"category"`
	Tags     []string        `json:"tags"`
}

func (t *CreateNoteTool) Run(ctx context.Context, sess Session, input json.RawMessage) (string, error) {
	var in struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := decodeInput(input, &in); err != nil {
		return "", err
	}
	if strings.TrimSpace(in.Title) == "" {
		return "", fmt.Errorf("%w: title is required", errBadInput)
	}

	n, err := t.notes.Create(ctx, sess.UserID, in.Title, in.Content)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(createNoteResult{
		Success:  true,
		Message:  "Note created successfully!",
		ID:       n.ID,
		Category: n.Category,
		Tags:     n.Tags,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}
