// Package agent runs one chat turn as a tool-calling loop: the model either
// answers or requests tools, tool results are appended to the conversation,
// and the model is called again until it answers or the step ceiling is
// reached.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/llm"
	"github.com/jayan110105/neura/internal/logger"
	"github.com/jayan110105/neura/internal/metrics"
	"github.com/jayan110105/neura/internal/store"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultMaxSteps is the model step ceiling per turn.
const DefaultMaxSteps = 10

// Session is the explicit per-turn identity handed to every tool.
type Session struct {
	UserID string
	// Token returns a valid mail provider token. It is called only when a
	// tool needs the mailbox.
	Token func(ctx context.Context) (*oauth2.Token, error)
}

// MailToken returns the session's mail token. A session without a token
// source is a *domain.AuthError.
func (s Session) MailToken(ctx context.Context) (*oauth2.Token, error) {
	if s.Token == nil {
		return nil, &domain.AuthError{Op: "agent.Session", Err: errors.New("no mail account linked")}
	}
	return s.Token(ctx)
}

type EventType string

const (
	EventText       EventType = "text"
	EventToolCall   EventType = "tool_call"
	EventToolResult EventType = "tool_result"
	EventDone       EventType = "done"
)

// Event is emitted as the turn progresses.
type Event struct {
	Type             EventType          `json:"type"`
	Text             string             `json:"text,omitempty"`
	ToolCall         *domain.ToolCall   `json:"toolCall,omitempty"`
	ToolResult       *domain.ToolResult `json:"toolResult,omitempty"`
	StepLimitReached bool               `json:"stepLimitReached,omitempty"`
}

// EventFunc receives events synchronously from the turn's goroutine.
type EventFunc func(Event)

// Result describes a finished turn.
type Result struct {
	// Messages holds the messages produced during the turn, in order.
	Messages []domain.Message
	// Text joins the assistant text of the turn.
	Text             string
	Steps            int
	StepLimitReached bool
}

type Options struct {
	MaxSteps int
	Logger   *zap.Logger
}

type Agent struct {
	model       llm.ToolModel
	tools       map[string]Tool
	defs        []llm.Tool
	transcripts store.TranscriptStore
	maxSteps    int
	log         *zap.Logger
}

func New(model llm.ToolModel, transcripts store.TranscriptStore, tools []Tool, opts Options) *Agent {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	a := &Agent{
		model:       model,
		tools:       make(map[string]Tool, len(tools)),
		transcripts: transcripts,
		maxSteps:    opts.MaxSteps,
		log:         opts.Logger,
	}
	for _, t := range tools {
		def := t.Definition()
		a.tools[def.Name] = t
		a.defs = append(a.defs, def)
	}
	return a
}

// Run executes one turn over messages, the full conversation so far
// ending with the user's latest message. On success the conversation plus
// the turn's messages is saved as the user's transcript; a failed save is
// logged and the result is still returned.
//
// *domain.AuthError and *domain.ModelSchemaError from a tool abort the
// turn. Other tool errors are reported to the model as error results.
// Reaching the step ceiling is not an error: the result is marked
// StepLimitReached.
func (a *Agent) Run(ctx context.Context, sess Session, messages []domain.Message, onEvent EventFunc) (*Result, error) {
	if onEvent == nil {
		onEvent = func(Event) {}
	}
	log := logger.With(ctx, a.log)

	conv := make([]domain.Message, 0, len(messages)+2*a.maxSteps)
	for _, m := range messages {
		conv = append(conv, stamp(m))
	}

	res := &Result{}
	var texts []string
	done := false

	for res.Steps < a.maxSteps && !done {
		res.Steps++
		resp, err := a.model.Step(ctx, llm.Request{
			System:   systemPrompt,
			Messages: conv,
			Tools:    a.defs,
		})
		if err != nil {
			return nil, fmt.Errorf("failed at agent step %d: %w", res.Steps, err)
		}

		assistant := domain.NewMessage(domain.RoleAssistant, resp.Text)
		assistant.ToolCalls = append([]domain.ToolCall(nil), resp.ToolCalls...)
		for i := range assistant.ToolCalls {
			if assistant.ToolCalls[i].ID == "" {
				assistant.ToolCalls[i].ID = "call_" + domain.NewMessageID()
			}
		}
		conv = append(conv, assistant)
		res.Messages = append(res.Messages, assistant)

		if strings.TrimSpace(resp.Text) != "" {
			texts = append(texts, resp.Text)
			onEvent(Event{Type: EventText, Text: resp.Text})
		}
		if len(assistant.ToolCalls) == 0 {
			done = true
			break
		}

		toolMsg := domain.NewMessage(domain.RoleTool, "")
		for i := range assistant.ToolCalls {
			call := assistant.ToolCalls[i]
			onEvent(Event{Type: EventToolCall, ToolCall: &call})

			result, err := a.runTool(ctx, log, sess, call)
			if err != nil {
				return nil, err
			}
			toolMsg.ToolResults = append(toolMsg.ToolResults, result)
			onEvent(Event{Type: EventToolResult, ToolResult: &result})
		}
		conv = append(conv, toolMsg)
		res.Messages = append(res.Messages, toolMsg)
	}

	metrics.RecordAgentSteps(res.Steps)

	if !done {
		res.StepLimitReached = true
		log.Warn("agent turn ended at step ceiling",
			zap.Int("max_steps", a.maxSteps),
			zap.Error(domain.ErrStepLimitExceeded))

		notice := domain.NewMessage(domain.RoleAssistant, stepLimitNotice)
		conv = append(conv, notice)
		res.Messages = append(res.Messages, notice)
		texts = append(texts, stepLimitNotice)
		onEvent(Event{Type: EventText, Text: stepLimitNotice})
	}
	res.Text = strings.Join(texts, "\n\n")

	a.save(ctx, log, sess.UserID, conv)

	onEvent(Event{Type: EventDone, StepLimitReached: res.StepLimitReached})
	return res, nil
}

// runTool executes one call. Only errors that must abort the turn are
// returned; everything else becomes an error result.
func (a *Agent) runTool(ctx context.Context, log *zap.Logger, sess Session, call domain.ToolCall) (domain.ToolResult, error) {
	result := domain.ToolResult{ToolCallID: call.ID, Name: call.Name}

	tool, ok := a.tools[call.Name]
	if !ok {
		err := fmt.Errorf("unknown tool %q", call.Name)
		metrics.RecordTool(call.Name, err)
		result.Content = err.Error()
		result.IsError = true
		return result, nil
	}

	start := time.Now()
	out, err := tool.Run(ctx, sess, call.Input)
	metrics.RecordTool(call.Name, err)
	if err != nil {
		log.Warn("tool failed",
			zap.String("tool", call.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		if domain.IsAuthError(err) || domain.IsModelSchemaError(err) {
			return result, fmt.Errorf("tool %s: %w", call.Name, err)
		}
		result.Content = "Error: " + err.Error()
		result.IsError = true
		return result, nil
	}

	log.Debug("tool finished",
		zap.String("tool", call.Name),
		zap.Duration("elapsed", time.Since(start)))
	result.Content = out
	return result, nil
}

func (a *Agent) save(ctx context.Context, log *zap.Logger, userID string, conv []domain.Message) {
	if a.transcripts == nil || userID == "" {
		return
	}
	t := &domain.Transcript{UserID: userID, Messages: conv}
	if err := a.transcripts.SaveTranscript(ctx, t); err != nil {
		perr := &domain.PersistenceError{Op: "agent.SaveTranscript", Err: err}
		log.Error("failed to save transcript", zap.Error(perr))
	}
}

// stamp fills in the ID and time of messages that arrive without them.
func stamp(m domain.Message) domain.Message {
	if m.ID == "" {
		m.ID = domain.NewMessageID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.Role == "" {
		m.Role = domain.RoleUser
	}
	return m
}
