// Package llm is the boundary to the hosted language model. Callers depend
// on the Model and ToolModel interfaces; Client talks to the Anthropic
// Messages API.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jayan110105/neura/internal/domain"
)

// Schema describes the JSON object a structured call must return.
type Schema struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Tool is a function the model may call during a chat step.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// Request is one chat step with tools available.
type Request struct {
	System   string
	Messages []domain.Message
	Tools    []Tool
}

// Response is the model's reply to a chat step. A response with no tool
// calls is a final answer.
type Response struct {
	Text       string
	ToolCalls  []domain.ToolCall
	StopReason string
}

// Model exposes the two call shapes used by the mail pipeline.
type Model interface {
	// GenerateObject returns the raw JSON object produced for schema.
	GenerateObject(ctx context.Context, system string, messages []domain.Message, schema Schema) (json.RawMessage, error)
	// GenerateText returns free-form text.
	GenerateText(ctx context.Context, system string, messages []domain.Message) (string, error)
}

// ToolModel adds tool-calling chat steps.
type ToolModel interface {
	Model
	Step(ctx context.Context, req Request) (*Response, error)
}

// Decode unmarshals structured output into T and runs validate. Any
// failure is reported as *domain.ModelSchemaError.
func Decode[T any](raw json.RawMessage, schema string, validate func(T) error) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, &domain.ModelSchemaError{Schema: schema, Raw: string(raw), Err: fmt.Errorf("failed to decode: %w", err)}
	}
	if validate != nil {
		if err := validate(v); err != nil {
			return v, &domain.ModelSchemaError{Schema: schema, Raw: string(raw), Err: err}
		}
	}
	return v, nil
}

// UserText is a convenience for single-message prompts.
func UserText(content string) []domain.Message {
	return []domain.Message{{Role: domain.RoleUser, Content: content}}
}
