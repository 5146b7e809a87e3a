package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/metrics"
)

const (
	DefaultModel     = "claude-sonnet-4-5-20250929"
	DefaultMaxTokens = 4096
	DefaultBaseURL   = "https://api.anthropic.com"
	apiVersion       = "2023-06-01"
)

var _ ToolModel = (*Client)(nil)

// Client calls the Anthropic Messages API. Structured output is obtained by
// forcing a single tool whose input schema is the requested schema.
type Client struct {
	apiKey    string
	model     string
	maxTokens int
	baseURL   string
	http      *http.Client
}

// NewClient creates a Client. Empty model, non-positive maxTokens and empty
// baseURL fall back to the defaults.
func NewClient(apiKey, model string, maxTokens int, baseURL string) *Client {
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{},
	}
}

// GenerateObject forces the model to answer through a single tool named
// after the schema and returns that tool's input.
func (c *Client) GenerateObject(ctx context.Context, system string, messages []domain.Message, schema Schema) (json.RawMessage, error) {
	req := apiRequest{
		System:   system,
		Messages: toAPIMessages(messages),
		Tools: []apiTool{{
			Name:        schema.Name,
			Description: schema.Description,
			InputSchema: schema.Parameters,
		}},
		ToolChoice: &apiToolChoice{Type: "tool", Name: schema.Name},
	}

	resp, err := c.call(ctx, "object", req)
	if err != nil {
		return nil, err
	}
	for _, block := range resp.Content {
		if block.Type == "tool_use" && block.Name == schema.Name {
			return block.Input, nil
		}
	}
	return nil, &domain.ModelSchemaError{
		Schema: schema.Name,
		Raw:    joinText(resp.Content),
		Err:    fmt.Errorf("no %s tool call in response (stop_reason %s)", schema.Name, resp.StopReason),
	}
}

// GenerateText returns the concatenated text blocks of one reply.
func (c *Client) GenerateText(ctx context.Context, system string, messages []domain.Message) (string, error) {
	resp, err := c.call(ctx, "text", apiRequest{
		System:   system,
		Messages: toAPIMessages(messages),
	})
	if err != nil {
		return "", err
	}
	return joinText(resp.Content), nil
}

// Step runs one chat step with tools available to the model.
func (c *Client) Step(ctx context.Context, r Request) (*Response, error) {
	req := apiRequest{
		System:   r.System,
		Messages: toAPIMessages(r.Messages),
	}
	for _, t := range r.Tools {
		req.Tools = append(req.Tools, apiTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}

	resp, err := c.call(ctx, "step", req)
	if err != nil {
		return nil, err
	}

	out := &Response{Text: joinText(resp.Content), StopReason: resp.StopReason}
	for _, block := range resp.Content {
		if block.Type == "tool_use" {
			out.ToolCalls = append(out.ToolCalls, domain.ToolCall{
				ID:    block.ID,
				Name:  block.Name,
				Input: block.Input,
			})
		}
	}
	return out, nil
}

// call makes a single request to the Messages API.
func (c *Client) call(ctx context.Context, kind string, req apiRequest) (resp *apiResponse, err error) {
	start := time.Now()
	defer func() { metrics.ObserveModelCall(kind, start, err) }()

	req.Model = c.model
	req.MaxTokens = c.maxTokens

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling model API: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("model API error (%d): %s", httpResp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("model API error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &result, nil
}

// toAPIMessages maps transcript messages onto the API's two roles. Tool
// results travel as user messages; consecutive messages of the same role
// are merged.
func toAPIMessages(messages []domain.Message) []apiMessage {
	var out []apiMessage
	for _, m := range messages {
		var role string
		var blocks []apiContentBlock

		switch m.Role {
		case domain.RoleAssistant:
			role = "assistant"
			if strings.TrimSpace(m.Content) != "" {
				blocks = append(blocks, apiContentBlock{Type: "text", Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				input := tc.Input
				if len(input) == 0 {
					input = json.RawMessage(`{}`)
				}
				blocks = append(blocks, apiContentBlock{Type: "tool_use", ID: tc.ID, Name: tc.Name, Input: input})
			}
		case domain.RoleTool:
			role = "user"
			for _, tr := range m.ToolResults {
				blocks = append(blocks, apiContentBlock{
					Type:      "tool_result",
					ToolUseID: tr.ToolCallID,
					Content:   tr.Content,
					IsError:   tr.IsError,
				})
			}
		default:
			role = "user"
			if strings.TrimSpace(m.Content) != "" {
				blocks = append(blocks, apiContentBlock{Type: "text", Text: m.Content})
			}
		}

		if len(blocks) == 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blocks...)
			continue
		}
		out = append(out, apiMessage{Role: role, Content: blocks})
	}
	return out
}

func joinText(blocks []apiContentBlock) string {
	var parts []string
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "")
}

// --- Messages API types ---

type apiRequest struct {
	Model      string         `json:"model"`
	MaxTokens  int            `json:"max_tokens"`
	System     string         `json:"system,omitempty"`
	Messages   []apiMessage   `json:"messages"`
	Tools      []apiTool      `json:"tools,omitempty"`
	ToolChoice *apiToolChoice `json:"tool_choice,omitempty"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	Type string `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// tool_use
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

type apiToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

type apiResponse struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Role       string            `json:"role"`
	Content    []apiContentBlock `json:"content"`
	Model      string            `json:"model"`
	StopReason string            `json:"stop_reason"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type apiTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}
