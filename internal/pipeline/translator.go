package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/llm"
)

var querySchema = llm.Schema{
	Name:        "gmail_query",
	Description: "A Gmail search query and the number of messages to fetch.",
	Parameters: json.RawMessage(`{
	"type": "object",
	"properties": {
		"q": {"type": "string", "description": "Gmail search query using operators such as is:, category:, from:, after: and -term"},
		"maxResults": {"type": "integer", "minimum": 1, "maximum": 50, "description": "Number of messages to fetch"}
	},
	"required": ["q", "maxResults"]
}`),
}

const translatorPrompt = `You convert a request about the user's mailbox into a Gmail search query.
Today's date is %s.

Rules:
- "last" or "most recent" means maxResults is 1.
- A named Gmail category (primary, social, promotions, updates, forums) becomes category:<name>.
- A named sender becomes from:<name>.
- "unread" becomes is:unread.
- "excluding X" or "without X" becomes -X.
- Relative dates ("yesterday", "this week", "last 3 days") become after:YYYY/MM/DD computed from today's date.
- When no count is given, maxResults is %d.
- maxResults is never below %d or above %d.

Answer only through the gmail_query tool.`

// Translator turns a natural-language mailbox request into a QuerySpec.
type Translator struct {
	model        llm.Model
	now          func() time.Time
	defaultCount int
}

func NewTranslator(model llm.Model) *Translator {
	return &Translator{model: model, now: time.Now, defaultCount: domain.DefaultQueryResults}
}

func (t *Translator) systemPrompt() string {
	return fmt.Sprintf(translatorPrompt,
		t.now().Format("2006/01/02 (Monday)"),
		t.defaultCount, domain.MinQueryResults, domain.MaxQueryResults)
}

// queryReply mirrors the gmail_query schema. Pointer fields tell a
// missing field apart from a zero value.
type queryReply struct {
	Q          *string `json:"q"`
	MaxResults *int    `json:"maxResults"`
}

func (r queryReply) validate() error {
	switch {
	case r.Q == nil:
		return errors.New("missing required field q")
	case r.MaxResults == nil:
		return errors.New("missing required field maxResults")
	}
	return domain.QuerySpec{Q: *r.Q, MaxResults: *r.MaxResults}.Validate()
}

// Translate makes exactly one structured call. A reply that does not
// decode, lacks q or maxResults, or whose count falls outside [1,50] is a
// *domain.ModelSchemaError. The default count is applied by the model
// through the prompt.
func (t *Translator) Translate(ctx context.Context, request string) (domain.QuerySpec, error) {
	raw, err := t.model.GenerateObject(ctx, t.systemPrompt(), llm.UserText(request), querySchema)
	if err != nil {
		return domain.QuerySpec{}, fmt.Errorf("failed to translate request: %w", err)
	}

	reply, err := llm.Decode(raw, querySchema.Name, queryReply.validate)
	if err != nil {
		return domain.QuerySpec{}, err
	}
	return domain.QuerySpec{
		Q:          strings.TrimSpace(*reply.Q),
		MaxResults: *reply.MaxResults,
	}, nil
}
