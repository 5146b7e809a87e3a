package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/llm"
)

var classificationSchema = llm.Schema{
	Name:        "email_classification",
	Description: "The importance label of one email and the reason for it.",
	Parameters: json.RawMessage(`{
	"type": "object",
	"properties": {
		"label": {"type": "string", "enum": ["Spam", "Unimportant", "Important"]},
		"reason": {"type": "string", "description": "One sentence explaining the label"}
	},
	"required": ["label", "reason"]
}`),
}

const classifierPrompt = `You label one email as Spam, Unimportant or Important.

- Important: messages from institutions, anything carrying a deadline, and professional or application-related content. These stay Important even when they look like a template or a forwarded message.
- Unimportant: newsletters, notifications and generic forwards without substantive content.
- Spam: unsolicited promotion, phishing and bulk mail.

Answer only through the email_classification tool.`

type Classifier struct {
	model llm.Model
}

func NewClassifier(model llm.Model) *Classifier {
	return &Classifier{model: model}
}

// Classify labels one message. The label is always one of domain.Labels;
// anything else is a *domain.ModelSchemaError.
func (c *Classifier) Classify(ctx context.Context, email domain.NormalizedEmail) (domain.Classification, error) {
	input := fmt.Sprintf("From: %s\nSubject: %s\nBody: %s", email.From, email.Subject, email.Content)

	raw, err := c.model.GenerateObject(ctx, classifierPrompt, llm.UserText(input), classificationSchema)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("failed to classify email %s: %w", email.ID, err)
	}

	out, err := llm.Decode(raw, classificationSchema.Name, func(c domain.Classification) error {
		_, err := domain.ParseLabel(string(c.Label))
		return err
	})
	if err != nil {
		return domain.Classification{}, err
	}
	out.Label, _ = domain.ParseLabel(string(out.Label))
	return out, nil
}
