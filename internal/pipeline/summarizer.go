package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/llm"
)

const summarizerPrompt = `You write a Markdown report of the user's emails.

Structure:
- Important emails come first, grouped by sender. Merge emails with similar subjects into one entry.
- For each important entry give the key facts, dates and anything the user must do.
- Spam and unimportant emails go in one short section at the end, one line each with sender and subject.
- Do not add a separate "Action Items" heading.`

type Summarizer struct {
	model llm.Model
}

func NewSummarizer(model llm.Model) *Summarizer {
	return &Summarizer{model: model}
}

// Summarize makes one free-text call. The reply is returned as is.
func (s *Summarizer) Summarize(ctx context.Context, request string, emails []domain.NormalizedEmail) (string, error) {
	var b strings.Builder
	if request != "" {
		fmt.Fprintf(&b, "Request: %s\n\n", request)
	}
	b.WriteString(FormatForSummary(emails))

	out, err := s.model.GenerateText(ctx, summarizerPrompt, llm.UserText(b.String()))
	if err != nil {
		return "", fmt.Errorf("failed to summarize emails: %w", err)
	}
	return out, nil
}

// FormatForSummary renders important emails in full and everything else
// as sender and subject only.
func FormatForSummary(emails []domain.NormalizedEmail) string {
	var important, rest []string
	for _, e := range emails {
		if e.IsImportant() {
			important = append(important, formatImportant(e))
			continue
		}
		line := fmt.Sprintf("- [%s] From: %s | Subject: %s", e.Classification.Label, e.From, e.Subject)
		if e.Unread {
			line += " (unread)"
		}
		rest = append(rest, line)
	}

	var b strings.Builder
	b.WriteString("## Important\n\n")
	if len(important) == 0 {
		b.WriteString("None.\n")
	}
	b.WriteString(strings.Join(important, "\n---\n"))

	b.WriteString("\n## Spam / Unimportant\n\n")
	if len(rest) == 0 {
		b.WriteString("None.\n")
	} else {
		b.WriteString(strings.Join(rest, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

const summaryDateLayout = "Mon, 02 Jan 2006 15:04 MST"

func formatImportant(e domain.NormalizedEmail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\n", e.From)
	fmt.Fprintf(&b, "Subject: %s\n", e.Subject)
	if !e.Date.IsZero() {
		fmt.Fprintf(&b, "Date: %s\n", e.Date.Format(summaryDateLayout))
	}
	if e.Unread {
		b.WriteString("Unread: yes\n")
	}
	if e.InReplyTo != "" {
		fmt.Fprintf(&b, "In-Reply-To: %s\n", e.InReplyTo)
	}
	if e.HasAttachments {
		b.WriteString("Attachments: yes\n")
	}
	fmt.Fprintf(&b, "Reason: %s\n", e.Classification.Reason)
	fmt.Fprintf(&b, "Content: %s\n", e.Content)
	return b.String()
}
