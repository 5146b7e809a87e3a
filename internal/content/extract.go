// Package content turns message body trees into normalized plain text.
package content

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/jayan110105/neura/internal/domain"
)

// Placeholder stands in for a message with no decodable text part.
const Placeholder = "No content found"

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	spacePattern      = regexp.MustCompile(`[\s\p{Zs}]+`)
	disclaimerPattern = regexp.MustCompile(`(?s)Disclaimer:.*$`)

	urlSafe = strings.NewReplacer("-", "+", "_", "/")
)

// Extract walks the body tree depth-first, decodes every text/plain and
// text/html leaf, and cleans the concatenated result. It never fails:
// undecodable leaves contribute nothing.
func Extract(body domain.Part) string {
	var parts []string
	body.Walk(func(leaf domain.Part) {
		if !isText(leaf.MIMEType) {
			return
		}
		if text := Decode(leaf.Data); text != "" {
			parts = append(parts, text)
		}
	})
	return Clean(strings.Join(parts, "\n"))
}

func isText(mimeType string) bool {
	mt := strings.ToLower(mimeType)
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	mt = strings.TrimSpace(mt)
	return mt == "text/plain" || mt == "text/html"
}

// Decode reverses the provider's URL-safe base64 variant. Padding is
// optional. Malformed input decodes to "".
func Decode(data string) string {
	if data == "" {
		return ""
	}
	s := strings.TrimRight(urlSafe.Replace(data), "=")
	b, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return ""
	}
	return string(b)
}

// Clean strips markup, collapses whitespace and drops the trailing
// disclaimer block.
func Clean(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	text = spacePattern.ReplaceAllString(text, " ")
	text = disclaimerPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Normalize builds the request-scoped view of an envelope. The body falls
// back to Placeholder when no text could be extracted.
func Normalize(e *domain.Email) domain.NormalizedEmail {
	body := Extract(e.Body)
	if body == "" {
		body = Placeholder
	}
	return domain.NormalizedEmail{
		ID:             e.ID,
		ThreadID:       e.ThreadID,
		Subject:        e.Subject,
		From:           e.From.String(),
		Date:           e.Date,
		Unread:         e.HasLabel(domain.LabelUnread),
		InReplyTo:      e.InReplyTo,
		Content:        body,
		HasAttachments: e.HasAttachments(),
	}
}
