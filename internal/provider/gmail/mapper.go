package gmail

import (
	"net/mail"
	"strings"
	"time"

	"github.com/jayan110105/neura/internal/domain"
	gmailapi "google.golang.org/api/gmail/v1"
)

// mapMessage converts a Gmail API Message to a domain Email envelope.
func mapMessage(msg *gmailapi.Message) *domain.Email {
	var headers []*gmailapi.MessagePartHeader
	if msg.Payload != nil {
		headers = msg.Payload.Headers
	}

	return &domain.Email{
		ID:          msg.Id,
		ThreadID:    msg.ThreadId,
		From:        parseAddress(findHeader(headers, "From")),
		Subject:     findHeader(headers, "Subject"),
		Date:        parseDate(findHeader(headers, "Date")),
		Labels:      msg.LabelIds,
		InReplyTo:   findHeader(headers, "In-Reply-To"),
		Body:        mapPart(msg.Payload),
		Attachments: extractAttachments(msg.Payload),
	}
}

// mapPart copies the payload tree into the domain representation. Data is
// left transport-encoded.
func mapPart(part *gmailapi.MessagePart) domain.Part {
	if part == nil {
		return domain.Part{}
	}
	if len(part.Parts) > 0 {
		children := make([]domain.Part, 0, len(part.Parts))
		for _, p := range part.Parts {
			if p != nil {
				children = append(children, mapPart(p))
			}
		}
		return domain.Container(part.MimeType, children...)
	}

	leaf := domain.Leaf(part.MimeType, "")
	leaf.Filename = part.Filename
	if part.Body != nil {
		leaf.Data = part.Body.Data
	}
	return leaf
}

// findHeader performs a case-insensitive lookup for a header value.
func findHeader(headers []*gmailapi.MessagePartHeader, name string) string {
	lower := strings.ToLower(name)
	for _, h := range headers {
		if strings.ToLower(h.Name) == lower {
			return h.Value
		}
	}
	return ""
}

// parseAddress parses an RFC 5322 address string into a domain Address.
// Falls back to treating the entire string as a bare email if parsing fails.
func parseAddress(s string) domain.Address {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Address{}
	}

	addr, err := mail.ParseAddress(s)
	if err != nil {
		return domain.Address{Email: s}
	}
	return domain.Address{
		Name:  addr.Name,
		Email: addr.Address,
	}
}

// parseDate tries the date layouts commonly seen in mail headers.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := mail.ParseDate(s); err == nil {
		return t
	}

	formats := []string{
		"2006-01-02T15:04:05Z07:00",
		"Mon, 02 Jan 2006 15:04:05 -0700 (MST)",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// extractAttachments collects attachment metadata from message parts.
func extractAttachments(payload *gmailapi.MessagePart) []domain.Attachment {
	if payload == nil {
		return nil
	}
	var attachments []domain.Attachment
	collectAttachments(payload, &attachments)
	return attachments
}

func collectAttachments(part *gmailapi.MessagePart, attachments *[]domain.Attachment) {
	if part.Filename != "" && part.Body != nil {
		*attachments = append(*attachments, domain.Attachment{
			ID:       part.Body.AttachmentId,
			Filename: part.Filename,
			MIMEType: part.MimeType,
			Size:     part.Body.Size,
		})
	}
	for _, p := range part.Parts {
		if p != nil {
			collectAttachments(p, attachments)
		}
	}
}
