package domain

import (
	"fmt"
	"strings"
	"time"
)

// Label is the importance class assigned to one email. The set is closed.
type Label string

const (
	LabelSpam        Label = "Spam"
	LabelUnimportant Label = "Unimportant"
	LabelImportant   Label = "Important"
)

// Labels lists every valid label in schema order.
var Labels = []Label{LabelSpam, LabelUnimportant, LabelImportant}

// ParseLabel matches s against the closed label set, ignoring case and
// surrounding space.
func ParseLabel(s string) (Label, error) {
	s = strings.TrimSpace(s)
	for _, l := range Labels {
		if strings.EqualFold(s, string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown label %q", s)
}

type Classification struct {
	Label  Label  `json:"label"`
	Reason string `json:"reason"`
}

// NormalizedEmail is an envelope reduced to plain text and tagged with
// its classification. It lives for one request.
type NormalizedEmail struct {
	ID             string         `json:"id"`
	ThreadID       string         `json:"thread_id,omitempty"`
	Subject        string         `json:"subject"`
	From           string         `json:"from"`
	Date           time.Time      `json:"date"`
	Unread         bool           `json:"unread"`
	InReplyTo      string         `json:"in_reply_to,omitempty"`
	Content        string         `json:"content"`
	HasAttachments bool           `json:"has_attachments"`
	Classification Classification `json:"classification"`
}

func (n *NormalizedEmail) IsImportant() bool {
	return n.Classification.Label == LabelImportant
}

// QuerySpec is a provider query plus a bounded result count.
type QuerySpec struct {
	Q          string `json:"q"`
	MaxResults int    `json:"maxResults"`
}

const (
	MinQueryResults     = 1
	MaxQueryResults     = 50
	DefaultQueryResults = 10
)

func (q QuerySpec) Validate() error {
	if q.MaxResults < MinQueryResults || q.MaxResults > MaxQueryResults {
		return fmt.Errorf("maxResults %d outside [%d,%d]", q.MaxResults, MinQueryResults, MaxQueryResults)
	}
	return nil
}
