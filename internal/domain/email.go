package domain

import "time"

// LabelUnread is the provider label carried by messages not yet read.
const LabelUnread = "UNREAD"

type Address struct {
	Name  string
	Email string
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return a.Name + " <" + a.Email + ">"
}

type Attachment struct {
	ID       string
	Filename string
	MIMEType string
	Size     int64
}

// Email is one message envelope as returned by the mail provider. It is
// scoped to a single fetch and never persisted.
type Email struct {
	ID          string
	ThreadID    string
	From        Address
	Subject     string
	Date        time.Time
	Labels      []string
	InReplyTo   string
	Body        Part
	Attachments []Attachment
}

func (e *Email) HasAttachments() bool {
	return len(e.Attachments) > 0
}

func (e *Email) HasLabel(label string) bool {
	for _, l := range e.Labels {
		if l == label {
			return true
		}
	}
	return false
}
