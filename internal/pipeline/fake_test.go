package pipeline

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync"

	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/llm"
	"github.com/jayan110105/neura/internal/provider"
	"golang.org/x/oauth2"
)

// fakeModel answers structured calls through object and text calls through
// text, recording every call.
type fakeModel struct {
	mu      sync.Mutex
	object  func(system, input string, schema llm.Schema) (string, error)
	text    func(system, input string) (string, error)
	objects []string
	texts   []string
	systems []string
}

func (m *fakeModel) GenerateObject(_ context.Context, system string, messages []domain.Message, schema llm.Schema) (json.RawMessage, error) {
	input := messages[len(messages)-1].Content
	m.mu.Lock()
	m.objects = append(m.objects, schema.Name)
	m.systems = append(m.systems, system)
	m.mu.Unlock()
	if m.object == nil {
		return nil, errors.New("unexpected structured call")
	}
	out, err := m.object(system, input, schema)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(out), nil
}

func (m *fakeModel) GenerateText(_ context.Context, system string, messages []domain.Message) (string, error) {
	input := messages[len(messages)-1].Content
	m.mu.Lock()
	m.texts = append(m.texts, input)
	m.mu.Unlock()
	if m.text == nil {
		return "", errors.New("unexpected text call")
	}
	return m.text(system, input)
}

func (m *fakeModel) objectCalls(schema string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.objects {
		if s == schema {
			n++
		}
	}
	return n
}

type fakeMail struct {
	emails []domain.Email
	err    error
	opts   provider.ListOptions
	token  *oauth2.Token
}

func (f *fakeMail) ListMessages(_ context.Context, token *oauth2.Token, opts provider.ListOptions) ([]domain.Email, error) {
	f.opts = opts
	f.token = token
	if f.err != nil {
		return nil, f.err
	}
	if len(f.emails) == 0 {
		return nil, domain.ErrNoMessages
	}
	return f.emails, nil
}

func (f *fakeMail) Profile(context.Context, *oauth2.Token) (string, error) {
	return "me@example.com", nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string]domain.Classification
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]domain.Classification)}
}

func (c *memCache) GetClassification(_ context.Context, key string) (domain.Classification, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) SetClassification(_ context.Context, key string, v domain.Classification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = v
	return nil
}

func textEmail(id, from, subject, body string) domain.Email {
	return domain.Email{
		ID:      id,
		From:    domain.Address{Email: from},
		Subject: subject,
		Body: domain.Container("multipart/alternative",
			domain.Leaf("text/plain", base64.URLEncoding.EncodeToString([]byte(body))),
		),
	}
}
