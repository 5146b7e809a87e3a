package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jayan110105/neura/internal/agent"
	"github.com/jayan110105/neura/internal/auth"
	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/notes"
	"github.com/jayan110105/neura/internal/pipeline"
	"github.com/jayan110105/neura/internal/store/sqlite"
	"golang.org/x/oauth2"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAgent struct {
	mu     sync.Mutex
	events []agent.Event
	err    error
	got    []domain.Message
	sess   agent.Session
}

func (f *fakeAgent) Run(_ context.Context, sess agent.Session, messages []domain.Message, onEvent agent.EventFunc) (*agent.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = messages
	f.sess = sess
	for _, ev := range f.events {
		onEvent(ev)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &agent.Result{Steps: 1}, nil
}

type fakeReader struct {
	res     *pipeline.Result
	err     error
	request string
	token   *oauth2.Token
}

func (f *fakeReader) ReadEmail(_ context.Context, _ string, token *oauth2.Token, request string) (*pipeline.Result, error) {
	f.request = request
	f.token = token
	return f.res, f.err
}

type fakeNotes struct {
	notes     []domain.Note
	filter    notes.Filter
	created   *domain.Note
	createErr error
	deleteErr error
	usedModel bool
}

func (f *fakeNotes) List(_ context.Context, ownerID string, flt notes.Filter) ([]domain.Note, error) {
	f.filter = flt
	out := []domain.Note{}
	for _, n := range f.notes {
		if n.OwnerID == ownerID && n.Matches(flt.Query, flt.Categories) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotes) Add(_ context.Context, n *domain.Note) (*domain.Note, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if err := n.Validate(); err != nil {
		return nil, errors.Join(notes.ErrInvalidNote, err)
	}
	n.ID = "note-1"
	f.created = n
	return n, nil
}

func (f *fakeNotes) Create(_ context.Context, ownerID, title, content string) (*domain.Note, error) {
	f.usedModel = true
	if f.createErr != nil {
		return nil, f.createErr
	}
	n := &domain.Note{ID: "note-2", Title: title, Content: content, OwnerID: ownerID, Category: domain.CategoryTasks, Tags: []string{"deadline"}}
	f.created = n
	return n, nil
}

func (f *fakeNotes) Delete(_ context.Context, _, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if id != "note-1" {
		return domain.ErrNotFound
	}
	return nil
}

type fakeLogin struct {
	code  string
	login *auth.Login
	err   error
}

func (f *fakeLogin) LoginURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (f *fakeLogin) Callback(_ context.Context, code string) (*auth.Login, error) {
	f.code = code
	return f.login, f.err
}

type testEnv struct {
	srv      *Server
	handler  http.Handler
	sessions *auth.Sessions
	db       *sqlite.DB
	agent    *fakeAgent
	reader   *fakeReader
	notes    *fakeNotes
	google   *fakeLogin
	tokenErr error
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("sqlite.New() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sessions, err := auth.NewSessions("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	env := &testEnv{
		sessions: sessions,
		db:       db,
		agent:    &fakeAgent{},
		reader:   &fakeReader{},
		notes:    &fakeNotes{},
		google:   &fakeLogin{},
	}
	env.srv = New(Deps{
		Agent:       env.agent,
		Email:       env.reader,
		Notes:       env.notes,
		Transcripts: db,
		Sessions:    sessions,
		Google:      env.google,
		SessionFor: func(userID string) agent.Session {
			return agent.Session{UserID: userID, Token: func(context.Context) (*oauth2.Token, error) {
				if env.tokenErr != nil {
					return nil, env.tokenErr
				}
				return &oauth2.Token{AccessToken: "mail-token"}, nil
			}}
		},
	})
	env.handler = env.srv.Handler()
	return env
}

func (e *testEnv) bearer(t *testing.T, userID string) string {
	t.Helper()
	tok, _, err := e.sessions.Issue(userID)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok
}

func (e *testEnv) do(t *testing.T, method, target, authz, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/healthz", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := decodeJSON[map[string]string](t, w)["status"]; got != "ok" {
		t.Errorf("status = %q, want %q", got, "ok")
	}
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/healthz", "", "")
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("response has no request ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("request ID = %q, want %q", got, "abc-123")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/healthz", "", "")

	w := env.do(t, http.MethodGet, "/metrics", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "neura_http_request_duration_seconds") {
		t.Errorf("metrics output lacks the HTTP histogram:\n%s", w.Body.String())
	}
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)

	expired := func() string {
		s, _ := auth.NewSessions("test-secret", time.Nanosecond)
		tok, _, _ := s.Issue("user-1")
		time.Sleep(time.Millisecond)
		return "Bearer " + tok
	}()

	tests := []struct {
		name  string
		authz string
		want  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"expired", expired, http.StatusUnauthorized},
		{"valid", env.bearer(t, "user-1"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/chat", tt.authz, "")
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_Cookie(t *testing.T) {
	env := newTestEnv(t)
	tok, _, _ := env.sessions.Issue("user-1")

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tok})
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestGoogleLogin(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/auth/google/login", "", "")
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}

	var state string
	for _, c := range w.Result().Cookies() {
		if c.Name == stateCookie {
			state = c.Value
		}
	}
	if state == "" {
		t.Fatal("no state cookie set")
	}
	loc, _ := url.Parse(w.Header().Get("Location"))
	if got := loc.Query().Get("state"); got != state {
		t.Errorf("redirect state = %q, want cookie state %q", got, state)
	}
}

func TestGoogleCallback(t *testing.T) {
	env := newTestEnv(t)
	env.google.login = &auth.Login{
		User:    &domain.User{ID: "user-1", Email: "ada@example.com"},
		Session: "session-token",
		Expires: time.Now().Add(time.Hour).Unix(),
	}

	callback := func(query, cookieState string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?"+query, nil)
		if cookieState != "" {
			req.AddCookie(&http.Cookie{Name: stateCookie, Value: cookieState})
		}
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)
		return w
	}

	t.Run("success", func(t *testing.T) {
		w := callback("state=s1&code=c1", "s1")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
		}
		if env.google.code != "c1" {
			t.Errorf("code = %q, want %q", env.google.code, "c1")
		}
		var session string
		for _, c := range w.Result().Cookies() {
			if c.Name == auth.CookieName {
				session = c.Value
			}
		}
		if session != "session-token" {
			t.Errorf("session cookie = %q, want %q", session, "session-token")
		}
	})

	tests := []struct {
		name   string
		query  string
		cookie string
	}{
		{"state mismatch", "state=s1&code=c1", "s2"},
		{"no state cookie", "state=s1&code=c1", ""},
		{"denied", "error=access_denied&state=s1", "s1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := callback(tt.query, tt.cookie); w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}

	t.Run("exchange failure", func(t *testing.T) {
		env.google.err = &domain.AuthError{Op: "auth.Callback", Err: errors.New("bad code")}
		defer func() { env.google.err = nil }()
		if w := callback("state=s1&code=c1", "s1"); w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})
}

func TestGoogleRoutesUnconfigured(t *testing.T) {
	sessions, _ := auth.NewSessions("s", time.Hour)
	h := New(Deps{Sessions: sessions}).Handler()
	for _, path := range []string{"/auth/google/login", "/auth/google/callback"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want 503", path, w.Code)
		}
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/auth/logout", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName && c.MaxAge >= 0 {
			t.Errorf("session cookie not cleared: %+v", c)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"auth", &domain.AuthError{Op: "x", Err: errors.New("expired")}, http.StatusUnauthorized},
		{"schema", &domain.ModelSchemaError{Schema: "gmail_query", Err: errors.New("bad")}, http.StatusBadGateway},
		{"provider", &domain.ProviderError{Op: "x", Err: errors.New("503")}, http.StatusBadGateway},
		{"persistence", &domain.PersistenceError{Op: "x", Err: errors.New("disk")}, http.StatusInternalServerError},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"invalid note", notes.ErrInvalidNote, http.StatusBadRequest},
		{"bad request", errBadRequest, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}
