// Package server exposes chat, notes and mail summaries over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jayan110105/neura/internal/agent"
	"github.com/jayan110105/neura/internal/auth"
	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/metrics"
	"github.com/jayan110105/neura/internal/notes"
	"github.com/jayan110105/neura/internal/store"
	"go.uber.org/zap"
)

// ChatAgent runs one chat turn.
type ChatAgent interface {
	Run(ctx context.Context, sess agent.Session, messages []domain.Message, onEvent agent.EventFunc) (*agent.Result, error)
}

type NoteService interface {
	List(ctx context.Context, ownerID string, f notes.Filter) ([]domain.Note, error)
	Add(ctx context.Context, n *domain.Note) (*domain.Note, error)
	Create(ctx context.Context, ownerID, title, content string) (*domain.Note, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// LoginFlow is the browser sign-in flow.
type LoginFlow interface {
	LoginURL(state string) string
	Callback(ctx context.Context, code string) (*auth.Login, error)
}

// Deps are the services behind the routes. Google may be nil, in which
// case the sign-in routes answer 503.
type Deps struct {
	Agent       ChatAgent
	Email       agent.EmailReader
	Notes       NoteService
	Transcripts store.TranscriptStore
	Sessions    *auth.Sessions
	Google      LoginFlow
	// SessionFor builds the per-turn identity of an authenticated user.
	SessionFor func(userID string) agent.Session
	Logger     *zap.Logger
	// SecureCookies marks cookies Secure; set it when served over HTTPS.
	SecureCookies bool
}

type Server struct {
	deps Deps
	log  *zap.Logger
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Server{deps: deps, log: deps.Logger}
}

// Handler returns the router with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.accessLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.GET("/auth/google/login", s.googleLogin)
	r.GET("/auth/google/callback", s.googleCallback)
	r.POST("/auth/logout", s.logout)

	api := r.Group("/api")
	api.Use(AuthMiddleware(s.deps.Sessions))
	{
		api.POST("/chat", s.chat)
		api.GET("/chat", s.getChat)
		api.DELETE("/chat", s.resetChat)

		api.GET("/notes", s.listNotes)
		api.POST("/notes", s.createNote)
		api.DELETE("/notes/:id", s.deleteNote)

		api.POST("/email/summary", s.emailSummary)
	}
	return r
}

// Config holds the listener settings of Run.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg Config) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func (s *Server) session(c *gin.Context) agent.Session {
	userID := c.GetString(userIDKey)
	if s.deps.SessionFor == nil {
		return agent.Session{UserID: userID}
	}
	return s.deps.SessionFor(userID)
}
