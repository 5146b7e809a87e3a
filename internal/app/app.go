// Package app wires the store, the model client, the mail adapter and the
// services built on them. Both the HTTP server and the CLI start here.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jayan110105/neura/internal/agent"
	"github.com/jayan110105/neura/internal/auth"
	"github.com/jayan110105/neura/internal/cache"
	"github.com/jayan110105/neura/internal/config"
	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/llm"
	"github.com/jayan110105/neura/internal/notes"
	"github.com/jayan110105/neura/internal/pipeline"
	"github.com/jayan110105/neura/internal/provider/gmail"
	"github.com/jayan110105/neura/internal/store"
	"github.com/jayan110105/neura/internal/store/postgres"
	"github.com/jayan110105/neura/internal/store/sqlite"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// App holds the long-lived services of one process.
type App struct {
	Config   *config.Config
	Log      *zap.Logger
	Store    store.Store
	Secrets  *store.KeyringSecretStore
	OAuth    *oauth2.Config
	Mail     *gmail.Client
	Model    *llm.Client
	Pipeline *pipeline.Pipeline
	Notes    *notes.Service
	Agent    *agent.Agent

	cache *cache.Redis
}

// New builds the application from cfg. A Redis cache is connected only
// when cfg.Cache.RedisAddr is set.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Log:     log,
		Store:   st,
		Secrets: store.NewKeyringSecretStore(),
		OAuth:   gmail.OAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.RedirectURL()),
		Model:   llm.NewClient(cfg.Model.APIKey, cfg.Model.Model, cfg.Model.MaxTokens, cfg.Model.BaseURL),
	}
	a.Mail = gmail.New(a.OAuth)

	var classifications pipeline.Cache
	if cfg.Cache.RedisAddr != "" {
		a.cache, err = cache.NewRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.Cache.TTL.Duration)
		if err != nil {
			st.Close()
			return nil, err
		}
		classifications = a.cache
		log.Info("classification cache enabled", zap.String("addr", cfg.Cache.RedisAddr))
	}

	a.Pipeline = pipeline.New(a.Mail, a.Model, pipeline.Options{
		Concurrency:       cfg.Agent.ClassifyConcurrency,
		Cache:             classifications,
		Logger:            log,
		DefaultMaxResults: cfg.Agent.DefaultMaxResults,
	})
	a.Notes = notes.NewService(a.Model, st)
	a.Agent = agent.New(a.Model, st, []agent.Tool{
		agent.NewReadEmailTool(a.Pipeline),
		agent.NewReadNotesTool(a.Notes),
		agent.NewCreateNoteTool(a.Notes),
	}, agent.Options{MaxSteps: cfg.Agent.MaxSteps, Logger: log})

	return a, nil
}

// OpenStore opens the database named by cfg.Database.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Database.Driver {
	case "", "sqlite":
		dsn := cfg.DSN()
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o700); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		db, err := sqlite.New(dsn)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "postgres":
		if cfg.Database.DSN == "" {
			return nil, errors.New("postgres driver requires database.dsn or DATABASE_URL")
		}
		db, err := postgres.New(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q (use sqlite or postgres)", cfg.Database.Driver)
	}
}

// CheckModel reports whether the model client can be used.
func (a *App) CheckModel() error {
	if a.Config.Model.APIKey == "" {
		return fmt.Errorf("anthropic API key not configured; set ANTHROPIC_API_KEY or run 'neura secret set %s'", config.SecretAnthropicKey)
	}
	return nil
}

// CheckGoogle reports whether the Google OAuth client is configured.
func (a *App) CheckGoogle() error {
	if a.Config.Google.ClientID == "" || a.Config.Google.ClientSecret == "" {
		return errors.New("google OAuth client not configured; set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
	}
	return nil
}

// Session returns the per-turn identity for userID. Mail tokens are read
// from tokens and refreshed on demand.
func (a *App) Session(userID string, tokens store.TokenStore) agent.Session {
	refresher := auth.NewTokenRefresher(a.OAuth, tokens, a.Log)
	return agent.Session{
		UserID: userID,
		Token: func(ctx context.Context) (*oauth2.Token, error) {
			return refresher.Token(ctx, userID)
		},
	}
}

// LocalUserID returns the user the CLI acts as, recorded by 'neura login'.
func (a *App) LocalUserID() (string, error) {
	id, err := a.Secrets.Get(store.LocalUserKey)
	if errors.Is(err, store.ErrSecretNotFound) {
		return "", &domain.AuthError{Op: "app.LocalUserID", Err: errors.New("not signed in; run 'neura login' first")}
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// LocalSession is the session of the CLI user, with the mail token kept in
// the OS keyring.
func (a *App) LocalSession() (agent.Session, error) {
	id, err := a.LocalUserID()
	if err != nil {
		return agent.Session{}, err
	}
	return a.Session(id, a.Secrets), nil
}

// Close releases the store and the cache connection.
func (a *App) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	errs = append(errs, a.Store.Close())
	return errors.Join(errs...)
}
