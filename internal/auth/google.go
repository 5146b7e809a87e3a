package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/provider"
	"github.com/jayan110105/neura/internal/provider/gmail"
	"github.com/jayan110105/neura/internal/store"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Google runs the web sign-in flow. Signing in links the user's Gmail
// mailbox and issues a session.
type Google struct {
	oauth    *oauth2.Config
	mail     provider.MailClient
	users    store.UserStore
	sessions *Sessions
}

func NewGoogle(cfg *oauth2.Config, mail provider.MailClient, users store.UserStore, sessions *Sessions) *Google {
	return &Google{oauth: cfg, mail: mail, users: users, sessions: sessions}
}

// LoginURL returns the consent page URL for state.
func (g *Google) LoginURL(state string) string {
	return gmail.AuthCodeURL(g.oauth, state)
}

// Login is the outcome of a completed sign-in.
type Login struct {
	User    *domain.User
	Session string
	Expires int64
}

// Callback exchanges the authorization code, resolves the mailbox address,
// stores the user with the token and issues a session.
func (g *Google) Callback(ctx context.Context, code string) (*Login, error) {
	const op = "auth.Callback"
	if code == "" {
		return nil, &domain.AuthError{Op: op, Err: errors.New("missing authorization code")}
	}

	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, &domain.AuthError{Op: op, Err: fmt.Errorf("failed to exchange code: %w", err)}
	}

	email, err := g.mail.Profile(ctx, token)
	if err != nil {
		return nil, err
	}

	user := &domain.User{Email: email, Token: token}
	if err := g.users.UpsertUser(ctx, user); err != nil {
		return nil, &domain.PersistenceError{Op: op, Err: err}
	}

	session, exp, err := g.sessions.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Login{User: user, Session: session, Expires: exp.Unix()}, nil
}

// NewState returns a random value for the OAuth state parameter.
func NewState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// TokenRefresher hands out valid provider tokens, refreshing expired ones
// and saving the refreshed token back.
type TokenRefresher struct {
	oauth  *oauth2.Config
	tokens store.TokenStore
	log    *zap.Logger
}

func NewTokenRefresher(cfg *oauth2.Config, tokens store.TokenStore, log *zap.Logger) *TokenRefresher {
	if log == nil {
		log = zap.NewNop()
	}
	return &TokenRefresher{oauth: cfg, tokens: tokens, log: log}
}

// Token returns a valid token for userID. A missing token, an expired
// token without a refresh token, and a rejected refresh are all
// *domain.AuthError.
func (r *TokenRefresher) Token(ctx context.Context, userID string) (*oauth2.Token, error) {
	const op = "auth.Token"

	tok, err := r.tokens.LoadToken(ctx, userID)
	switch {
	case errors.Is(err, store.ErrSecretNotFound), errors.Is(err, domain.ErrNotFound):
		tok = nil
	case err != nil:
		return nil, &domain.PersistenceError{Op: op, Err: err}
	}
	if tok == nil {
		return nil, &domain.AuthError{Op: op, Err: errors.New("no mail account linked; sign in with Google")}
	}
	if tok.Valid() {
		return tok, nil
	}
	if tok.RefreshToken == "" {
		return nil, &domain.AuthError{Op: op, Err: errors.New("mail token expired and cannot be refreshed; sign in again")}
	}

	fresh, err := r.oauth.TokenSource(ctx, tok).Token()
	if err != nil {
		return nil, &domain.AuthError{Op: op, Err: fmt.Errorf("failed to refresh mail token: %w", err)}
	}
	if err := r.tokens.SaveToken(ctx, userID, fresh); err != nil {
		r.log.Error("failed to save refreshed token",
			zap.String("user_id", userID),
			zap.Error(&domain.PersistenceError{Op: op, Err: err}))
	}
	return fresh, nil
}
