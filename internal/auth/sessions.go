// Package auth issues and verifies session tokens and runs the Google
// sign-in flow that links a user's mailbox.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jayan110105/neura/internal/domain"
)

// CookieName is the browser cookie carrying the session token.
const CookieName = "neura_session"

const (
	issuer     = "neura"
	DefaultTTL = 7 * 24 * time.Hour
)

// Sessions signs HS256 session tokens whose subject is the user ID.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration) (*Sessions, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token for userID and its expiry.
func (s *Sessions) Issue(userID string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return token, exp, nil
}

// Verify validates token and returns the user ID it was issued for.
// Every failure is a *domain.AuthError.
func (s *Sessions) Verify(token string) (string, error) {
	const op = "auth.Verify"
	if token == "" {
		return "", &domain.AuthError{Op: op, Err: errors.New("missing session token")}
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", &domain.AuthError{Op: op, Err: err}
	}
	if claims.Subject == "" {
		return "", &domain.AuthError{Op: op, Err: jwt.ErrTokenInvalidClaims}
	}
	return claims.Subject, nil
}

// TokenFromRequest reads the session token from the Authorization bearer
// header, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}
