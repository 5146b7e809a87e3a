package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jayan110105/neura/internal/auth"
	"github.com/jayan110105/neura/internal/domain"
)

const (
	stateCookie = "neura_oauth_state"
	stateTTL    = 10 * time.Minute
)

func (s *Server) setCookie(c *gin.Context, name, value string, expires time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.deps.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearCookie(c *gin.Context, name string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.deps.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// googleLogin handles GET /auth/google/login.
func (s *Server) googleLogin(c *gin.Context) {
	if s.deps.Google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google sign-in is not configured"})
		return
	}
	state, err := auth.NewState()
	if err != nil {
		abortWithError(c, err)
		return
	}
	s.setCookie(c, stateCookie, state, time.Now().Add(stateTTL))
	c.Redirect(http.StatusFound, s.deps.Google.LoginURL(state))
}

// googleCallback handles GET /auth/google/callback.
func (s *Server) googleCallback(c *gin.Context) {
	if s.deps.Google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google sign-in is not configured"})
		return
	}
	const op = "server.googleCallback"

	if msg := c.Query("error"); msg != "" {
		abortWithError(c, &domain.AuthError{Op: op, Err: fmt.Errorf("sign-in denied: %s", msg)})
		return
	}
	want, err := c.Cookie(stateCookie)
	if err != nil || want == "" || c.Query("state") != want {
		abortWithError(c, &domain.AuthError{Op: op, Err: errors.New("state mismatch")})
		return
	}
	s.clearCookie(c, stateCookie)

	login, err := s.deps.Google.Callback(c.Request.Context(), c.Query("code"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	s.setCookie(c, auth.CookieName, login.Session, time.Unix(login.Expires, 0))
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    login.User.ID,
			"email": login.User.Email,
		},
		"token":     login.Session,
		"expiresAt": login.Expires,
	})
}

// logout handles POST /auth/logout.
func (s *Server) logout(c *gin.Context) {
	s.clearCookie(c, auth.CookieName)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
