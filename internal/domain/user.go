package domain

import (
	"time"

	"golang.org/x/oauth2"
)

// User is an account that signed in with Google. Token holds the mail
// provider credentials, refreshed in place when they expire.
type User struct {
	ID        string
	Email     string
	Name      string
	Token     *oauth2.Token
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) HasToken() bool {
	return u.Token != nil && u.Token.AccessToken != ""
}
