package provider

import (
	"context"

	"github.com/jayan110105/neura/internal/domain"
	"golang.org/x/oauth2"
)

type ListOptions struct {
	Query      string
	MaxResults int
}

// MailClient fetches message envelopes on behalf of one user. The token is
// passed per call; clients hold no per-user state.
type MailClient interface {
	// ListMessages lists matching message IDs, then fetches each message in
	// list order. It returns domain.ErrNoMessages when nothing matches,
	// *domain.AuthError for rejected credentials and *domain.ProviderError
	// for everything else. Nothing is retried.
	ListMessages(ctx context.Context, token *oauth2.Token, opts ListOptions) ([]domain.Email, error)

	// Profile returns the mailbox address the token belongs to.
	Profile(ctx context.Context, token *oauth2.Token) (string, error)
}
