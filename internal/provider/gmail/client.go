package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/provider"
	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const userID = "me"

var _ provider.MailClient = (*Client)(nil)

// Client implements provider.MailClient for Gmail. A fresh API service is
// built for every call from the caller's token.
type Client struct {
	oauth   *oauth2.Config
	options []option.ClientOption
}

// New creates a Gmail client. Extra options are appended after the token
// source, which lets tests point the client at a local endpoint.
func New(cfg *oauth2.Config, opts ...option.ClientOption) *Client {
	return &Client{oauth: cfg, options: opts}
}

func (c *Client) service(ctx context.Context, op string, token *oauth2.Token) (*gmailapi.Service, error) {
	if token == nil || (token.AccessToken == "" && token.RefreshToken == "") {
		return nil, &domain.AuthError{Op: op, Err: errors.New("missing gmail access token")}
	}

	opts := append([]option.ClientOption{
		option.WithTokenSource(c.oauth.TokenSource(ctx, token)),
	}, c.options...)
	srv, err := gmailapi.NewService(ctx, opts...)
	if err != nil {
		return nil, &domain.ProviderError{Op: op, Err: fmt.Errorf("failed to create gmail service: %w", err)}
	}
	return srv, nil
}

// ListMessages returns the messages matching opts, fully fetched, in the
// order the list call returned them.
func (c *Client) ListMessages(ctx context.Context, token *oauth2.Token, opts provider.ListOptions) ([]domain.Email, error) {
	const op = "gmail.ListMessages"

	srv, err := c.service(ctx, op, token)
	if err != nil {
		return nil, err
	}

	call := srv.Users.Messages.List(userID)
	if opts.MaxResults > 0 {
		call = call.MaxResults(int64(opts.MaxResults))
	}
	if opts.Query != "" {
		call = call.Q(opts.Query)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, classify(op, fmt.Errorf("failed to list gmail messages: %w", err))
	}
	if len(resp.Messages) == 0 {
		return nil, domain.ErrNoMessages
	}

	emails := make([]domain.Email, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		if m.Id == "" {
			continue
		}
		msg, err := srv.Users.Messages.Get(userID, m.Id).
			Format("full").Context(ctx).Do()
		if err != nil {
			return nil, classify(op, fmt.Errorf("failed to get gmail message %s: %w", m.Id, err))
		}
		emails = append(emails, *mapMessage(msg))
	}
	return emails, nil
}

// Profile returns the authenticated user's email address.
func (c *Client) Profile(ctx context.Context, token *oauth2.Token) (string, error) {
	const op = "gmail.Profile"

	srv, err := c.service(ctx, op, token)
	if err != nil {
		return "", err
	}
	profile, err := srv.Users.GetProfile(userID).Context(ctx).Do()
	if err != nil {
		return "", classify(op, fmt.Errorf("failed to get gmail profile: %w", err))
	}
	return profile.EmailAddress, nil
}

// classify sorts a Gmail failure into the auth or provider bucket. Quota
// errors arrive as 403 too and stay provider errors.
func classify(op string, err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return &domain.AuthError{Op: op, Err: err}
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized:
			return &domain.AuthError{Op: op, Err: err}
		case http.StatusForbidden:
			if !isRateLimited(gerr) {
				return &domain.AuthError{Op: op, Err: err}
			}
		}
	}
	return &domain.ProviderError{Op: op, Err: err}
}

func isRateLimited(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		switch item.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded", "quotaExceeded":
			return true
		}
	}
	return false
}
