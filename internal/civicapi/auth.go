package civicapi

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/civica-dev/civica/internal/faults"
	"github.com/civica-dev/civica/internal/log"
	"github.com/civica-dev/civica/internal/model"
)

// Register creates a new resident account. Accounts created here always get
// the resident role; worker and admin accounts are provisioned server-side.
func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.Profile, error) {
	var profile model.Profile
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", nil, reg, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Login exchanges credentials for an access token via the service's
// password-grant token endpoint. The form encoding and response shape follow
// RFC 6749, so the exchange runs through the oauth2 package.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + "/auth/login",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	tok, err := conf.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			code, detail := parseErrorBody(retrieveErr.Body)
			status := 0
			if retrieveErr.Response != nil {
				status = retrieveErr.Response.StatusCode
			}
			log.Debug("login rejected", "status", status, "detail", detail)
			return nil, faults.FromResponse(status, code, detail)
		}
		return nil, faults.FromTransport(err)
	}

	return &Token{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
	}, nil
}

// Profile fetches the signed-in user's account.
func (c *Client) Profile(ctx context.Context, token string) (*model.Profile, error) {
	var profile model.Profile
	if err := c.do(ctx, http.MethodGet, "/users/me", token, nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ChangePassword rotates the signed-in user's password. The current token
// stays valid afterwards.
func (c *Client) ChangePassword(ctx context.Context, token string, change model.PasswordChange) error {
	return c.do(ctx, http.MethodPost, "/users/me/change-password", token, nil, change, nil)
}
