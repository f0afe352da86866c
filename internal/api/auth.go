package api

import (
	"context"
	"net/url"

	"github.com/Kimutaijeremy/handyproconnect/internal/models"
)

// Login exchanges credentials for a bearer token. The endpoint expects an
// OAuth2 password form, so the email travels as "username".
func (c *Client) Login(ctx context.Context, email, password string) (*models.Token, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var resp models.Token
	if err := c.post(ctx, "login", "/auth/login", form, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &RequestError{Op: "login", Err: errEmptyToken}
	}
	return &resp, nil
}

// Register creates an account. It does not log the user in.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var user models.User
	if err := c.post(ctx, "register", "/auth/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Profile returns the caller's profile.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.get(ctx, "get profile", "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileWithToken fetches the profile for a token that is not yet held by
// the session. A 401 here does not clear the session.
func (c *Client) ProfileWithToken(ctx context.Context, token string) (*models.User, error) {
	return c.withToken(token).Profile(ctx)
}
