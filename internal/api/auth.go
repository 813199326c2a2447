package api

import (
	"context"

	"github.com/roach88/plms/internal/model"
)

// Login exchanges credentials for a token and user profile.
func (c *Client) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	var out model.AuthResponse
	if err := c.post(ctx, "/auth/login", model.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its token and profile.
func (c *Client) Register(ctx context.Context, email, password, displayName string) (*model.AuthResponse, error) {
	req := model.RegisterRequest{Email: email, Password: password, DisplayName: displayName}
	var out model.AuthResponse
	if err := c.post(ctx, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me fetches the profile of the token's owner.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := c.get(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
