package gateway

import (
	"context"
	"net/http"

	"finman/internal/core"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account. The backend answers with a plain
// confirmation string, so nothing is decoded.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register", req, nil, false)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token. Storing the token is
// the session store's job, not the gateway's.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Username: username, Password: password}, &resp, false)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

type userPayload struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CurrentUser fetches the authenticated account. This is also the one
// startup session-validation probe.
func (c *Client) CurrentUser(ctx context.Context) (core.User, error) {
	var p userPayload
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &p, true); err != nil {
		return core.User{}, err
	}
	return core.User{ID: p.ID, Username: p.Username, Email: p.Email}, nil
}
