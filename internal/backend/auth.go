package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/erazemk/zaloga/internal/model"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued credential and role.
type LoginResponse struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	Message string `json:"message,omitempty"`
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	env, err := c.do(ctx, call{method: http.MethodPost, route: "/auth/register", path: "/auth/register", body: req}, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// Login exchanges credentials for a bearer token and role.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if _, err := c.do(ctx, call{method: http.MethodPost, route: "/auth/login", path: "/auth/login", body: req}, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "login response carried no token"}
	}
	return &resp, nil
}

// CurrentUser returns the account the token belongs to. The backend answers
// either with a bare user object or with a {"user": ...} envelope.
func (c *Client) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, call{method: http.MethodGet, route: "/users/current", path: "/users/current", token: token}, &raw); err != nil {
		return nil, err
	}

	var wrapped struct {
		User *model.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil {
		return wrapped.User, nil
	}

	var user model.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decoding current user: %w", err)
	}
	return &user, nil
}
