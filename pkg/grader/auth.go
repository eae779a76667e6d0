package grader

import (
	"context"
	"net/http"
)

// LoginResult mirrors the grading service login response.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"type"`
	UserID      int    `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for an access token and the account identity.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var result LoginResult
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password}, &result)
	if err != nil {
		return LoginResult{}, err
	}

	return result, nil
}
