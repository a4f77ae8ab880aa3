package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Credentials are exchanged once for a bearer token.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token is the login response.
type Token struct {
	AccessToken string `json:"accessToken"`
}

// AuthError reports a failed login: transport failure, non-2xx status, or a
// body without a usable accessToken.
type AuthError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("authentication failed: %v", e.Err)
	}
	return fmt.Sprintf("authentication failed (status %d): %v: %s", e.StatusCode, e.Err, e.Body)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Authenticate logs in with creds and, on success, attaches the returned
// token to the client. It performs exactly one request.
func (c *Client) Authenticate(ctx context.Context, creds Credentials) (Token, error) {
	c.logger.Info().Str("username", creds.Username).Msg("authenticating")

	res, err := c.Send(ctx, http.MethodPost, authenticationPath, creds)
	if err != nil {
		return Token{}, &AuthError{Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Token{}, &AuthError{
			StatusCode: res.StatusCode,
			Body:       res.String(),
			Err:        fmt.Errorf("unexpected status %s", http.StatusText(res.StatusCode)),
		}
	}

	var token Token
	if err := json.Unmarshal(res.Body, &token); err != nil {
		return Token{}, &AuthError{
			StatusCode: res.StatusCode,
			Body:       res.String(),
			Err:        fmt.Errorf("decode token: %w", err),
		}
	}

	if token.AccessToken == "" {
		return Token{}, &AuthError{
			StatusCode: res.StatusCode,
			Body:       res.String(),
			Err:        errors.New("response has no accessToken"),
		}
	}

	c.SetToken(token.AccessToken)
	c.logger.Debug().Msg("auth token set")

	return token, nil
}
