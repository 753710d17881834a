package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

var (
	// ErrInvalidCredentials is returned when login/password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// LoginKind names the identifier used to log in.
type LoginKind string

const (
	LoginByEmail LoginKind = "email"
	LoginByPhone LoginKind = "phone_number"
)

func (k LoginKind) Valid() bool {
	return k == LoginByEmail || k == LoginByPhone
}

// BackendError is a rejection from an unauthenticated auth endpoint.
type BackendError struct {
	Status int
	Detail string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Detail)
}

func (e *BackendError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrInvalidCredentials
	}
	return nil
}

// LoginResult is the token exchange answer.
type LoginResult struct {
	Token       string `json:"token,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
}

// Credential returns the bearer token to store in the token cookie.
func (r LoginResult) Credential() string {
	return firstNonEmpty(r.Token, r.AccessToken)
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Birthday    string `json:"birthday"`
}

// SplitName fills FirstName/LastName from a "First Last" display name; only the first two
// words are kept.
func (r *RegisterRequest) SplitName(name string) {
	parts := strings.Split(strings.TrimSpace(name), " ")
	r.FirstName = parts[0]
	r.LastName = ""
	if len(parts) > 1 {
		r.LastName = parts[1]
	}
}

// AuthClient talks to the endpoints that exist before a credential does. It never sends an
// Authorization header.
type AuthClient struct {
	origin string
	client *http.Client
}

func NewAuthClient(gw *Gateway) *AuthClient {
	return &AuthClient{origin: gw.Origin(), client: gw.HTTPClient()}
}

// CheckUserExists reports whether an account with the given email or phone exists.
// Any failure, transport included, reads as "does not exist".
func (c *AuthClient) CheckUserExists(ctx context.Context, kind LoginKind, value string) bool {
	resp, err := c.post(ctx, "/user/exists", map[string]string{"value_type": string(kind), "value": value})
	if err != nil {
		log.Error().Err(err).Msg("error checking user")
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return isOK(resp)
}

func (c *AuthClient) Login(ctx context.Context, kind LoginKind, login, password string) (*LoginResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown login kind %q", kind)
	}
	resp, err := c.post(ctx, "/user/login", map[string]string{string(kind): login, "password": password})
	if err != nil {
		return nil, err
	}
	body, err := readBackend(resp, "Login failed")
	if err != nil {
		return nil, err
	}
	var res LoginResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if res.Credential() == "" {
		return nil, &BackendError{Status: resp.StatusCode, Detail: "no token in response"}
	}
	return &res, nil
}

func (c *AuthClient) Register(ctx context.Context, req RegisterRequest) (json.RawMessage, error) {
	resp, err := c.post(ctx, "/user/register", req)
	if err != nil {
		log.Error().Err(err).Msg("registration error")
		return nil, err
	}
	body, err := readBackend(resp, "Registration failed")
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *AuthClient) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.origin+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readBackend returns the body on 2xx and a *BackendError carrying the backend detail otherwise.
func readBackend(resp *http.Response, fallback string) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if !isOK(resp) {
		detail := gjson.GetBytes(body, "detail").String()
		if detail == "" {
			detail = fallback
		}
		return nil, &BackendError{Status: resp.StatusCode, Detail: detail}
	}
	return body, nil
}
