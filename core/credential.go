package core

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// TokenCookieName is the cookie holding the bearer credential, scoped to path "/".
const TokenCookieName = "token"

// CredentialSource resolves the bearer token for one outbound request.
// A false second result means no credential is available.
type CredentialSource interface {
	Token(ctx context.Context) (string, bool)
}

// RequestCookieSource reads the token cookie from an incoming request (server contexts).
type RequestCookieSource struct {
	req *http.Request
}

func NewRequestCookieSource(r *http.Request) *RequestCookieSource {
	return &RequestCookieSource{req: r}
}

func (s *RequestCookieSource) Token(context.Context) (string, bool) {
	if s == nil || s.req == nil {
		return "", false
	}
	c, err := s.req.Cookie(TokenCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

var tokenCookiePattern = regexp.MustCompile(`(?:^|;\s*)token=([^;]+)`)

// TokenFromCookieString extracts the token from a raw Cookie header string
// ("a=1; token=abc; b=2").
func TokenFromCookieString(raw string) (string, bool) {
	m := tokenCookiePattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(m[1])
	return v, v != ""
}

// CookieStringSource parses a raw cookie header string (client contexts).
type CookieStringSource string

func (s CookieStringSource) Token(context.Context) (string, bool) {
	return TokenFromCookieString(string(s))
}

// CookieFileSource re-reads a cookie string from disk on every lookup so a login or logout
// from another process is visible immediately.
type CookieFileSource struct {
	Path string
}

func (s CookieFileSource) Token(context.Context) (string, bool) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return "", false
	}
	return TokenFromCookieString(string(raw))
}

// SaveCookieFile writes "token=<value>; path=/" to path, replacing any previous content.
func SaveCookieFile(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(TokenCookieName+"="+token+"; path=/"), 0o600)
}

// RemoveCookieFile deletes the stored cookie; a missing file is not an error.
func RemoveCookieFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
