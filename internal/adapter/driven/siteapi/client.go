// Package siteapi implements driven.SiteAPI over the content HTTP API.
package siteapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dispulse/sitecontent/internal/domain/model"
	"github.com/dispulse/sitecontent/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SiteAPI = (*Client)(nil)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 64 << 10
)

// Client talks to a content server rooted at baseURL.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client. A nil httpClient gets a default with a 15s
// timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type contentResponse struct {
	Entries map[string]string `json:"entries"`
}

type seedRequest struct {
	Entries map[string]string `json:"entries"`
}

type seedResponse struct {
	Inserted int `json:"inserted"`
}

type putRequest struct {
	Value string `json:"value"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userBody struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  userBody `json:"user"`
}

type meResponse struct {
	User struct {
		Sub   string `json:"sub"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
		Iat   int64  `json:"iat"`
		Exp   int64  `json:"exp"`
	} `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ListContent fetches every persisted entry.
func (c *Client) ListContent(ctx context.Context) (model.ContentMap, error) {
	var resp contentResponse
	if err := c.do(ctx, http.MethodGet, "/api/content", "", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Entries == nil {
		return model.ContentMap{}, nil
	}
	return model.ContentMap(resp.Entries), nil
}

// SeedContent submits entries for insert-if-absent.
func (c *Client) SeedContent(ctx context.Context, entries model.ContentMap) (int, error) {
	var resp seedResponse
	if err := c.do(ctx, http.MethodPost, "/api/content/seed", "", seedRequest{Entries: entries}, &resp); err != nil {
		return 0, err
	}
	return resp.Inserted, nil
}

// PutContent overwrites the value for key.
func (c *Client) PutContent(ctx context.Context, token, key, value string) error {
	path := "/api/content/" + url.PathEscape(key)
	return c.do(ctx, http.MethodPut, path, token, putRequest{Value: value}, nil)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (driven.LoginResult, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", "", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return driven.LoginResult{}, err
	}
	if resp.Token == "" {
		return driven.LoginResult{}, fmt.Errorf("login response missing token")
	}
	return driven.LoginResult{
		Token: resp.Token,
		User: model.User{
			Name:  resp.User.Name,
			Email: resp.User.Email,
			Role:  resp.User.Role,
		},
	}, nil
}

// Me returns the claims of token as the server sees them.
func (c *Client) Me(ctx context.Context, token string) (model.Claims, error) {
	var resp meResponse
	if err := c.do(ctx, http.MethodGet, "/api/me", token, nil, &resp); err != nil {
		return model.Claims{}, err
	}
	claims := model.Claims{
		Subject: resp.User.Sub,
		Name:    resp.User.Name,
		Email:   resp.User.Email,
		Role:    resp.User.Role,
	}
	if resp.User.Iat > 0 {
		claims.IssuedAt = time.Unix(resp.User.Iat, 0).UTC()
	}
	if resp.User.Exp > 0 {
		claims.ExpiresAt = time.Unix(resp.User.Exp, 0).UTC()
	}
	return claims, nil
}

// do sends one JSON request. Non-2xx responses become *model.Error with the
// kind derived from the status and the server's error message.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var body errorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(raw, &body)

	msg := body.Error
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	kind := model.KindInternal
	switch resp.StatusCode {
	case http.StatusBadRequest:
		kind = model.KindValidation
	case http.StatusUnauthorized:
		kind = model.KindUnauthorized
	case http.StatusNotFound:
		kind = model.KindNotFound
	case http.StatusTooManyRequests:
		kind = model.KindRateLimited
	}

	return &model.Error{
		Kind:    kind,
		Message: msg,
		Cause:   fmt.Errorf("http status %d", resp.StatusCode),
	}
}
