// Package client is a Go SDK for the watchlist API. It keeps the signed-in
// session in a Session and transparently refreshes expired access tokens.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const refreshPath = "/api/users/refresh-token"

type Client struct {
	baseURL      string
	session      *Session
	http         *http.Client
	base         http.RoundTripper
	refreshGroup singleflight.Group
	logger       *slog.Logger
}

type Option func(*Client)

// WithHTTPClient uses hc's transport and timeout underneath the token interceptor.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc.Transport != nil {
			c.base = hc.Transport
		}
		c.http.Timeout = hc.Timeout
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(baseURL string, session *Session, opts ...Option) *Client {
	if session == nil {
		session = NewSession(nil, nil)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		http:    &http.Client{Timeout: 30 * time.Second},
		base:    http.DefaultTransport,
		logger:  discardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Transport = &authTransport{base: c.base, client: c}
	return c
}

func (c *Client) Session() *Session {
	return c.session
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var out AuthResult
	body := map[string]string{"name": name, "email": email, "password": password}
	if _, err := c.call(ctx, http.MethodPost, "/api/users/register", body, &out); err != nil {
		return nil, err
	}
	if err := c.session.SetCredentials(out.User, out.AccessToken, out.RefreshToken, true); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &out, nil
}

// Login signs in and stores the session in the persistent tier when
// remember is set, otherwise in the session tier.
func (c *Client) Login(ctx context.Context, email, password string, remember bool) (*AuthResult, error) {
	var out AuthResult
	body := map[string]string{"email": email, "password": password}
	if _, err := c.call(ctx, http.MethodPost, "/api/users/", body, &out); err != nil {
		return nil, err
	}
	if err := c.session.SetCredentials(out.User, out.AccessToken, out.RefreshToken, remember); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &out, nil
}

// Logout is local only; refresh tokens are not revocable server-side.
func (c *Client) Logout() error {
	return c.session.Logout()
}

// RefreshToken exchanges the stored refresh token for a new access token.
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	c.session.setLoading(true)
	v, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		return c.refresh(ctx)
	})
	c.session.setLoading(false)
	c.session.setError(err)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var out struct {
		Msg string `json:"msg"`
	}
	if _, err := c.call(ctx, http.MethodPost, "/api/users/forgot-password", map[string]string{"email": email}, &out); err != nil {
		return "", err
	}
	return out.Msg, nil
}

func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) (string, error) {
	var out struct {
		Msg string `json:"msg"`
	}
	path := "/api/users/reset-password/" + url.PathEscape(resetToken)
	if _, err := c.call(ctx, http.MethodPost, path, map[string]string{"password": password}, &out); err != nil {
		return "", err
	}
	return out.Msg, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if _, err := c.call(ctx, http.MethodGet, "/api/users/me", nil, &out); err != nil {
		return nil, err
	}
	if err := c.session.SetUser(out); err != nil {
		c.logger.Warn("store user", "error", err)
	}
	return &out, nil
}

// UploadAvatar sends r as the multipart "avatar" field.
func (c *Client) UploadAvatar(ctx context.Context, filename string, r io.Reader) (*User, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("avatar", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/users/me/avatar", bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out User
	c.session.setLoading(true)
	_, err = c.send(req, &out)
	c.session.setLoading(false)
	c.session.setError(err)
	if err != nil {
		return nil, err
	}
	if err := c.session.SetUser(out); err != nil {
		c.logger.Warn("store user", "error", err)
	}
	return &out, nil
}

func (c *Client) SearchMovies(ctx context.Context, query string, page int) ([]SearchResult, error) {
	params := url.Values{"query": {query}}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	var out []SearchResult
	if _, err := c.call(ctx, http.MethodGet, "/api/movies/search?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListWatchlist(ctx context.Context, opts ListOptions) ([]Entry, *Meta, error) {
	params := url.Values{}
	if opts.Page > 0 {
		params.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.MediaType != "" {
		params.Set("mediaType", opts.MediaType)
	}
	if len(opts.Genres) > 0 {
		params.Set("genres", strings.Join(opts.Genres, ","))
	}
	if opts.SortBy != "" {
		params.Set("sortBy", opts.SortBy)
	}
	if opts.SortOrder != "" {
		params.Set("sortOrder", opts.SortOrder)
	}

	path := "/api/movies/list"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out []Entry
	meta, err := c.call(ctx, http.MethodGet, path, nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, meta, nil
}

func (c *Client) AddToWatchlist(ctx context.Context, entry NewEntry) (*Entry, error) {
	var out Entry
	if _, err := c.call(ctx, http.MethodPost, "/api/movies/list", entry, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateWatchlistEntry(ctx context.Context, id string, update EntryUpdate) (*Entry, error) {
	var out Entry
	if _, err := c.call(ctx, http.MethodPut, "/api/movies/list/"+url.PathEscape(id), update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveFromWatchlist(ctx context.Context, id string) (string, error) {
	var out struct {
		Msg string `json:"msg"`
	}
	if _, err := c.call(ctx, http.MethodDelete, "/api/movies/list/"+url.PathEscape(id), nil, &out); err != nil {
		return "", err
	}
	return out.Msg, nil
}

// call runs one API request and records its outcome on the session.
func (c *Client) call(ctx context.Context, method, path string, body, out any) (*Meta, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.session.setLoading(true)
	meta, err := c.send(req, out)
	c.session.setLoading(false)
	c.session.setError(err)
	return meta, err
}

func (c *Client) send(req *http.Request, out any) (*Meta, error) {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// refreshAfter returns an access token newer than stale, refreshing at most
// once for any number of concurrent callers.
func (c *Client) refreshAfter(ctx context.Context, stale string) (string, error) {
	if current := c.session.AccessToken(); current != "" && current != stale {
		return current, nil
	}

	v, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		if current := c.session.AccessToken(); current != "" && current != stale {
			return current, nil
		}
		return c.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// refresh calls the refresh endpoint on the base transport, outside the interceptor.
func (c *Client) refresh(ctx context.Context) (string, error) {
	refreshToken := c.session.RefreshToken()
	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	// A caller that gives up must not cancel the refresh other callers wait on.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	raw, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := (&http.Client{Transport: c.base}).Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if _, err := decodeResponse(resp, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("refresh token: empty access token in response")
	}
	if err := c.session.UpdateAccessToken(out.AccessToken); err != nil {
		c.logger.Warn("store refreshed access token", "error", err)
	}
	return out.AccessToken, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *Meta           `json:"meta"`
}

func decodeResponse(resp *http.Response, out any) (*Meta, error) {
	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode >= 400 || !env.Success {
		apiErr := env.Error
		if apiErr == nil {
			apiErr = &APIError{Message: http.StatusText(resp.StatusCode)}
		}
		apiErr.StatusCode = resp.StatusCode
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode response data: %w", err)
		}
	}
	return env.Meta, nil
}
