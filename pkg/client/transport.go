package client

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
)

const authHeader = "x-auth-token"

type retriedKey struct{}

// authTransport attaches the access token and, on a 401, refreshes once and
// replays the request once with the new token.
type authTransport struct {
	base   http.RoundTripper
	client *Client
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	newBody, err := rewindable(req)
	if err != nil {
		return nil, err
	}

	sent := t.client.session.AccessToken()
	first, err := prepare(req, newBody, sent)
	if err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(first)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || req.Context().Value(retriedKey{}) != nil {
		return resp, err
	}

	fresh, refreshErr := t.client.refreshAfter(req.Context(), sent)
	if refreshErr != nil {
		t.client.logger.Debug("token refresh failed, logging out", "error", refreshErr)
		if err := t.client.session.Logout(); err != nil {
			t.client.logger.Warn("clear session", "error", err)
		}
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	replay, err := prepare(req.WithContext(context.WithValue(req.Context(), retriedKey{}, true)), newBody, fresh)
	if err != nil {
		return nil, err
	}
	return t.base.RoundTrip(replay)
}

// rewindable returns a factory for fresh copies of the request body,
// buffering it when the request cannot replay it by itself.
func rewindable(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return func() (io.ReadCloser, error) { return http.NoBody, nil }, nil
	}
	if req.GetBody != nil {
		_ = req.Body.Close()
		return req.GetBody, nil
	}

	raw, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, err
	}
	return func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(raw)), nil }, nil
}

func prepare(req *http.Request, newBody func() (io.ReadCloser, error), accessToken string) (*http.Request, error) {
	out := req.Clone(req.Context())
	body, err := newBody()
	if err != nil {
		return nil, err
	}
	out.Body = body
	if accessToken != "" {
		out.Header.Set(authHeader, accessToken)
	} else {
		out.Header.Del(authHeader)
	}
	return out, nil
}

var _ http.RoundTripper = (*authTransport)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
