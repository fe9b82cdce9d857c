// Package gateway is the typed HTTP client for the finance backend: one
// method per endpoint, bearer credential attached from the session store,
// failures classified for the screens. No retries, no caching: every
// call is a fresh round trip.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// TokenSource supplies the ambient session credential and receives the
// unauthorized side effect.
type TokenSource interface {
	Credential() (string, bool)
	Invalidate(ctx context.Context, token string)
}

type Client struct {
	baseURL string
	http    *http.Client
	session TokenSource
}

func NewClient(baseURL string, timeout time.Duration, session TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		session: session,
	}
}

// do runs one round trip. When authed is set, the current credential is
// attached; a 401/403 answer then invalidates the session as a side
// effect of the call itself, not of the caller.
func (c *Client) do(ctx context.Context, method, path string, payload, out any, authed bool) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var token string
	if authed {
		var ok bool
		token, ok = c.session.Credential()
		if !ok {
			return &Error{Kind: KindUnauthorized, Message: msgUnauthorized}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "Backend unreachable", "method", method, "path", path, "error", err)
		return &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out != nil && len(raw) > 0 {
			if err := json.Unmarshal(raw, out); err != nil {
				return fmt.Errorf("decode %s %s: %w", method, path, err)
			}
		}
		return nil

	case authed && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden):
		c.session.Invalidate(ctx, token)
		return &Error{Kind: KindUnauthorized, Status: resp.StatusCode, Message: msgUnauthorized}

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &Error{Kind: KindValidation, Status: resp.StatusCode, Message: serverMessage(raw)}

	default:
		slog.ErrorContext(ctx, "Backend error", "method", method, "path", path, "status", resp.StatusCode)
		return &Error{Kind: KindServer, Status: resp.StatusCode, Message: msgServer}
	}
}

// serverMessage pulls a human message out of a 4xx body. The backend is
// inconsistent: sometimes {"message": ...}, sometimes {"error": ...},
// sometimes plain text.
func serverMessage(raw []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	if s := strings.TrimSpace(string(raw)); s != "" && len(s) <= 200 && !strings.HasPrefix(s, "{") {
		return s
	}
	return "The request was rejected. Please check your input."
}
