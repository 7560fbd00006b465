// Package restapi implements the domain stores against the care program's
// upstream REST API.
package restapi

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

	"careportal/internal/domain"

	log "github.com/sirupsen/logrus"
)

const maxErrorBody = 64 << 10

// Client talks to the upstream API. It is safe for concurrent use; all
// credentials come from the session a store was opened with.
type Client struct {
	base *url.URL
	http *http.Client
}

var _ domain.Backend = (*Client)(nil)

// New creates a client for baseURL (for example "https://api.example.com/api/v1").
// timeout bounds every request including reading the body.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("api url %q must be an absolute http(s) URL", baseURL)
	}
	return &Client{base: u, http: &http.Client{Timeout: timeout}}, nil
}

// envelope is the upstream response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func (e envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// do sends one request and decodes the envelope's data into out. A 401
// becomes domain.ErrAuthExpired and a 404 domain.ErrNotFound; every other
// failure wraps domain.ErrBackendUnavailable.
func (c *Client) do(ctx context.Context, token, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.RawPath = c.base.EscapedPath() + path
	p, err := url.PathUnescape(u.RawPath)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	u.Path = p
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %v", domain.ErrBackendUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	log.WithFields(log.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("upstream request")

	if resp.StatusCode == http.StatusUnauthorized {
		return domain.ErrAuthExpired
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&env)
		msg := env.text()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%w: %s %s: status %d: %s", domain.ErrBackendUnavailable, method, path, resp.StatusCode, msg)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", domain.ErrBackendUnavailable, method, path, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode %s %s data: %v", domain.ErrBackendUnavailable, method, path, err)
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Authenticate logs in upstream and returns the bearer token for later calls.
// Rejected credentials yield domain.ErrAuthExpired.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	var out loginResponse
	err := c.do(ctx, "", http.MethodPost, "/auth/login", nil, loginRequest{Email: username, Password: password}, &out)
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("%w: login response carried no token", domain.ErrBackendUnavailable)
	}
	return out.Token, nil
}

// WeightEntries opens the weight series with the session's backend token.
func (c *Client) WeightEntries(sess *domain.Session) domain.WeightEntryStore {
	return &entryStore{c: c, token: sess.BackendToken}
}

// Shipments opens the shipments with the session's backend token.
func (c *Client) Shipments(sess *domain.Session) domain.ShipmentStore {
	return &shipmentStore{c: c, token: sess.BackendToken}
}

// Medications opens the medications with the session's backend token.
func (c *Client) Medications(sess *domain.Session) domain.MedicationStore {
	return &medicationStore{c: c, token: sess.BackendToken}
}

// Profiles opens the profile with the session's backend token.
func (c *Client) Profiles(sess *domain.Session) domain.ProfileStore {
	return &profileStore{c: c, token: sess.BackendToken}
}

// pickID prefers "id" and falls back to the document store's "_id".
func pickID(id, docID string) string {
	if id != "" {
		return id
	}
	return docID
}
