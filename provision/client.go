package provision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Compile-time interface check.
var _ Provisioner = (*Client)(nil)

// Client talks to the provisioning service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithAPIKey sets the bearer token sent on every request.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient constructs a new provisioning client. The client carries its own
// request timeout as a backstop; callers additionally bound each call with a
// context deadline.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateIdentity provisions an external identity for the given email.
func (c *Client) CreateIdentity(ctx context.Context, email string) (*Identity, error) {
	var out struct {
		ExternalSubjectID string `json:"external_subject_id"`
	}
	err := c.post(ctx, "/v1/identities", map[string]string{"email": email}, &out)
	if err != nil {
		return nil, err
	}
	return &Identity{ExternalSubjectID: out.ExternalSubjectID}, nil
}

// SendPasswordReset dispatches a password-reset link to the given email.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, "/v1/password-resets", map[string]string{"email": email}, nil)
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("provision: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("provision: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Connection failures and timeouts (including context deadline
		// expiry) all map to the unreachable sentinel.
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("provision: decode response: %w", err)
		}
		return nil
	}

	return &APIError{Status: resp.StatusCode, Message: readMessage(resp.Body)}
}

// readMessage extracts the collaborator's message from an error body.
// The message field may be a string or a list of strings; lists are joined
// with ", ".
func readMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var envelope struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Message) == 0 {
		return ""
	}

	var single string
	if err := json.Unmarshal(envelope.Message, &single); err == nil {
		return single
	}

	var many []string
	if err := json.Unmarshal(envelope.Message, &many); err == nil {
		return strings.Join(many, ", ")
	}

	return ""
}
