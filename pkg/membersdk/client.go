package membersdk

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

// Client talks to the public endpoints of the membership service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Session is an authenticated client.
type Session struct {
	client      *Client
	accessToken string
	scopes      []string
	expiresAt   time.Time

	// Member is the membership of the logged in user, nil if none.
	Member *Member
}

// NewSession wraps an existing access token.
func (c *Client) NewSession(accessToken string) *Session {
	return &Session{client: c, accessToken: accessToken}
}

func (s *Session) AccessToken() string { return s.accessToken }

func (s *Session) Scopes() []string { return s.scopes }

// Expired reports whether the access token has run out. Sessions without a
// known expiry never report expired.
func (s *Session) Expired() bool {
	return !s.expiresAt.IsZero() && time.Now().After(s.expiresAt)
}

func (c *Client) doHeaders(ctx context.Context, method, path string, headers map[string]string, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// call sends in as JSON and decodes the expectedStatus response into out.
func (c *Client) call(ctx context.Context, method, path, token string, in, out any, expectedStatus int) error {
	var headers map[string]string
	if token != "" {
		headers = map[string]string{"Authorization": "Bearer " + token}
	}
	resp, err := c.doHeaders(ctx, method, path, headers, in)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out, expectedStatus)
}

func (s *Session) call(ctx context.Context, method, path string, in, out any, expectedStatus int) error {
	return s.client.call(ctx, method, path, s.accessToken, in, out, expectedStatus)
}

// decodeJSON reads the body and either decodes it into target or returns
// the parsed *APIError.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != expectedStatus {
		if err := parseErrorResponse(resp, bodyBytes); err != nil {
			return err
		}
		return &APIError{StatusCode: resp.StatusCode, Code: ErrorCodeServerError,
			Description: fmt.Sprintf("expected status %d, got %d", expectedStatus, resp.StatusCode)}
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
