package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the Mapbox account APIs. Tiles themselves are loaded by the
// browser; the server only needs to know whether the token works.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Mapbox API client.
func NewClient(token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.mapbox.com/tokens/v2",
		logger:  logger,
	}
}

// ValidateToken asks Mapbox whether the access token is valid. A rejected
// token only shows up in the browser as missing tiles, so callers log the
// error rather than fail.
func (c *Client) ValidateToken(ctx context.Context) error {
	u := c.baseURL + "?" + url.Values{"access_token": {c.token}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token validation request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("read token response: %w", err)
	}

	var tokenResp response
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}
	if resp.StatusCode != http.StatusOK || tokenResp.Code != codeTokenValid {
		return fmt.Errorf("mapbox token rejected: status %d: code %s", resp.StatusCode, tokenResp.Code)
	}

	c.logger.Debug("mapbox token valid", "user", tokenResp.Token.User)
	return nil
}

const codeTokenValid = "TokenValid"

// Mapbox API response types.

type response struct {
	Code  string    `json:"code"`
	Token tokenInfo `json:"token"`
}

type tokenInfo struct {
	User   string   `json:"u"`
	Scopes []string `json:"scopes"`
}
