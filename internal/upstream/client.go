// Package upstream provides the client for the upstream identity API. All
// calls authenticate with the cached service token.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/allisson/idgate/internal/errors"
	"github.com/allisson/idgate/internal/servicetoken"
)

// ErrUpstreamUnavailable is returned for any upstream identity API failure.
// The upstream response detail is logged, never returned, so it cannot leak
// to clients.
var ErrUpstreamUnavailable = apperrors.Wrap(apperrors.ErrUnavailable, "identity api request failed")

// UserInfo is the subset of upstream profile data exposed to clients.
type UserInfo struct {
	Subject    string `json:"subject"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// TokenSource provides a valid service token and supports eviction when the
// upstream rejects it.
type TokenSource interface {
	GetToken(ctx context.Context) (*servicetoken.Token, error)
	Evict()
}

// Client calls the upstream identity API.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an upstream identity API client.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// GetUserInfo fetches the profile for the given subject from the upstream
// identity API.
//
// A 401 response means the service token was rejected even though the cache
// considered it valid. The token is evicted so the next call fetches a fresh
// one; this call still fails.
func (c *Client) GetUserInfo(ctx context.Context, subject string) (*UserInfo, error) {
	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	// The subject is a user-chosen username; encode it so metacharacters
	// cannot inject query parameters into this server-to-server call.
	query := url.Values{"subject": []string{subject}}
	endpoint := fmt.Sprintf("%s/userinfo?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build identity api request")
	}
	req.Header.Set("Authorization", token.TokenType+" "+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("identity api request failed", slog.String("error", err.Error()))
		return nil, ErrUpstreamUnavailable
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.logger.Warn("identity api rejected service token, evicting cache")
		c.tokens.Evict()
		return nil, ErrUpstreamUnavailable
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Error("identity api returned unexpected status",
			slog.Int("status", resp.StatusCode))
		return nil, ErrUpstreamUnavailable
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		c.logger.Error("identity api returned malformed payload",
			slog.String("error", err.Error()))
		return nil, ErrUpstreamUnavailable
	}

	return &info, nil
}
