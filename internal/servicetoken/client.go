package servicetoken

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/allisson/idgate/internal/errors"
)

// Fetcher obtains a fresh service token from the upstream token endpoint.
type Fetcher interface {
	Fetch(ctx context.Context) (*Token, error)
}

// Client fetches service tokens using the OAuth2 client-credentials grant.
type Client struct {
	tokenURL      string
	clientID      string
	clientSecret  string
	refreshMargin time.Duration
	httpClient    *http.Client
	logger        *slog.Logger
}

// tokenResponse is the upstream token endpoint payload. Unknown fields are ignored.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// NewClient creates a Client for the given token endpoint. The fetch timeout
// bounds the whole network call; a timeout surfaces as ErrUpstreamAuth like
// any other fetch failure.
func NewClient(
	tokenURL string,
	clientID string,
	clientSecret string,
	fetchTimeout time.Duration,
	refreshMargin time.Duration,
	logger *slog.Logger,
) *Client {
	return &Client{
		tokenURL:      tokenURL,
		clientID:      clientID,
		clientSecret:  clientSecret,
		refreshMargin: refreshMargin,
		httpClient:    &http.Client{Timeout: fetchTimeout},
		logger:        logger,
	}
}

// Fetch performs a synchronous client-credentials grant against the upstream
// token endpoint and returns a Token with the refresh margin already applied.
func (c *Client) Fetch(ctx context.Context) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, apperrors.Wrap(ErrUpstreamAuth, err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	fetchedAt := time.Now().UTC()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Covers network errors and client timeouts alike.
		c.logger.Error("service token fetch failed", slog.Any("error", err))
		return nil, apperrors.Wrap(ErrUpstreamAuth, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused; never surface upstream detail.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		c.logger.Error("service token endpoint returned error status",
			slog.Int("status", resp.StatusCode))
		return nil, apperrors.Wrapf(ErrUpstreamAuth, "unexpected status %d", resp.StatusCode)
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.Wrap(ErrUpstreamAuth, "invalid token payload")
	}

	if payload.AccessToken == "" {
		return nil, apperrors.Wrap(ErrUpstreamAuth, "empty access token in payload")
	}

	token := &Token{
		AccessToken: payload.AccessToken,
		TokenType:   payload.TokenType,
		ExpiresAt:   fetchedAt.Add(time.Duration(payload.ExpiresIn)*time.Second - c.refreshMargin),
	}

	c.logger.Debug("service token fetched",
		slog.Time("expires_at", token.ExpiresAt))

	return token, nil
}
