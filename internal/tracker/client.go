package tracker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/Hardev1237/Valorant-Rank-Fetcher/pkg/config"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/pkg/logging"
	"github.com/Hardev1237/Valorant-Rank-Fetcher/pkg/telemetry"
)

// ErrorKind classifies fetch failures
type ErrorKind int

const (
	// KindHTTPStatus means the upstream answered with a non-2xx status
	KindHTTPStatus ErrorKind = iota
	// KindTransport means the request never completed (DNS, refused, timeout)
	KindTransport
)

// FetchError is a typed upstream failure
type FetchError struct {
	Kind   ErrorKind
	Status int
	Err    error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("upstream returned status %d", e.Status)
	}
	return fmt.Sprintf("upstream request failed: %v", e.Err)
}

// Unwrap exposes the underlying transport error
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client fetches rank data from the rank-lookup service
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a new rank-lookup client
func NewClient(cfg *config.UpstreamConfig) *Client {
	logger := logging.WithComponent("rank-client")

	client := &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}

	logger.Info("Rank client initialized", zap.String("url", cfg.URL))

	return client
}

// FetchRank looks up the current rank for one identity. Identity fields are
// path-escaped, so reserved characters in names round-trip instead of
// mangling the request path.
func (c *Client) FetchRank(ctx context.Context, username, hashtag, region string) (RankResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "tracker.fetch_rank")
	defer span.End()

	requestURL := fmt.Sprintf("%s/%s/%s/%s",
		c.baseURL,
		url.PathEscape(region),
		url.PathEscape(username),
		url.PathEscape(hashtag),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return RankResult{}, &FetchError{Kind: KindTransport, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return RankResult{}, &FetchError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return RankResult{}, &FetchError{Kind: KindHTTPStatus, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RankResult{}, &FetchError{Kind: KindTransport, Err: err}
	}

	result := ParseRankBody(body)
	c.logger.Debug("Fetched rank",
		zap.String("player", username+"#"+hashtag),
		zap.String("rank", result.Rank),
		zap.Int("rr", result.RR))

	return result, nil
}
