package usgs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
)

const (
	feedEarthquakes = "earthquakes"
	feedPlates      = "plates"

	// maxFeedBytes bounds a single feed body; the month feed is roughly 10 MB.
	maxFeedBytes = 64 << 20
)

// Client fetches USGS earthquake summaries and tectonic plate boundaries.
// It implements pipeline.FeedSource.
type Client struct {
	httpClient *http.Client
	baseURL    string
	platesURL  string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a feed client. baseURL is the summary feed directory,
// platesURL the full URL of the plate boundary document.
func NewClient(baseURL, platesURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:   baseURL,
		platesURL: platesURL,
		metrics:   metrics,
		logger:    logger,
	}
}

// FetchEarthquakes downloads and parses the summary feed for the window.
func (c *Client) FetchEarthquakes(ctx context.Context, window domain.FeedWindow) ([]domain.EarthquakeFeature, error) {
	u := fmt.Sprintf("%s/%s", c.baseURL, window.FeedFile())

	var features []domain.EarthquakeFeature
	err := c.fetch(ctx, feedEarthquakes, u, func(body []byte) error {
		parsed, skipped, err := ParseEarthquakes(body)
		if err != nil {
			return err
		}
		if skipped > 0 {
			c.metrics.FeaturesSkipped.Add(float64(skipped))
			c.logger.Debug("skipped features without point geometry", "window", window, "skipped", skipped)
		}
		features = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return features, nil
}

// FetchPlates downloads and parses the plate boundary document.
func (c *Client) FetchPlates(ctx context.Context) ([]domain.PlateBoundary, error) {
	var plates []domain.PlateBoundary
	err := c.fetch(ctx, feedPlates, c.platesURL, func(body []byte) error {
		parsed, err := ParsePlates(body)
		if err != nil {
			return err
		}
		plates = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plates, nil
}

// fetch GETs fullURL, hands the body to decode, and records the outcome.
func (c *Client) fetch(ctx context.Context, feed, fullURL string, decode func([]byte) error) error {
	start := time.Now()
	err := c.doRequest(ctx, feed, fullURL, decode)
	c.metrics.FeedFetchDuration.WithLabelValues(feed).Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.FeedRequests.WithLabelValues(feed, "error").Inc()
		return err
	}
	c.metrics.FeedRequests.WithLabelValues(feed, "success").Inc()
	return nil
}

func (c *Client) doRequest(ctx context.Context, feed, fullURL string, decode func([]byte) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s feed request: %w", feed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s feed error: status %d: %s", feed, resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return fmt.Errorf("read %s feed: %w", feed, err)
	}

	if err := decode(body); err != nil {
		return fmt.Errorf("decode %s feed: %w", feed, err)
	}
	return nil
}
