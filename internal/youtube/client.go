// Package youtube searches YouTube videos through the Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// DefaultMaxResults is the number of videos requested per search.
const DefaultMaxResults = 10

const (
	watchURL      = "https://www.youtube.com/watch?v="
	searchTimeout = 15 * time.Second
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("youtube API key is required")

// Video is a single search hit.
type Video struct {
	Title string
	URL   string
}

// Client wraps the YouTube Data API service.
// It is safe for concurrent use.
type Client struct {
	svc *yt.Service
}

// config holds construction settings.
type config struct {
	httpClient *http.Client
	endpoint   string
}

// Option configures a Client.
type Option func(*config)

// WithHTTPClient sets the HTTP client used for API calls. A custom client
// bypasses the API key transport, so it is meant for tests and proxies that
// authenticate on their own.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *config) {
		cfg.httpClient = c
	}
}

// WithEndpoint overrides the API base URL.
func WithEndpoint(url string) Option {
	return func(cfg *config) {
		cfg.endpoint = url
	}
}

// NewClient creates a Client authenticated with an API key.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if cfg.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(cfg.httpClient))
	}
	if cfg.endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.endpoint))
	}

	svc, err := yt.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// Search returns up to maxResults videos matching the query, in API order.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Video, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	resp, err := c.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("searching videos for %q: %w", query, err)
	}

	videos := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		title := ""
		if item.Snippet != nil {
			title = item.Snippet.Title
		}
		videos = append(videos, Video{
			Title: title,
			URL:   watchURL + item.Id.VideoId,
		})
	}
	return videos, nil
}
