// Package spotify provides a wrapper around the Spotify Web API catalog endpoints.
package spotify

import (
	"github.com/zmb3/spotify/v2"
)

// DefaultMarket is the market used for top tracks and playlist items.
const DefaultMarket = "IN"

// Client wraps the Spotify API client with convenience methods.
// It is safe for concurrent use.
type Client struct {
	api    *spotify.Client
	market string
}

// Option configures a Client.
type Option func(*Client)

// WithMarket sets the ISO 3166-1 alpha-2 market code.
func WithMarket(code string) Option {
	return func(c *Client) {
		if code != "" {
			c.market = code
		}
	}
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client, opts ...Option) *Client {
	c := &Client{api: api, market: DefaultMarket}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Market returns the market code used for catalog lookups.
func (c *Client) Market() string {
	return c.market
}
