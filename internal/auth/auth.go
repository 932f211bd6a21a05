package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var (
	// ErrMissingCredentials is returned when the client ID or secret is empty.
	ErrMissingCredentials = errors.New("missing Spotify client ID or client secret")
)

// Authenticator obtains app-level Spotify access tokens with the client
// credentials flow. No user login is involved; only catalog endpoints are
// reachable with these tokens.
type Authenticator struct {
	cfg   clientcredentials.Config
	cache *TokenCache
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithTokenCache persists tokens between runs.
func WithTokenCache(cache *TokenCache) Option {
	return func(a *Authenticator) {
		a.cache = cache
	}
}

// WithTokenURL overrides the Spotify accounts token endpoint.
func WithTokenURL(url string) Option {
	return func(a *Authenticator) {
		if url != "" {
			a.cfg.TokenURL = url
		}
	}
}

// New creates an Authenticator for the given app credentials.
// Returns ErrMissingCredentials if either value is empty.
func New(clientID, clientSecret string, opts ...Option) (*Authenticator, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	a := &Authenticator{
		cfg: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     spotifyauth.TokenURL,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// TokenSource returns a token source seeded with the cached token, if any.
// New tokens are written back to the cache.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	var cached *oauth2.Token
	if a.cache != nil {
		token, err := a.cache.Load(a.cfg.ClientID)
		if err != nil {
			return nil, fmt.Errorf("loading cached token: %w", err)
		}
		cached = token
	}

	src := &cachingTokenSource{
		base:     a.cfg.TokenSource(ctx),
		cache:    a.cache,
		clientID: a.cfg.ClientID,
	}
	if cached != nil {
		src.last = cached.AccessToken
	}
	return oauth2.ReuseTokenSource(cached, src), nil
}

// Client returns a Spotify client authorized with an app token.
// It fetches a token up front so bad credentials fail fast.
func (a *Authenticator) Client(ctx context.Context) (*spotify.Client, error) {
	ts, err := a.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("fetching access token: %w", err)
	}

	return spotify.New(oauth2.NewClient(ctx, ts)), nil
}

// Logout removes the cached token.
func (a *Authenticator) Logout() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Delete()
}

// cachingTokenSource saves every newly issued token to the cache.
type cachingTokenSource struct {
	base     oauth2.TokenSource
	cache    *TokenCache
	clientID string

	mu   sync.Mutex
	last string
}

func (s *cachingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache != nil && token.AccessToken != s.last {
		_ = s.cache.Save(s.clientID, token)
		s.last = token.AccessToken
	}
	return token, nil
}
