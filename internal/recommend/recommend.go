// Package recommend finds tracks for a query and mood through a layered
// catalog search: artist top tracks, then a direct playlist or track search,
// then a genre playlist picked from the mood.
package recommend

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/justestif/go-spotify-mood-recommender/internal/emotion"
	"github.com/justestif/go-spotify-mood-recommender/internal/spotify"
)

// DefaultLimit is the maximum number of tracks returned.
const DefaultLimit = 10

const (
	artistSearchLimit   = 1
	playlistSearchLimit = 5
	playlistTrackLimit  = 20
)

// Catalog is the subset of the music catalog the search cascade needs.
type Catalog interface {
	SearchArtists(ctx context.Context, query string, limit int) ([]spotify.Artist, error)
	ArtistTopTracks(ctx context.Context, artistID string) ([]spotify.Track, error)
	SearchPlaylists(ctx context.Context, query string, limit int) ([]spotify.Playlist, error)
	PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]spotify.Track, error)
	SearchTracks(ctx context.Context, query string, limit int) ([]spotify.Track, error)
}

var _ Catalog = (*spotify.Client)(nil)

// Stage identifies which step of the cascade produced the result.
type Stage string

const (
	StageNone     Stage = ""
	StageArtist   Stage = "artist"
	StagePlaylist Stage = "playlist"
	StageTracks   Stage = "tracks"
	StageGenre    Stage = "genre"
)

// Track is a recommended track ready for display.
type Track struct {
	Name string
	URL  string
}

// Result is the outcome of one cascade run.
type Result struct {
	Tracks []Track
	Stage  Stage
	// Genre is set when the mood fallback stage ran.
	Genre string
	// Errors collects catalog failures that caused a stage to be skipped.
	Errors []error
}

// Empty reports whether no tracks were found.
func (r Result) Empty() bool {
	return len(r.Tracks) == 0
}

// Service runs the layered search against a Catalog.
type Service struct {
	catalog Catalog
	limit   int
	log     *log.Helper
}

// Option configures a Service.
type Option func(*Service)

// WithLimit caps the number of tracks returned.
func WithLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// NewService creates a Service.
func NewService(catalog Catalog, logger log.Logger, opts ...Option) *Service {
	s := &Service{
		catalog: catalog,
		limit:   DefaultLimit,
		log:     log.NewHelper(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limit returns the track cap.
func (s *Service) Limit() int {
	return s.limit
}

// Search runs the cascade and never fails. A catalog error makes its stage
// count as empty; the error is recorded in Result.Errors.
func (s *Service) Search(ctx context.Context, query string, mood emotion.Emotion) Result {
	var res Result
	c := newCollector(s.limit)

	if s.artistStage(ctx, query, c, &res); !c.empty() {
		return s.finish(ctx, res, c, StageArtist, query)
	}

	if stage := s.directStage(ctx, query, c, &res); !c.empty() {
		return s.finish(ctx, res, c, stage, query)
	}

	res.Genre = mood.Genre()
	s.log.WithContext(ctx).Infow("msg", "falling back to mood genre", "emotion", mood, "genre", res.Genre)
	if s.playlistStage(ctx, res.Genre, c, &res); !c.empty() {
		return s.finish(ctx, res, c, StageGenre, query)
	}

	s.log.WithContext(ctx).Warnw("msg", "catalog returned nothing", "query", query, "errors", len(res.Errors))
	return res
}

func (s *Service) finish(ctx context.Context, res Result, c *collector, stage Stage, query string) Result {
	res.Tracks = c.tracks
	res.Stage = stage
	s.log.WithContext(ctx).Infow("msg", "tracks found", "query", query, "stage", stage, "count", len(res.Tracks))
	return res
}

// artistStage collects the top tracks of the best matching artist.
func (s *Service) artistStage(ctx context.Context, query string, c *collector, res *Result) {
	artists, err := s.catalog.SearchArtists(ctx, query, artistSearchLimit)
	if err != nil {
		s.fail(ctx, res, StageArtist, err)
		return
	}
	if len(artists) == 0 {
		return
	}

	tracks, err := s.catalog.ArtistTopTracks(ctx, artists[0].ID)
	if err != nil {
		s.fail(ctx, res, StageArtist, err)
		return
	}
	c.add(tracks)
}

// directStage searches playlists for the query and falls back to a raw
// track search when no playlist matches.
func (s *Service) directStage(ctx context.Context, query string, c *collector, res *Result) Stage {
	playlists, err := s.catalog.SearchPlaylists(ctx, query, playlistSearchLimit)
	if err != nil {
		s.fail(ctx, res, StagePlaylist, err)
		return StagePlaylist
	}
	if len(playlists) > 0 {
		s.collectPlaylist(ctx, playlists[0], c, res, StagePlaylist)
		return StagePlaylist
	}

	tracks, err := s.catalog.SearchTracks(ctx, query, s.limit)
	if err != nil {
		s.fail(ctx, res, StageTracks, err)
		return StageTracks
	}
	c.add(tracks)
	return StageTracks
}

// playlistStage collects tracks from the first playlist matching the query.
func (s *Service) playlistStage(ctx context.Context, query string, c *collector, res *Result) {
	playlists, err := s.catalog.SearchPlaylists(ctx, query, playlistSearchLimit)
	if err != nil {
		s.fail(ctx, res, StageGenre, err)
		return
	}
	if len(playlists) == 0 {
		return
	}
	s.collectPlaylist(ctx, playlists[0], c, res, StageGenre)
}

func (s *Service) collectPlaylist(ctx context.Context, p spotify.Playlist, c *collector, res *Result, stage Stage) {
	tracks, err := s.catalog.PlaylistTracks(ctx, p.ID, playlistTrackLimit)
	if err != nil {
		s.fail(ctx, res, stage, err)
		return
	}
	c.add(tracks)
}

func (s *Service) fail(ctx context.Context, res *Result, stage Stage, err error) {
	s.log.WithContext(ctx).Warnw("msg", "catalog stage failed", "stage", stage, "error", err)
	res.Errors = append(res.Errors, err)
}

// collector accumulates unique tracks up to a cap.
type collector struct {
	limit  int
	seen   map[string]struct{}
	tracks []Track
}

func newCollector(limit int) *collector {
	return &collector{
		limit:  limit,
		seen:   make(map[string]struct{}),
		tracks: []Track{},
	}
}

// add appends tracks not seen before, skipping those without a URL.
// It stops as soon as the cap is reached.
func (c *collector) add(tracks []spotify.Track) {
	for _, t := range tracks {
		if c.full() {
			return
		}
		if t.URL == "" {
			continue
		}
		if _, ok := c.seen[t.URL]; ok {
			continue
		}
		c.seen[t.URL] = struct{}{}
		c.tracks = append(c.tracks, Track{Name: t.DisplayName(), URL: t.URL})
	}
}

func (c *collector) full() bool {
	return len(c.tracks) >= c.limit
}

func (c *collector) empty() bool {
	return len(c.tracks) == 0
}
