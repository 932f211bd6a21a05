package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// SearchArtists returns up to limit artists matching the query, best match first.
func (c *Client) SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error) {
	res, err := c.api.Search(ctx, query, spotify.SearchTypeArtist, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("searching artists for %q: %w", query, err)
	}
	if res.Artists == nil {
		return []Artist{}, nil
	}

	artists := make([]Artist, 0, len(res.Artists.Artists))
	for _, a := range res.Artists.Artists {
		if a.ID == "" {
			continue
		}
		artists = append(artists, Artist{ID: a.ID.String(), Name: a.Name})
	}
	return artists, nil
}

// SearchPlaylists returns up to limit playlists matching the query.
// The search endpoint can return null entries; those are skipped.
func (c *Client) SearchPlaylists(ctx context.Context, query string, limit int) ([]Playlist, error) {
	res, err := c.api.Search(ctx, query, spotify.SearchTypePlaylist, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("searching playlists for %q: %w", query, err)
	}
	if res.Playlists == nil {
		return []Playlist{}, nil
	}

	playlists := make([]Playlist, 0, len(res.Playlists.Playlists))
	for _, p := range res.Playlists.Playlists {
		if p.ID == "" {
			continue
		}
		playlists = append(playlists, Playlist{
			ID:    p.ID.String(),
			Name:  p.Name,
			Owner: p.Owner.DisplayName,
		})
	}
	return playlists, nil
}

// SearchTracks returns up to limit tracks matching the query.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	res, err := c.api.Search(ctx, query, spotify.SearchTypeTrack,
		spotify.Limit(limit),
		spotify.Market(c.market),
	)
	if err != nil {
		return nil, fmt.Errorf("searching tracks for %q: %w", query, err)
	}
	if res.Tracks == nil {
		return []Track{}, nil
	}

	tracks := make([]Track, 0, len(res.Tracks.Tracks))
	for _, t := range res.Tracks.Tracks {
		tracks = append(tracks, convertTrack(t))
	}
	return tracks, nil
}
