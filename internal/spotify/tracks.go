package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// ArtistTopTracks returns the artist's most popular tracks in the client's market.
func (c *Client) ArtistTopTracks(ctx context.Context, artistID string) ([]Track, error) {
	tracks, err := c.api.GetArtistsTopTracks(ctx, spotify.ID(artistID), c.market)
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks for artist %s: %w", artistID, err)
	}

	result := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		result = append(result, convertTrack(t))
	}
	return result, nil
}

// PlaylistTracks returns up to limit tracks from a playlist.
// Podcast episodes and local files are skipped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]Track, error) {
	page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID),
		spotify.Limit(limit),
		spotify.Market(c.market),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching tracks for playlist %s: %w", playlistID, err)
	}

	result := make([]Track, 0, len(page.Items))
	for _, item := range page.Items {
		if item.IsLocal || item.Track.Track == nil {
			continue
		}
		result = append(result, convertTrack(*item.Track.Track))
	}
	return result, nil
}

// convertTrack converts a Spotify FullTrack to a Track.
func convertTrack(t spotify.FullTrack) Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	return Track{
		ID:      t.ID.String(),
		Name:    t.Name,
		Artists: artists,
		URL:     t.ExternalURLs["spotify"],
	}
}
