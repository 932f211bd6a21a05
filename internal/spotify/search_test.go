package spotify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zmb3/spotify/v2"
)

// newFakeCatalog serves canned Spotify Web API responses keyed by path.
func newFakeCatalog(t *testing.T, routes map[string]string) (*Client, *[]*http.Request) {
	t.Helper()
	var requests []*http.Request

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Clone(context.Background()))

		key := r.URL.Path
		if r.URL.Path == "/search" {
			key = "/search?type=" + r.URL.Query().Get("type")
		}
		body, ok := routes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"status":404,"message":"Not found."}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	api := spotify.New(server.Client(), spotify.WithBaseURL(server.URL+"/"))
	return New(api, WithMarket("IN")), &requests
}

const trackJSON = `{
	"id": "t1",
	"name": "Hello",
	"type": "track",
	"artists": [{"id": "a1", "name": "Adele"}],
	"external_urls": {"spotify": "https://open.spotify.com/track/t1"}
}`

func TestSearchArtists(t *testing.T) {
	client, requests := newFakeCatalog(t, map[string]string{
		"/search?type=artist": `{"artists": {"items": [{"id": "a1", "name": "Adele"}], "total": 1}}`,
	})

	artists, err := client.SearchArtists(context.Background(), "Adele", 1)
	if err != nil {
		t.Fatalf("SearchArtists() error = %v", err)
	}
	if len(artists) != 1 || artists[0].ID != "a1" || artists[0].Name != "Adele" {
		t.Errorf("SearchArtists() = %+v, want [{a1 Adele}]", artists)
	}

	q := (*requests)[0].URL.Query()
	if q.Get("q") != "Adele" || q.Get("limit") != "1" {
		t.Errorf("query = %v, want q=Adele limit=1", q)
	}
}

func TestSearchArtists_NoMatch(t *testing.T) {
	client, _ := newFakeCatalog(t, map[string]string{
		"/search?type=artist": `{"artists": {"items": [], "total": 0}}`,
	})

	artists, err := client.SearchArtists(context.Background(), "zzzz", 1)
	if err != nil {
		t.Fatalf("SearchArtists() error = %v", err)
	}
	if len(artists) != 0 {
		t.Errorf("SearchArtists() = %+v, want none", artists)
	}
}

func TestArtistTopTracks(t *testing.T) {
	client, requests := newFakeCatalog(t, map[string]string{
		"/artists/a1/top-tracks": `{"tracks": [` + trackJSON + `]}`,
	})

	tracks, err := client.ArtistTopTracks(context.Background(), "a1")
	if err != nil {
		t.Fatalf("ArtistTopTracks() error = %v", err)
	}
	if len(tracks) != 1 || tracks[0].DisplayName() != "Hello – Adele" {
		t.Errorf("ArtistTopTracks() = %+v", tracks)
	}
	if tracks[0].URL != "https://open.spotify.com/track/t1" {
		t.Errorf("URL = %q", tracks[0].URL)
	}
	if got := (*requests)[0].URL.Query().Get("country"); got != "IN" {
		t.Errorf("country = %q, want IN", got)
	}
}

func TestSearchPlaylists_SkipsNullEntries(t *testing.T) {
	client, _ := newFakeCatalog(t, map[string]string{
		"/search?type=playlist": `{"playlists": {"items": [null, {"id": "p1", "name": "Sad Songs", "owner": {"display_name": "Spotify"}}]}}`,
	})

	playlists, err := client.SearchPlaylists(context.Background(), "acoustic", 5)
	if err != nil {
		t.Fatalf("SearchPlaylists() error = %v", err)
	}
	if len(playlists) != 1 || playlists[0].ID != "p1" || playlists[0].Owner != "Spotify" {
		t.Errorf("SearchPlaylists() = %+v, want only p1", playlists)
	}
}

func TestPlaylistTracks(t *testing.T) {
	client, requests := newFakeCatalog(t, map[string]string{
		"/playlists/p1/tracks": `{"items": [
			{"is_local": false, "track": ` + trackJSON + `},
			{"is_local": true, "track": {"id": "", "name": "Bootleg", "type": "track", "artists": []}}
		]}`,
	})

	tracks, err := client.PlaylistTracks(context.Background(), "p1", 20)
	if err != nil {
		t.Fatalf("PlaylistTracks() error = %v", err)
	}
	if len(tracks) != 1 || tracks[0].ID != "t1" {
		t.Errorf("PlaylistTracks() = %+v, want only t1", tracks)
	}
	if got := (*requests)[0].URL.Query().Get("limit"); got != "20" {
		t.Errorf("limit = %q, want 20", got)
	}
}

func TestSearchTracks(t *testing.T) {
	client, _ := newFakeCatalog(t, map[string]string{
		"/search?type=track": `{"tracks": {"items": [` + trackJSON + `]}}`,
	})

	tracks, err := client.SearchTracks(context.Background(), "hello", 10)
	if err != nil {
		t.Fatalf("SearchTracks() error = %v", err)
	}
	if len(tracks) != 1 || tracks[0].Name != "Hello" {
		t.Errorf("SearchTracks() = %+v", tracks)
	}
}

func TestCatalogErrorsAreWrapped(t *testing.T) {
	client, _ := newFakeCatalog(t, map[string]string{})

	_, err := client.ArtistTopTracks(context.Background(), "missing")
	if err == nil {
		t.Fatal("ArtistTopTracks() error = nil, want not-found error")
	}
	if !strings.Contains(err.Error(), "fetching top tracks for artist missing") {
		t.Errorf("error = %q, want context prefix", err)
	}
}
