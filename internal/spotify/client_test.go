package spotify

import (
	"testing"

	"github.com/zmb3/spotify/v2"
)

func TestConvertTrack(t *testing.T) {
	tests := []struct {
		name            string
		full            spotify.FullTrack
		expectedID      string
		expectedName    string
		expectedArtists []string
		expectedURL     string
	}{
		{
			name: "single artist",
			full: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:   "track123",
					Name: "Test Song",
					Artists: []spotify.SimpleArtist{
						{Name: "Artist One"},
					},
					ExternalURLs: map[string]string{"spotify": "https://open.spotify.com/track/track123"},
				},
			},
			expectedID:      "track123",
			expectedName:    "Test Song",
			expectedArtists: []string{"Artist One"},
			expectedURL:     "https://open.spotify.com/track/track123",
		},
		{
			name: "multiple artists",
			full: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:   "track456",
					Name: "Collab Track",
					Artists: []spotify.SimpleArtist{
						{Name: "Artist A"},
						{Name: "Artist B"},
					},
					ExternalURLs: map[string]string{"spotify": "https://open.spotify.com/track/track456"},
				},
			},
			expectedID:      "track456",
			expectedName:    "Collab Track",
			expectedArtists: []string{"Artist A", "Artist B"},
			expectedURL:     "https://open.spotify.com/track/track456",
		},
		{
			name: "no external url",
			full: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:      "track789",
					Name:    "Region Locked",
					Artists: []spotify.SimpleArtist{},
				},
			},
			expectedID:      "track789",
			expectedName:    "Region Locked",
			expectedArtists: []string{},
			expectedURL:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertTrack(tt.full)

			if got.ID != tt.expectedID {
				t.Errorf("ID = %q, want %q", got.ID, tt.expectedID)
			}
			if got.Name != tt.expectedName {
				t.Errorf("Name = %q, want %q", got.Name, tt.expectedName)
			}
			if len(got.Artists) != len(tt.expectedArtists) {
				t.Fatalf("Artists = %v, want %v", got.Artists, tt.expectedArtists)
			}
			for i := range got.Artists {
				if got.Artists[i] != tt.expectedArtists[i] {
					t.Errorf("Artists[%d] = %q, want %q", i, got.Artists[i], tt.expectedArtists[i])
				}
			}
			if got.URL != tt.expectedURL {
				t.Errorf("URL = %q, want %q", got.URL, tt.expectedURL)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		track Track
		want  string
	}{
		{"primary artist only", Track{Name: "Hello", Artists: []string{"Adele", "Someone"}}, "Hello – Adele"},
		{"no artists", Track{Name: "Untitled"}, "Untitled"},
		{"blank artist", Track{Name: "Untitled", Artists: []string{" "}}, "Untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.track.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewMarket(t *testing.T) {
	if got := New(nil).Market(); got != DefaultMarket {
		t.Errorf("Market() = %q, want %q", got, DefaultMarket)
	}
	if got := New(nil, WithMarket("US")).Market(); got != "US" {
		t.Errorf("Market() = %q, want US", got)
	}
	if got := New(nil, WithMarket("")).Market(); got != DefaultMarket {
		t.Errorf("Market() with empty code = %q, want %q", got, DefaultMarket)
	}
}
