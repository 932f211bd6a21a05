package spotify

import "strings"

// Artist is a catalog artist search hit.
type Artist struct {
	ID   string
	Name string
}

// Playlist is a catalog playlist search hit.
type Playlist struct {
	ID    string
	Name  string
	Owner string
}

// Track contains the track metadata needed to recommend it.
type Track struct {
	ID      string
	Name    string
	Artists []string
	URL     string // Open-in-Spotify link; empty if the catalog has none
}

// DisplayName joins the title with the primary artist: "Hello – Adele".
func (t Track) DisplayName() string {
	if len(t.Artists) == 0 || strings.TrimSpace(t.Artists[0]) == "" {
		return t.Name
	}
	return t.Name + " – " + t.Artists[0]
}
