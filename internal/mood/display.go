package mood

import (
	"fmt"
	"strings"
)

// FormatSummary returns a human-readable summary of a recommendation.
// Shows the detected mood, the notices and every recommended link.
func FormatSummary(rec *Recommendation) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("Mood: %s %s (%d%% confidence, %d of %d %s usable)\n",
		rec.Emotion.Emoji(), rec.Emotion.Title(), rec.Confidence,
		rec.Usable, rec.Sampled, plural(rec.Sampled, "frame", "frames")))

	for _, n := range rec.Notices {
		if n.Level == LevelInfo {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", strings.ToUpper(string(n.Level)), n.Message))
	}

	if len(rec.Items) == 0 {
		return sb.String()
	}

	sb.WriteString("\n")
	sb.WriteString(formatSourceHeader(rec))
	for i, item := range rec.Items {
		sb.WriteString(fmt.Sprintf("  %2d. %s\n      %s\n", i+1, item.Title, item.URL))
	}

	return sb.String()
}

// formatSourceHeader names where the items came from.
func formatSourceHeader(rec *Recommendation) string {
	itemWord := plural(len(rec.Items), "track", "tracks")
	switch rec.Source {
	case SourceYouTube:
		return fmt.Sprintf("%d %s from YouTube for %q\n", len(rec.Items), plural(len(rec.Items), "video", "videos"), rec.Query)
	case SourceSpotify:
		if rec.Genre != "" {
			return fmt.Sprintf("%d %s from Spotify (%s playlist)\n", len(rec.Items), itemWord, rec.Genre)
		}
		return fmt.Sprintf("%d %s from Spotify for %q\n", len(rec.Items), itemWord, rec.Query)
	default:
		return fmt.Sprintf("%d %s\n", len(rec.Items), itemWord)
	}
}
