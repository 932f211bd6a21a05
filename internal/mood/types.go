package mood

import (
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-spotify-mood-recommender/internal/emotion"
	"github.com/justestif/go-spotify-mood-recommender/internal/recommend"
)

// Source names where the recommended items came from.
type Source string

const (
	SourceNone    Source = "none"
	SourceSpotify Source = "spotify"
	SourceYouTube Source = "youtube"
)

// Level is the severity of a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a user-facing status message produced while handling a request.
type Notice struct {
	Level   Level
	Message string
}

// Request is one recommendation request.
type Request struct {
	Query     string
	Frames    []emotion.Frame
	VisitorID string
}

// Item is a recommended link: a track or a video.
type Item struct {
	Title string
	URL   string
}

// Recommendation is the outcome of a request.
type Recommendation struct {
	ID         uuid.UUID
	VisitorID  string
	Query      string
	Emotion    emotion.Emotion
	Confidence int
	Usable     int
	Sampled    int
	Source     Source
	Stage      recommend.Stage
	Genre      string
	Items      []Item
	Notices    []Notice
	Preview    emotion.Frame
	CreatedAt  time.Time
}

func (r *Recommendation) notify(level Level, msg string) {
	r.Notices = append(r.Notices, Notice{Level: level, Message: msg})
}
