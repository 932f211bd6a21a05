package db

import (
	"time"

	"github.com/google/uuid"
)

// Recommendation is one stored recommendation request.
type Recommendation struct {
	ID         uuid.UUID
	VisitorID  string
	Query      string
	Emotion    string
	Confidence int
	Source     string // "spotify", "youtube" or "none"
	Stage      string
	Genre      string
	CreatedAt  time.Time
	Items      []RecommendationItem
}

// RecommendationItem is a single recommended link, in display order.
type RecommendationItem struct {
	Title string
	URL   string
}
