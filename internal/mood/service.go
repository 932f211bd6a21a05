// Package mood runs a recommendation request end to end: detect the
// visitor's emotion, search the catalog, fall back to videos and record the
// outcome.
package mood

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	"github.com/justestif/go-spotify-mood-recommender/internal/emotion"
	"github.com/justestif/go-spotify-mood-recommender/internal/history"
	"github.com/justestif/go-spotify-mood-recommender/internal/recommend"
	"github.com/justestif/go-spotify-mood-recommender/internal/youtube"
)

// Request errors.
var (
	ErrEmptyQuery = errors.New("query is required")
	ErrNoFrames   = errors.New("at least one frame is required")
)

// Detector reduces sampled frames to one emotion.
type Detector interface {
	Detect(ctx context.Context, frames []emotion.Frame) (emotion.Result, []emotion.Sample, error)
	MaxFrames() int
}

// TrackSearcher finds catalog tracks for a query and mood.
type TrackSearcher interface {
	Search(ctx context.Context, query string, mood emotion.Emotion) recommend.Result
}

// VideoSearcher finds videos for a free-text query.
type VideoSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]youtube.Video, error)
}

var (
	_ Detector      = (*emotion.Detector)(nil)
	_ TrackSearcher = (*recommend.Service)(nil)
	_ VideoSearcher = (*youtube.Client)(nil)
)

// Service orchestrates detection, search and history.
type Service struct {
	detector     Detector
	tracks       TrackSearcher
	videos       VideoSearcher
	history      history.Store
	videoResults int
	now          func() time.Time
	log          *log.Helper
}

// Option configures a Service.
type Option func(*Service)

// WithHistory records every recommendation in the given store.
func WithHistory(store history.Store) Option {
	return func(s *Service) {
		s.history = store
	}
}

// WithVideoResults sets how many videos the fallback search requests.
func WithVideoResults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.videoResults = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service.
func NewService(detector Detector, tracks TrackSearcher, videos VideoSearcher, logger log.Logger, opts ...Option) *Service {
	s := &Service{
		detector:     detector,
		tracks:       tracks,
		videos:       videos,
		videoResults: youtube.DefaultMaxResults,
		now:          time.Now,
		log:          log.NewHelper(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recommend detects the emotion in the frames and finds music for the query.
// It returns ErrEmptyQuery, ErrNoFrames or emotion.ErrNoFace when the request
// cannot proceed. An empty result is not an error.
func (s *Service) Recommend(ctx context.Context, req Request) (*Recommendation, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if len(req.Frames) == 0 {
		return nil, ErrNoFrames
	}

	rec := &Recommendation{
		ID:        uuid.New(),
		VisitorID: req.VisitorID,
		Query:     query,
		Source:    SourceNone,
		CreatedAt: s.now(),
	}

	sampled := min(len(req.Frames), s.detector.MaxFrames())
	rec.notify(LevelInfo, fmt.Sprintf("Analyzing %d %s… detecting your mood", sampled, plural(sampled, "frame", "frames")))

	result, samples, err := s.detector.Detect(ctx, req.Frames)
	if err != nil {
		return nil, fmt.Errorf("detecting emotion: %w", err)
	}
	rec.Emotion = result.Emotion
	rec.Confidence = result.Confidence
	rec.Usable = result.Usable
	rec.Sampled = result.Sampled
	rec.Preview = previewFrame(req.Frames, samples)

	found := s.tracks.Search(ctx, query, result.Emotion)
	rec.Stage = found.Stage
	rec.Genre = found.Genre
	if found.Genre != "" {
		rec.notify(LevelInfo, fmt.Sprintf("Mood-based playlist: %s", found.Genre))
	}

	if !found.Empty() {
		rec.Source = SourceSpotify
		for _, t := range found.Tracks {
			rec.Items = append(rec.Items, Item{Title: t.Name, URL: t.URL})
		}
	} else {
		rec.notify(LevelWarning, "Spotify returned nothing. Falling back to YouTube.")
		s.searchVideos(ctx, rec, req.Query)
	}

	if len(rec.Items) == 0 {
		rec.notify(LevelWarning, "No recommendations found.")
	}

	s.log.WithContext(ctx).Infow(
		"msg", "recommendation ready",
		"id", rec.ID,
		"emotion", rec.Emotion,
		"confidence", rec.Confidence,
		"source", rec.Source,
		"stage", rec.Stage,
		"items", len(rec.Items),
	)

	s.record(ctx, rec)
	return rec, nil
}

// searchVideos runs the video fallback. A failure ends the request with an
// error notice and no results.
func (s *Service) searchVideos(ctx context.Context, rec *Recommendation, rawQuery string) {
	videoQuery := VideoQuery(rawQuery, rec.Emotion)
	videos, err := s.videos.Search(ctx, videoQuery, s.videoResults)
	if err != nil {
		s.log.WithContext(ctx).Errorw("msg", "video search failed", "query", videoQuery, "error", err)
		rec.notify(LevelError, fmt.Sprintf("YouTube search failed: %v", err))
		return
	}

	if len(videos) > 0 {
		rec.Source = SourceYouTube
	}
	for _, v := range videos {
		rec.Items = append(rec.Items, Item{Title: v.Title, URL: v.URL})
	}
}

// record saves the recommendation. Failures are logged only.
func (s *Service) record(ctx context.Context, rec *Recommendation) {
	if s.history == nil {
		return
	}

	entry := history.Entry{
		ID:         rec.ID,
		VisitorID:  rec.VisitorID,
		Query:      rec.Query,
		Emotion:    string(rec.Emotion),
		Confidence: rec.Confidence,
		Source:     string(rec.Source),
		Stage:      string(rec.Stage),
		Genre:      rec.Genre,
		CreatedAt:  rec.CreatedAt,
	}
	for _, item := range rec.Items {
		entry.Items = append(entry.Items, history.Item{Title: item.Title, URL: item.URL})
	}

	if err := s.history.Save(ctx, entry); err != nil {
		s.log.WithContext(ctx).Warnw("msg", "recording history failed", "id", rec.ID, "error", err)
	}
}

// VideoQuery builds the fallback video search terms.
func VideoQuery(query string, mood emotion.Emotion) string {
	return fmt.Sprintf("%s %s music", query, mood)
}

// previewFrame picks the first frame that produced a label, or the first
// frame if none did.
func previewFrame(frames []emotion.Frame, samples []emotion.Sample) emotion.Frame {
	for i, s := range samples {
		if s.OK() && i < len(frames) {
			return frames[i]
		}
	}
	return frames[0]
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
