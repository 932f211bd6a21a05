package mood

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-spotify-mood-recommender/internal/emotion"
	"github.com/justestif/go-spotify-mood-recommender/internal/history"
	"github.com/justestif/go-spotify-mood-recommender/internal/recommend"
	"github.com/justestif/go-spotify-mood-recommender/internal/youtube"
)

// labelClassifier returns labels in order, one per call.
type labelClassifier struct {
	labels []string
	calls  int
}

func (c *labelClassifier) Classify(_ context.Context, _ emotion.Frame) (emotion.Emotion, error) {
	i := c.calls
	c.calls++
	if i >= len(c.labels) || c.labels[i] == "" {
		return "", errors.New("no face")
	}
	return emotion.Emotion(c.labels[i]), nil
}

type stubTracks struct {
	result    recommend.Result
	gotQuery  string
	gotMood   emotion.Emotion
	callCount int
}

func (s *stubTracks) Search(_ context.Context, query string, mood emotion.Emotion) recommend.Result {
	s.callCount++
	s.gotQuery = query
	s.gotMood = mood
	return s.result
}

type stubVideos struct {
	videos   []youtube.Video
	err      error
	gotQuery string
	gotMax   int
	calls    int
}

func (s *stubVideos) Search(_ context.Context, query string, maxResults int) ([]youtube.Video, error) {
	s.calls++
	s.gotQuery = query
	s.gotMax = maxResults
	return s.videos, s.err
}

type failingStore struct{}

func (failingStore) Save(context.Context, history.Entry) error {
	return errors.New("db down")
}

func (failingStore) Recent(context.Context, string, int) ([]history.Entry, error) {
	return nil, nil
}

func (failingStore) Get(context.Context, string, uuid.UUID) (history.Entry, error) {
	return history.Entry{}, history.ErrNotFound
}

func (failingStore) Clear(context.Context, string) error {
	return nil
}

func frames(n int) []emotion.Frame {
	out := make([]emotion.Frame, n)
	for i := range out {
		out[i] = emotion.Frame{Data: []byte{byte(i + 1)}, ContentType: "image/jpeg"}
	}
	return out
}

func newTestService(labels []string, tracks *stubTracks, videos *stubVideos, opts ...Option) *Service {
	logger := log.NewStdLogger(io.Discard)
	detector := emotion.NewDetector(&labelClassifier{labels: labels}, logger)
	return NewService(detector, tracks, videos, logger, opts...)
}

func TestRecommend_SpotifyTracks(t *testing.T) {
	tracks := &stubTracks{result: recommend.Result{
		Stage: recommend.StageArtist,
		Tracks: []recommend.Track{
			{Name: "Hello – Adele", URL: "https://open.spotify.com/track/t1"},
		},
	}}
	videos := &stubVideos{}
	store := history.NewMemoryStore(10)
	fixed := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	svc := newTestService([]string{"happy", "sad", "happy", "happy", "neutral"}, tracks, videos,
		WithHistory(store), WithClock(func() time.Time { return fixed }))

	rec, err := svc.Recommend(context.Background(), Request{Query: "  Adele ", Frames: frames(5), VisitorID: "v1"})
	require.NoError(t, err)

	assert.Equal(t, emotion.Happy, rec.Emotion)
	assert.Equal(t, 60, rec.Confidence)
	assert.Equal(t, 5, rec.Usable)
	assert.Equal(t, SourceSpotify, rec.Source)
	assert.Equal(t, recommend.StageArtist, rec.Stage)
	assert.Equal(t, "Adele", rec.Query)
	assert.Equal(t, "Adele", tracks.gotQuery)
	assert.Equal(t, emotion.Happy, tracks.gotMood)
	assert.Equal(t, []Item{{Title: "Hello – Adele", URL: "https://open.spotify.com/track/t1"}}, rec.Items)
	assert.Equal(t, []Notice{{Level: LevelInfo, Message: "Analyzing 5 frames… detecting your mood"}}, rec.Notices)
	assert.Zero(t, videos.calls)
	assert.Equal(t, fixed, rec.CreatedAt)

	entries, err := store.Recent(context.Background(), "v1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, rec.ID, entries[0].ID)
	assert.Equal(t, "spotify", entries[0].Source)
	assert.Len(t, entries[0].Items, 1)
}

func TestRecommend_GenreNotice(t *testing.T) {
	tracks := &stubTracks{result: recommend.Result{
		Stage:  recommend.StageGenre,
		Genre:  "acoustic",
		Tracks: []recommend.Track{{Name: "Song – Band", URL: "https://open.spotify.com/track/x"}},
	}}

	svc := newTestService([]string{"sad"}, tracks, &stubVideos{})
	rec, err := svc.Recommend(context.Background(), Request{Query: "zzz", Frames: frames(1)})
	require.NoError(t, err)

	assert.Contains(t, rec.Notices, Notice{Level: LevelInfo, Message: "Mood-based playlist: acoustic"})
	assert.Equal(t, "Analyzing 1 frame… detecting your mood", rec.Notices[0].Message)
}

func TestRecommend_VideoFallback(t *testing.T) {
	tracks := &stubTracks{}
	videos := &stubVideos{videos: []youtube.Video{
		{Title: "Lofi", URL: "https://www.youtube.com/watch?v=a"},
		{Title: "Lofi", URL: "https://www.youtube.com/watch?v=a"},
	}}

	svc := newTestService([]string{"sad"}, tracks, videos, WithVideoResults(7))
	rec, err := svc.Recommend(context.Background(), Request{Query: "lofi beats", Frames: frames(1)})
	require.NoError(t, err)

	assert.Equal(t, "lofi beats sad music", videos.gotQuery)
	assert.Equal(t, 7, videos.gotMax)
	assert.Equal(t, SourceYouTube, rec.Source)
	assert.Len(t, rec.Items, 2, "videos are returned verbatim")
	assert.Contains(t, rec.Notices, Notice{Level: LevelWarning, Message: "Spotify returned nothing. Falling back to YouTube."})
}

func TestRecommend_VideoFailure(t *testing.T) {
	videos := &stubVideos{err: errors.New("quota exceeded")}

	svc := newTestService([]string{"angry"}, &stubTracks{}, videos)
	rec, err := svc.Recommend(context.Background(), Request{Query: "q", Frames: frames(1)})
	require.NoError(t, err)

	assert.Empty(t, rec.Items)
	assert.Equal(t, SourceNone, rec.Source)
	assert.Contains(t, rec.Notices, Notice{Level: LevelError, Message: "YouTube search failed: quota exceeded"})
	assert.Contains(t, rec.Notices, Notice{Level: LevelWarning, Message: "No recommendations found."})
}

func TestRecommend_NothingFound(t *testing.T) {
	svc := newTestService([]string{"fear"}, &stubTracks{}, &stubVideos{})
	rec, err := svc.Recommend(context.Background(), Request{Query: "q", Frames: frames(1)})
	require.NoError(t, err)

	assert.Equal(t, SourceNone, rec.Source)
	last := rec.Notices[len(rec.Notices)-1]
	assert.Equal(t, Notice{Level: LevelWarning, Message: "No recommendations found."}, last)
}

func TestRecommend_RequestErrors(t *testing.T) {
	tests := []struct {
		name    string
		labels  []string
		req     Request
		wantErr error
	}{
		{"empty query", []string{"happy"}, Request{Query: "", Frames: frames(1)}, ErrEmptyQuery},
		{"whitespace query", []string{"happy"}, Request{Query: "   ", Frames: frames(1)}, ErrEmptyQuery},
		{"no frames", []string{"happy"}, Request{Query: "q"}, ErrNoFrames},
		{"no face", []string{"", ""}, Request{Query: "q", Frames: frames(2)}, emotion.ErrNoFace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracks := &stubTracks{}
			svc := newTestService(tt.labels, tracks, &stubVideos{})

			rec, err := svc.Recommend(context.Background(), tt.req)

			assert.Nil(t, rec)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, tracks.callCount, "catalog must not be searched")
		})
	}
}

func TestRecommend_HistoryFailureDoesNotFailRequest(t *testing.T) {
	tracks := &stubTracks{result: recommend.Result{
		Tracks: []recommend.Track{{Name: "A", URL: "https://open.spotify.com/track/a"}},
	}}

	svc := newTestService([]string{"happy"}, tracks, &stubVideos{}, WithHistory(failingStore{}))
	rec, err := svc.Recommend(context.Background(), Request{Query: "q", Frames: frames(1)})

	require.NoError(t, err)
	assert.Len(t, rec.Items, 1)
}

func TestRecommend_PreviewIsFirstUsableFrame(t *testing.T) {
	svc := newTestService([]string{"", "happy"}, &stubTracks{}, &stubVideos{})
	in := frames(2)

	rec, err := svc.Recommend(context.Background(), Request{Query: "q", Frames: in})
	require.NoError(t, err)

	assert.Equal(t, in[1], rec.Preview)
}

func TestVideoQuery(t *testing.T) {
	assert.Equal(t, "Adele happy music", VideoQuery("Adele", emotion.Happy))
}
