// Package config loads application settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/justestif/go-spotify-mood-recommender/internal/deepface"
	"github.com/justestif/go-spotify-mood-recommender/internal/emotion"
	"github.com/justestif/go-spotify-mood-recommender/internal/recommend"
	"github.com/justestif/go-spotify-mood-recommender/internal/spotify"
	"github.com/justestif/go-spotify-mood-recommender/internal/youtube"
)

// DefaultAddr is the default listen address for the web server.
const DefaultAddr = "127.0.0.1:8080"

// Required environment variables.
var requiredVars = []string{"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "YOUTUBE_API_KEY"}

// ErrMissingCredentials is returned when a required variable is not set.
var ErrMissingCredentials = errors.New("missing required environment variable")

// Config holds all application settings.
type Config struct {
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyMarket       string
	YouTubeAPIKey       string
	DeepFaceURL         string
	DeepFaceDetector    string
	DatabaseURL         string // empty keeps history in memory
	Addr                string
	SampleFrames        int
	ResultLimit         int
	VideoResults        int
	ClassifyConcurrency int
	SearchCacheTTL      time.Duration // zero disables the search cache
	CORSOrigins         []string
	TokenCachePath      string // empty uses the user config dir
}

// Load reads a .env file from the working directory, if present, and then
// the environment. Variables already set in the environment win.
// Returns ErrMissingCredentials naming every missing required variable.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	var missing []string
	for _, name := range requiredVars {
		if strings.TrimSpace(os.Getenv(name)) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	cfg := &Config{
		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		YouTubeAPIKey:       os.Getenv("YOUTUBE_API_KEY"),
		SpotifyMarket:       stringEnv("SPOTIFY_MARKET", spotify.DefaultMarket),
		DeepFaceURL:         stringEnv("DEEPFACE_URL", deepface.DefaultBaseURL),
		DeepFaceDetector:    stringEnv("DEEPFACE_DETECTOR", deepface.DefaultConfig().DetectorBackend),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		Addr:                stringEnv("ADDR", DefaultAddr),
		CORSOrigins:         listEnv("CORS_ORIGINS"),
		TokenCachePath:      os.Getenv("TOKEN_CACHE_PATH"),
	}

	ints := []struct {
		name string
		dst  *int
		def  int
	}{
		{"SAMPLE_FRAMES", &cfg.SampleFrames, emotion.DefaultSampleFrames},
		{"RESULT_LIMIT", &cfg.ResultLimit, recommend.DefaultLimit},
		{"VIDEO_RESULTS", &cfg.VideoResults, youtube.DefaultMaxResults},
		{"CLASSIFY_CONCURRENCY", &cfg.ClassifyConcurrency, emotion.DefaultConcurrency},
	}
	for _, v := range ints {
		n, err := intEnv(v.name, v.def)
		if err != nil {
			return nil, err
		}
		*v.dst = n
	}

	ttl, err := durationEnv("SEARCH_CACHE_TTL", recommend.DefaultCacheTTL)
	if err != nil {
		return nil, err
	}
	cfg.SearchCacheTTL = ttl

	return cfg, nil
}

func stringEnv(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

// intEnv parses a positive integer variable, falling back to def when unset.
func intEnv(name string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return n, nil
}

// durationEnv parses a non-negative duration such as "5m", falling back to
// def when unset.
func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s must be a duration like 10m, got %q", name, raw)
	}
	return d, nil
}

// listEnv splits a comma-separated variable, dropping blanks.
func listEnv(name string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(name), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
