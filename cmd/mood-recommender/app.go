package main

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/justestif/go-spotify-mood-recommender/internal/auth"
	"github.com/justestif/go-spotify-mood-recommender/internal/config"
	"github.com/justestif/go-spotify-mood-recommender/internal/db"
	"github.com/justestif/go-spotify-mood-recommender/internal/deepface"
	"github.com/justestif/go-spotify-mood-recommender/internal/emotion"
	"github.com/justestif/go-spotify-mood-recommender/internal/history"
	"github.com/justestif/go-spotify-mood-recommender/internal/mood"
	"github.com/justestif/go-spotify-mood-recommender/internal/recommend"
	"github.com/justestif/go-spotify-mood-recommender/internal/spotify"
	"github.com/justestif/go-spotify-mood-recommender/internal/youtube"
)

// app holds the process-wide clients shared by every request.
type app struct {
	mood     *mood.Service
	history  history.Store
	database *db.DB
}

// newApp builds every client from the configuration.
func newApp(ctx context.Context, cfg *config.Config, logger log.Logger, detectorOpts ...emotion.Option) (*app, error) {
	helper := log.NewHelper(logger)

	// Spotify catalog
	cache, err := tokenCache(cfg)
	if err != nil {
		return nil, err
	}
	authenticator, err := auth.New(cfg.SpotifyClientID, cfg.SpotifyClientSecret, auth.WithTokenCache(cache))
	if err != nil {
		return nil, err
	}
	api, err := authenticator.Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticating with Spotify: %w", err)
	}
	catalog := spotify.New(api, spotify.WithMarket(cfg.SpotifyMarket))
	var tracks recommend.Searcher = recommend.NewService(catalog, logger, recommend.WithLimit(cfg.ResultLimit))
	if cfg.SearchCacheTTL > 0 {
		tracks = recommend.NewCachedSearcher(tracks, logger, recommend.WithTTL(cfg.SearchCacheTTL))
	}

	// YouTube fallback
	videos, err := youtube.NewClient(ctx, cfg.YouTubeAPIKey)
	if err != nil {
		return nil, err
	}

	// Emotion classifier
	dfCfg := deepface.DefaultConfig()
	dfCfg.BaseURL = cfg.DeepFaceURL
	dfCfg.DetectorBackend = cfg.DeepFaceDetector
	classifier, err := deepface.NewClient(dfCfg)
	if err != nil {
		return nil, err
	}
	opts := append([]emotion.Option{
		emotion.WithMaxFrames(cfg.SampleFrames),
		emotion.WithConcurrency(cfg.ClassifyConcurrency),
	}, detectorOpts...)
	detector := emotion.NewDetector(classifier, logger, opts...)

	a := &app{}

	// History
	if cfg.DatabaseURL != "" {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, err
		}
		a.database = database
		a.history = history.NewDBStore(database)
		helper.Info("recording history in PostgreSQL")
	} else {
		a.history = history.NewMemoryStore(history.DefaultCapacity)
		helper.Info("DATABASE_URL not set, keeping history in memory")
	}

	a.mood = mood.NewService(detector, tracks, videos, logger,
		mood.WithHistory(a.history),
		mood.WithVideoResults(cfg.VideoResults),
	)
	return a, nil
}

// Close releases the database pool, if any.
func (a *app) Close() {
	if a.database != nil {
		a.database.Close()
	}
}

func tokenCache(cfg *config.Config) (*auth.TokenCache, error) {
	if cfg.TokenCachePath != "" {
		return auth.NewTokenCache(cfg.TokenCachePath), nil
	}
	cache, err := auth.DefaultTokenCache()
	if err != nil {
		return nil, fmt.Errorf("creating token cache: %w", err)
	}
	return cache, nil
}
