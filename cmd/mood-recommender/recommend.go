package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-mood-recommender/internal/config"
	"github.com/justestif/go-spotify-mood-recommender/internal/emotion"
	"github.com/justestif/go-spotify-mood-recommender/internal/mood"
)

var recommendQuery string

func init() {
	recommendCmd.Flags().StringVarP(&recommendQuery, "query", "q", "", "artist or genre to search for (required)")
	_ = recommendCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(recommendCmd)
}

var recommendCmd = &cobra.Command{
	Use:   "recommend --query QUERY IMAGE...",
	Short: "Detect the mood in image files and print recommendations",
	Long: `recommend classifies each JPEG or PNG image, picks the dominant emotion and
prints tracks (or videos) for the query. Pass several photos of the same face
to vote across them; images beyond SAMPLE_FRAMES are ignored.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return recommendFiles(ctx, recommendQuery, args)
	},
}

func recommendFiles(ctx context.Context, query string, paths []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	frames, err := loadFrames(paths)
	if err != nil {
		return err
	}

	sampled := min(len(frames), cfg.SampleFrames)
	bar := progressbar.NewOptions(sampled,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Analyzing frames"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	a, err := newApp(ctx, cfg, newLogger(), emotion.WithSampleHook(func(int, emotion.Sample) {
		_ = bar.Add(1)
	}))
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.mood.Recommend(ctx, mood.Request{Query: query, Frames: frames, VisitorID: "cli"})
	_ = bar.Finish()
	if err != nil {
		switch {
		case errors.Is(err, mood.ErrEmptyQuery):
			return errors.New("please enter an artist or genre")
		case emotion.IsNoFace(err):
			return errors.New("no face detected, try another photo")
		}
		return err
	}

	fmt.Print(mood.FormatSummary(rec))
	return nil
}

// loadFrames reads and validates every image file.
func loadFrames(paths []string) ([]emotion.Frame, error) {
	frames := make([]emotion.Frame, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening image: %w", err)
		}
		frame, err := emotion.DecodeFrame(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}
