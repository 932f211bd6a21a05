package main

import (
	"fmt"
	"os"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "mood-recommender",
	Short: "Recommend music for the mood on your face",
	Long: `mood-recommender samples a few photos of your face, detects the dominant
emotion with a DeepFace server and recommends Spotify tracks for an artist or
genre, falling back to YouTube videos.

Configuration is read from the environment and an optional .env file:
SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET and YOUTUBE_API_KEY are required.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger returns the process logger. Debug lines are dropped unless
// --verbose is set.
func newLogger() log.Logger {
	logger := log.With(log.NewStdLogger(os.Stderr),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
	)
	level := log.LevelInfo
	if verbose {
		level = log.LevelDebug
	}
	return log.NewFilter(logger, log.FilterLevel(level))
}
