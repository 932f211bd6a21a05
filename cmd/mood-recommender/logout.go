package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-mood-recommender/internal/auth"
	"github.com/justestif/go-spotify-mood-recommender/internal/config"
)

func init() {
	rootCmd.AddCommand(logoutCmd)
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the cached Spotify app token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cache, err := tokenCache(cfg)
		if err != nil {
			return err
		}
		a, err := auth.New(cfg.SpotifyClientID, cfg.SpotifyClientSecret, auth.WithTokenCache(cache))
		if err != nil {
			return err
		}
		if err := a.Logout(); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", cache.Path())
		return nil
	},
}
