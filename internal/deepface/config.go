// Package deepface classifies facial emotions through a DeepFace REST API server.
package deepface

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// DefaultBaseURL is where `deepface api` listens by default.
const DefaultBaseURL = "http://127.0.0.1:5000"

// ErrInvalidBaseURL is returned when the configured server URL cannot be used.
var ErrInvalidBaseURL = errors.New("invalid DeepFace base URL")

// Config holds DeepFace API configuration.
type Config struct {
	BaseURL          string
	DetectorBackend  string // Empty uses the server default (opencv)
	EnforceDetection bool   // When false the whole frame is analyzed if no face box is found
	Timeout          time.Duration
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: 30 * time.Second,
	}
}

// Validate checks that BaseURL is an absolute http(s) URL.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.BaseURL)
	}
	return nil
}
