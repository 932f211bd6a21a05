package deepface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/justestif/go-spotify-mood-recommender/internal/emotion"
)

const userAgent = "spotify-mood-recommender/1.0"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20 // 1 MiB

// Sentinel errors.
var (
	// ErrNoResults is returned when the server analyzed the frame but found nothing.
	ErrNoResults = errors.New("no analysis results")

	// ErrUnavailable is returned when the server responds with a 5xx status.
	ErrUnavailable = errors.New("deepface server unavailable")

	// ErrResponseTooLarge is returned when a response body exceeds maxResponseBytes.
	ErrResponseTooLarge = errors.New("deepface response too large")
)

// Client is a DeepFace REST API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cfg        Config
}

var _ emotion.Classifier = (*Client)(nil)

// NewClient creates a new DeepFace API client from the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cfg:     cfg,
	}, nil
}

// Classify returns the dominant emotion of the first face found in the frame.
func (c *Client) Classify(ctx context.Context, frame emotion.Frame) (emotion.Emotion, error) {
	results, err := c.Analyze(ctx, frame)
	if err != nil {
		return "", err
	}
	return emotion.Parse(results[0].DominantEmotion)
}

// Analyze runs emotion analysis on a frame and returns one entry per face.
// Never returns an empty slice without an error.
func (c *Client) Analyze(ctx context.Context, frame emotion.Frame) ([]Analysis, error) {
	if frame.Empty() {
		return nil, emotion.ErrEmptyFrame
	}

	payload := analyzeRequest{
		Img:              frame.DataURI(),
		Actions:          []string{"emotion"},
		EnforceDetection: c.cfg.EnforceDetection,
		DetectorBackend:  c.cfg.DetectorBackend,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding analyze request: %w", err)
	}

	body, err := c.doRequest(ctx, "/analyze", b)
	if err != nil {
		return nil, fmt.Errorf("analyzing frame: %w", err)
	}

	var resp analyzeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing analyze response: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, ErrNoResults
	}

	return resp.Results, nil
}

// doRequest performs a single JSON POST. DeepFace calls are not retried: a
// failed frame is simply dropped by the detector.
func (c *Client) doRequest(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, ErrResponseTooLarge
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.message() != "" {
			return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, apiErr.message())
		}
		return nil, fmt.Errorf("API error %d", resp.StatusCode)
	}

	return body, nil
}
