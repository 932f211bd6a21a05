package emotion

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
)

// MaxFrameBytes caps the size of a single image.
const MaxFrameBytes = 10 << 20 // 10 MiB

// Sentinel errors for frame decoding.
var (
	ErrEmptyFrame    = errors.New("empty frame")
	ErrFrameTooLarge = errors.New("frame exceeds size limit")
)

// Frame is one still image handed to the classifier.
type Frame struct {
	Data        []byte
	ContentType string // "image/jpeg" or "image/png"
	Width       int
	Height      int
}

// Empty reports whether the frame carries no image data.
func (f Frame) Empty() bool {
	return len(f.Data) == 0
}

// DataURI encodes the frame as a base64 data URI.
func (f Frame) DataURI() string {
	if f.Empty() {
		return ""
	}
	return "data:" + f.ContentType + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

// DecodeFrame reads an image, verifies it is a JPEG or PNG and records its
// dimensions. Reads at most MaxFrameBytes.
func DecodeFrame(r io.Reader) (Frame, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFrameBytes+1))
	if err != nil {
		return Frame{}, fmt.Errorf("reading frame: %w", err)
	}
	if len(data) == 0 {
		return Frame{}, ErrEmptyFrame
	}
	if len(data) > MaxFrameBytes {
		return Frame{}, ErrFrameTooLarge
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Frame{}, fmt.Errorf("decoding frame: %w", err)
	}

	return Frame{
		Data:        data,
		ContentType: "image/" + format,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}
