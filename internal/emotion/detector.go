package emotion

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-kratos/kratos/v2/log"
)

// Default number of frames sampled per detection.
const DefaultSampleFrames = 5

// DefaultConcurrency classifies frames one at a time.
const DefaultConcurrency = 1

// Classifier labels the dominant facial emotion in a single frame.
type Classifier interface {
	Classify(ctx context.Context, frame Frame) (Emotion, error)
}

// Detector samples frames through a Classifier and aggregates the votes.
type Detector struct {
	classifier  Classifier
	maxFrames   int
	concurrency int
	onSample    func(index int, s Sample)
	log         *log.Helper
}

// Option configures a Detector.
type Option func(*Detector)

// WithMaxFrames sets how many frames are sampled. Extra frames are ignored.
func WithMaxFrames(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.maxFrames = n
		}
	}
}

// WithConcurrency sets the number of frames classified in parallel.
func WithConcurrency(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithSampleHook registers a callback invoked after each frame is classified.
// It may be called from multiple goroutines.
func WithSampleHook(fn func(index int, s Sample)) Option {
	return func(d *Detector) {
		d.onSample = fn
	}
}

// NewDetector creates a Detector around the given classifier.
func NewDetector(classifier Classifier, logger log.Logger, opts ...Option) *Detector {
	d := &Detector{
		classifier:  classifier,
		maxFrames:   DefaultSampleFrames,
		concurrency: DefaultConcurrency,
		log:         log.NewHelper(logger),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// MaxFrames returns the number of frames sampled per detection.
func (d *Detector) MaxFrames() int {
	return d.maxFrames
}

// Detect classifies up to MaxFrames frames and returns the dominant emotion
// with the per-frame samples in frame order.
// Returns ErrNoFace if no frame yields a label.
func (d *Detector) Detect(ctx context.Context, frames []Frame) (Result, []Sample, error) {
	if len(frames) > d.maxFrames {
		frames = frames[:d.maxFrames]
	}

	samples := d.sample(ctx, frames)
	if err := ctx.Err(); err != nil {
		return Result{Sampled: len(samples)}, samples, err
	}

	result, err := Aggregate(samples)
	if err != nil {
		d.log.WithContext(ctx).Warnw("msg", "no usable frames", "sampled", len(samples))
		return result, samples, err
	}

	d.log.WithContext(ctx).Infow(
		"msg", "emotion detected",
		"emotion", result.Emotion,
		"confidence", result.Confidence,
		"usable", result.Usable,
		"sampled", result.Sampled,
	)
	return result, samples, nil
}

// sample classifies frames with a worker pool. Results keep frame order.
func (d *Detector) sample(ctx context.Context, frames []Frame) []Sample {
	samples := make([]Sample, len(frames))
	if len(frames) == 0 {
		return samples
	}

	type workItem struct {
		index int
		frame Frame
	}
	workCh := make(chan workItem, len(frames))
	for i, f := range frames {
		workCh <- workItem{index: i, frame: f}
	}
	close(workCh)

	workers := min(d.concurrency, len(frames))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for work := range workCh {
				s := d.classify(ctx, work.frame)
				if s.Err != nil {
					d.log.WithContext(ctx).Debugw("msg", "frame dropped", "frame", work.index, "error", s.Err)
				}
				samples[work.index] = s
				if d.onSample != nil {
					d.onSample(work.index, s)
				}
			}
		}()
	}
	wg.Wait()

	return samples
}

// classify turns one classifier call into a Sample, never failing the batch.
func (d *Detector) classify(ctx context.Context, frame Frame) Sample {
	if err := ctx.Err(); err != nil {
		return Sample{Err: err}
	}
	if frame.Empty() {
		return Sample{Err: ErrEmptyFrame}
	}

	label, err := d.classifier.Classify(ctx, frame)
	if err != nil {
		return Sample{Err: fmt.Errorf("classifying frame: %w", err)}
	}

	parsed, err := Parse(string(label))
	if err != nil {
		return Sample{Err: err}
	}
	return Sample{Label: parsed}
}

// IsNoFace reports whether err means no frame produced a usable label.
func IsNoFace(err error) bool {
	return errors.Is(err, ErrNoFace)
}
