package emotion

import "errors"

// ErrNoFace is returned when no sampled frame produced a usable label.
var ErrNoFace = errors.New("no face detected")

// Sample is the outcome of classifying one frame: either a label or the
// reason the frame was unusable.
type Sample struct {
	Label Emotion
	Err   error
}

// OK reports whether the sample carries a usable label.
func (s Sample) OK() bool {
	return s.Err == nil && s.Label != ""
}

// Result is the dominant emotion across a batch of samples.
type Result struct {
	Emotion    Emotion
	Confidence int // Percentage of usable samples that voted for Emotion, rounded down
	Votes      int // Samples that voted for Emotion
	Usable     int // Samples that produced any label
	Sampled    int // Samples attempted, usable or not
}

// Aggregate folds per-frame samples into the dominant emotion.
// Failed samples are dropped. Ties go to the label seen first.
// Returns ErrNoFace if no sample is usable.
func Aggregate(samples []Sample) (Result, error) {
	counts := make(map[Emotion]int)
	var order []Emotion
	usable := 0

	for _, s := range samples {
		if !s.OK() {
			continue
		}
		usable++
		if counts[s.Label] == 0 {
			order = append(order, s.Label)
		}
		counts[s.Label]++
	}

	if usable == 0 {
		return Result{Sampled: len(samples)}, ErrNoFace
	}

	// Strict comparison keeps the first-seen label on ties.
	winner := order[0]
	for _, label := range order[1:] {
		if counts[label] > counts[winner] {
			winner = label
		}
	}

	return Result{
		Emotion:    winner,
		Confidence: counts[winner] * 100 / usable,
		Votes:      counts[winner],
		Usable:     usable,
		Sampled:    len(samples),
	}, nil
}
