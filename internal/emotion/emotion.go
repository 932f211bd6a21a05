// Package emotion turns noisy per-frame facial emotion classifications into
// a single dominant mood.
package emotion

import (
	"fmt"
	"strings"
)

// Emotion is a facial emotion label produced by the classifier.
type Emotion string

// The fixed set of labels the classifier can produce.
const (
	Happy    Emotion = "happy"
	Sad      Emotion = "sad"
	Angry    Emotion = "angry"
	Fear     Emotion = "fear"
	Neutral  Emotion = "neutral"
	Surprise Emotion = "surprise"
	Disgust  Emotion = "disgust"
)

// DefaultGenre is used for emotions without a genre mapping.
const DefaultGenre = "pop"

var genres = map[Emotion]string{
	Happy:    "pop",
	Sad:      "acoustic",
	Angry:    "metal",
	Fear:     "ambient",
	Neutral:  "indie",
	Surprise: "electronic",
	Disgust:  "classical",
}

var emojis = map[Emotion]string{
	Happy:    "😄",
	Sad:      "😢",
	Angry:    "😠",
	Fear:     "😨",
	Neutral:  "😐",
	Surprise: "😲",
	Disgust:  "🤢",
}

// Parse normalizes a raw classifier label and checks it against the known set.
func Parse(raw string) (Emotion, error) {
	e := Emotion(strings.ToLower(strings.TrimSpace(raw)))
	if !e.Valid() {
		return "", fmt.Errorf("unknown emotion label %q", raw)
	}
	return e, nil
}

// Valid reports whether e is one of the known labels.
func (e Emotion) Valid() bool {
	_, ok := genres[e]
	return ok
}

// Genre maps the emotion to the playlist genre used for the mood fallback.
// Unmapped emotions get DefaultGenre.
func (e Emotion) Genre() string {
	if g, ok := genres[e]; ok {
		return g
	}
	return DefaultGenre
}

// Emoji returns the display emoji for the emotion, or "" if there is none.
func (e Emotion) Emoji() string {
	return emojis[e]
}

// Title returns the label with its first letter upper-cased ("Happy").
func (e Emotion) Title() string {
	if e == "" {
		return ""
	}
	s := string(e)
	return strings.ToUpper(s[:1]) + s[1:]
}

func (e Emotion) String() string {
	return string(e)
}
