package web

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/justestif/go-spotify-mood-recommender/internal/emotion"
	"github.com/justestif/go-spotify-mood-recommender/internal/mood"
)

// apiRequest is the JSON body of POST /api/recommendations.
type apiRequest struct {
	Query  string   `json:"query"`
	Frames []string `json:"frames"` // data URIs or raw base64
}

type apiItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type apiNotice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// apiRecommendation is the JSON response of POST /api/recommendations.
type apiRecommendation struct {
	ID         string      `json:"id"`
	Query      string      `json:"query"`
	Emotion    string      `json:"emotion"`
	Emoji      string      `json:"emoji"`
	Confidence int         `json:"confidence"`
	Usable     int         `json:"usable_frames"`
	Sampled    int         `json:"sampled_frames"`
	Source     string      `json:"source"`
	Stage      string      `json:"stage,omitempty"`
	Genre      string      `json:"genre,omitempty"`
	Items      []apiItem   `json:"items"`
	Notices    []apiNotice `json:"notices"`
	CreatedAt  time.Time   `json:"created_at"`
}

type apiError struct {
	Error string `json:"error"`
}

// APIRecommend runs the pipeline for a JSON request (POST /api/recommendations).
func (h *Handlers) APIRecommend(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes()*2)

	var req apiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: msgEmptyQuery})
		return
	}

	frames, err := decodeDataFrames(req.Frames, h.sampleFrames)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	rec, err := h.recommender.Recommend(r.Context(), mood.Request{
		Query:     req.Query,
		Frames:    frames,
		VisitorID: visitorID(w, r),
	})
	if err != nil {
		status, flash := h.classifyError(r.Context(), err)
		writeJSON(w, status, apiError{Error: flash.Message})
		return
	}

	writeJSON(w, http.StatusOK, toAPIRecommendation(rec))
}

// decodeDataFrames decodes up to limit base64 images.
func decodeDataFrames(encoded []string, limit int) ([]emotion.Frame, error) {
	if len(encoded) > limit {
		encoded = encoded[:limit]
	}

	frames := make([]emotion.Frame, 0, len(encoded))
	for i, s := range encoded {
		if _, payload, ok := strings.Cut(s, ";base64,"); ok {
			s = payload
		}
		data, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("frame %d: invalid base64", i)
		}
		frame, err := emotion.DecodeFrame(bytes.NewReader(data))
		if err != nil {
			if errors.Is(err, emotion.ErrFrameTooLarge) {
				return nil, fmt.Errorf("frame %d: image too large", i)
			}
			return nil, fmt.Errorf("frame %d: not a JPEG or PNG image", i)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

func toAPIRecommendation(rec *mood.Recommendation) apiRecommendation {
	out := apiRecommendation{
		ID:         rec.ID.String(),
		Query:      rec.Query,
		Emotion:    string(rec.Emotion),
		Emoji:      rec.Emotion.Emoji(),
		Confidence: rec.Confidence,
		Usable:     rec.Usable,
		Sampled:    rec.Sampled,
		Source:     string(rec.Source),
		Stage:      string(rec.Stage),
		Genre:      rec.Genre,
		Items:      make([]apiItem, len(rec.Items)),
		Notices:    make([]apiNotice, len(rec.Notices)),
		CreatedAt:  rec.CreatedAt,
	}
	for i, item := range rec.Items {
		out.Items[i] = apiItem{Title: item.Title, URL: item.URL}
	}
	for i, n := range rec.Notices {
		out.Notices[i] = apiNotice{Level: string(n.Level), Message: n.Message}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
