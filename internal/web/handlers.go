package web

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	"github.com/justestif/go-spotify-mood-recommender/internal/emotion"
	"github.com/justestif/go-spotify-mood-recommender/internal/history"
	"github.com/justestif/go-spotify-mood-recommender/internal/mood"
)

const (
	appTitle     = "Mood Music Recommender"
	historyLimit = 20

	// fragmentHeader asks for the results fragment instead of a full page.
	fragmentHeader = "X-Fragment"
)

// User-facing messages.
const (
	msgEmptyQuery = "Please enter an artist or genre."
	msgNoFrames   = "Please capture or upload a photo."
	msgNoFace     = "No face detected. Please try again."
	msgBadImage   = "Could not read the image. Please use a JPEG or PNG photo."
	msgFailed     = "Something went wrong. Please try again."
)

// Recommender runs one recommendation request.
type Recommender interface {
	Recommend(ctx context.Context, req mood.Request) (*mood.Recommendation, error)
}

var _ Recommender = (*mood.Service)(nil)

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	recommender  Recommender
	history      history.Store
	templates    *Templates
	sampleFrames int
	log          *log.Helper
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(recommender Recommender, store history.Store, templates *Templates, sampleFrames int, logger log.Logger) *Handlers {
	if sampleFrames <= 0 {
		sampleFrames = emotion.DefaultSampleFrames
	}
	return &Handlers{
		recommender:  recommender,
		history:      store,
		templates:    templates,
		sampleFrames: sampleFrames,
		log:          log.NewHelper(logger),
	}
}

// Home handles the home page (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	h.renderHome(w, r, http.StatusOK, "", nil)
}

// Recommend handles a capture or upload (POST /recommend).
// Expects multipart fields "query" and one or more "frames" images.
func (h *Handlers) Recommend(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes())
	if err := r.ParseMultipartForm(h.maxUploadBytes()); err != nil {
		h.renderHome(w, r, http.StatusBadRequest, "", &FlashMessage{Type: "error", Message: msgBadImage})
		return
	}
	defer r.MultipartForm.RemoveAll()

	query := r.FormValue("query")
	if strings.TrimSpace(query) == "" {
		h.renderHome(w, r, http.StatusBadRequest, query, &FlashMessage{Type: "warning", Message: msgEmptyQuery})
		return
	}

	frames, err := readFrames(r.MultipartForm.File["frames"], h.sampleFrames)
	if err != nil {
		h.log.WithContext(r.Context()).Warnw("msg", "rejecting upload", "error", err)
		h.renderHome(w, r, http.StatusBadRequest, query, &FlashMessage{Type: "error", Message: msgBadImage})
		return
	}

	rec, err := h.recommender.Recommend(r.Context(), mood.Request{
		Query:     query,
		Frames:    frames,
		VisitorID: visitorID(w, r),
	})
	if err != nil {
		status, flash := h.classifyError(r.Context(), err)
		h.renderHome(w, r, status, query, flash)
		return
	}

	data := ResultPageData{
		PageData: PageData{
			Title:       appTitle,
			CurrentPath: r.URL.Path,
		},
		Recommendation: rec,
		Notices:        notices(rec),
		IsVideo:        rec.Source == mood.SourceYouTube,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.Header.Get(fragmentHeader) != "" {
		if err := h.templates.RenderPartial(w, "results", data); err != nil {
			http.Error(w, "Failed to render template", http.StatusInternalServerError)
		}
		return
	}
	if err := h.templates.Render(w, "result", data); err != nil {
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}
}

// History lists the visitor's recent recommendations (GET /history).
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	data := HistoryPageData{
		PageData: PageData{
			Title:       appTitle,
			CurrentPath: r.URL.Path,
		},
	}

	if id := existingVisitorID(r); id != "" {
		entries, err := h.history.Recent(r.Context(), id, historyLimit)
		if err != nil {
			h.log.WithContext(r.Context()).Errorw("msg", "loading history failed", "error", err)
			data.Flash = &FlashMessage{Type: "error", Message: "Could not load your history."}
		}
		data.Entries = entryData(entries)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, "history", data); err != nil {
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}
}

// HistoryEntry shows one of the visitor's recommendations (GET /history/{id}).
func (h *Handlers) HistoryEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	visitor := existingVisitorID(r)
	if err != nil || visitor == "" {
		http.NotFound(w, r)
		return
	}

	entry, err := h.history.Get(r.Context(), visitor, id)
	if errors.Is(err, history.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.log.WithContext(r.Context()).Errorw("msg", "loading history entry failed", "id", id, "error", err)
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	data := HistoryPageData{
		PageData: PageData{
			Title:       appTitle,
			CurrentPath: r.URL.Path,
		},
		Entries: entryData([]history.Entry{entry}),
		Single:  true,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, "history", data); err != nil {
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}
}

// ClearHistory removes the visitor's history (POST /history/clear).
func (h *Handlers) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if id := existingVisitorID(r); id != "" {
		if err := h.history.Clear(r.Context(), id); err != nil {
			h.log.WithContext(r.Context()).Errorw("msg", "clearing history failed", "error", err)
			http.Error(w, "Failed to clear history", http.StatusInternalServerError)
			return
		}
	}
	http.Redirect(w, r, "/history", http.StatusSeeOther)
}

// Health reports liveness (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (h *Handlers) renderHome(w http.ResponseWriter, r *http.Request, status int, query string, flash *FlashMessage) {
	data := HomePageData{
		PageData: PageData{
			Title:       appTitle,
			Flash:       flash,
			CurrentPath: r.URL.Path,
		},
		Query:        query,
		SampleFrames: h.sampleFrames,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, "home", data); err != nil {
		h.log.WithContext(r.Context()).Errorw("msg", "rendering home failed", "error", err)
	}
}

// classifyError maps a recommendation error to a status code and message.
func (h *Handlers) classifyError(ctx context.Context, err error) (int, *FlashMessage) {
	switch {
	case errors.Is(err, mood.ErrEmptyQuery):
		return http.StatusBadRequest, &FlashMessage{Type: "warning", Message: msgEmptyQuery}
	case errors.Is(err, mood.ErrNoFrames):
		return http.StatusBadRequest, &FlashMessage{Type: "warning", Message: msgNoFrames}
	case emotion.IsNoFace(err):
		return http.StatusUnprocessableEntity, &FlashMessage{Type: "error", Message: msgNoFace}
	default:
		h.log.WithContext(ctx).Errorw("msg", "recommendation failed", "error", err)
		return http.StatusInternalServerError, &FlashMessage{Type: "error", Message: msgFailed}
	}
}

func (h *Handlers) maxUploadBytes() int64 {
	return int64(h.sampleFrames)*emotion.MaxFrameBytes + 1<<20
}

// readFrames decodes up to limit uploaded images.
func readFrames(files []*multipart.FileHeader, limit int) ([]emotion.Frame, error) {
	if len(files) > limit {
		files = files[:limit]
	}

	frames := make([]emotion.Frame, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", fh.Filename, err)
		}
		frame, err := emotion.DecodeFrame(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", fh.Filename, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// notices converts recommendation notices to flash messages.
func notices(rec *mood.Recommendation) []FlashMessage {
	out := make([]FlashMessage, len(rec.Notices))
	for i, n := range rec.Notices {
		out[i] = FlashMessage{Type: string(n.Level), Message: n.Message}
	}
	return out
}

func entryData(entries []history.Entry) []EntryData {
	out := make([]EntryData, len(entries))
	for i, e := range entries {
		items := make([]ItemData, len(e.Items))
		for j, item := range e.Items {
			items[j] = ItemData{Title: item.Title, URL: item.URL}
		}
		out[i] = EntryData{
			ID:         e.ID.String(),
			Query:      e.Query,
			Emotion:    emotion.Emotion(e.Emotion),
			Confidence: e.Confidence,
			Source:     e.Source,
			Genre:      e.Genre,
			Items:      items,
			CreatedAt:  e.CreatedAt,
		}
	}
	return out
}
