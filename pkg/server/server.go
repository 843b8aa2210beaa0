// pkg/server/server.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/readlex/readlex/pkg/db"
	"github.com/readlex/readlex/pkg/logger"
	"github.com/readlex/readlex/pkg/study"
)

// Handler exposes the study session over HTTP.
type Handler struct {
	session *study.Session
}

func NewHandler(session *study.Session) *Handler {
	return &Handler{session: session}
}

// Router builds the full route table.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", h.Health)
	r.Post("/process_url", h.ProcessURL)
	r.Get("/next_word", h.NextWord)
	r.Post("/review_word/{id}", h.ReviewWord)
	r.Get("/words", h.ListWords)
	r.Delete("/words", h.ClearWords)
	r.Get("/study_stats", h.StudyStats)

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug("http request",
			"method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start))
	})
}

// WordResponse is the wire shape of a stored word. Dates are calendar days.
type WordResponse struct {
	ID              uint               `json:"id"`
	Text            string             `json:"text"`
	SourceURL       string             `json:"source_url"`
	Translations    map[string]*string `json:"translations"`
	DifficultyLevel int                `json:"difficulty_level"`
	NextReviewDate  string             `json:"next_review_date"`
	ReviewCount     int                `json:"review_count"`
	EaseFactor      float64            `json:"ease_factor"`
	IntervalDays    int                `json:"interval_days"`
}

func toWordResponse(w *db.Word) (WordResponse, error) {
	translations, err := w.TranslationMap()
	if err != nil {
		return WordResponse{}, err
	}
	return WordResponse{
		ID:              w.ID,
		Text:            w.Text,
		SourceURL:       w.SourceURL,
		Translations:    translations,
		DifficultyLevel: w.DifficultyLevel,
		NextReviewDate:  w.NextReviewDate.Format("2006-01-02"),
		ReviewCount:     w.ReviewCount,
		EaseFactor:      w.EaseFactor,
		IntervalDays:    w.IntervalDays,
	}, nil
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ProcessURL fetches a page and records every candidate word on it.
func (h *Handler) ProcessURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	count, err := h.session.Ingest(r.Context(), req.URL)
	if err != nil {
		logger.Error("page ingestion failed", "url", req.URL, "error", err)
		writeError(w, http.StatusBadRequest, "could not process url: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "url processed",
		"words_found": count,
	})
}

// NextWord hands out the next due word with translations filled in. An empty
// queue is not an error.
func (h *Handler) NextWord(w http.ResponseWriter, r *http.Request) {
	word, err := h.session.NextCard(r.Context())
	if err != nil {
		logger.Error("next word lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load next word")
		return
	}
	if word == nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": "no words due for review"})
		return
	}
	resp, err := toWordResponse(word)
	if err != nil {
		logger.Error("word encoding failed", "id", word.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not encode word")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ReviewWord applies a quality grade in [0,5] to the word.
func (h *Handler) ReviewWord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid word id")
		return
	}
	quality, err := strconv.Atoi(r.URL.Query().Get("quality"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "quality must be an integer between 0 and 5")
		return
	}

	interval, err := h.session.Grade(r.Context(), uint(id), quality)
	switch {
	case errors.Is(err, study.ErrInvalidQuality):
		writeError(w, http.StatusBadRequest, "quality must be an integer between 0 and 5")
		return
	case errors.Is(err, study.ErrWordNotFound):
		writeError(w, http.StatusNotFound, "word not found")
		return
	case err != nil:
		logger.Error("review failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not record review")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":             "review recorded",
		"next_review_in_days": interval,
	})
}

func (h *Handler) ListWords(w http.ResponseWriter, r *http.Request) {
	words, err := h.session.Words(r.Context())
	if err != nil {
		logger.Error("word listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list words")
		return
	}
	resp := make([]WordResponse, 0, len(words))
	for i := range words {
		wr, err := toWordResponse(&words[i])
		if err != nil {
			logger.Error("word encoding failed", "id", words[i].ID, "error", err)
			writeError(w, http.StatusInternalServerError, "could not encode word")
			return
		}
		resp = append(resp, wr)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ClearWords(w http.ResponseWriter, r *http.Request) {
	if err := h.session.ClearAll(r.Context()); err != nil {
		logger.Error("word clearing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not clear words")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "all words deleted"})
}

func (h *Handler) StudyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.session.Stats(r.Context())
	if err != nil {
		logger.Error("stats query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("response encoding failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
