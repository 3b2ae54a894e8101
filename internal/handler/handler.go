// Package handler exposes the resolution and validation engine over a JSON
// API. It only translates requests into engine calls; auth and user
// progress belong to the outer service.
package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/edukit/lessond/internal/enrich"
	"github.com/edukit/lessond/internal/grading"
	"github.com/edukit/lessond/internal/model"
	"github.com/edukit/lessond/internal/question"
	"github.com/edukit/lessond/internal/stats"
	"github.com/edukit/lessond/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	lessons   *store.Store
	pipeline  *enrich.Pipeline
	questions *question.Repository
	grader    *grading.Engine
	stats     *stats.Aggregator
}

// New creates a new Handler.
func New(lessons *store.Store, p *enrich.Pipeline, repo *question.Repository, g *grading.Engine, a *stats.Aggregator) *Handler {
	return &Handler{lessons: lessons, pipeline: p, questions: repo, grader: g, stats: a}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/lessons/{lessonID}", h.handleGetLesson)
	r.Get("/lessons/{lessonID}/artifacts", h.handleLessonArtifacts)
	r.Get("/artifacts/{artifactID}", h.handleArtifactContent)
	r.Get("/questions/random", h.handleRandomQuestions)
	r.Get("/questions/{questionID}", h.handleGetQuestion)
	r.Get("/questions", h.handleListQuestions)
	r.Post("/questions/{questionID}/validate", h.handleValidate)
	r.Get("/stats", h.handleStats)
	r.Get("/stats/{subject}", h.handleSubjectStats)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// handleGetLesson returns a lesson with generated_assets resolved.
func (h *Handler) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	lessonID := chi.URLParam(r, "lessonID")

	lesson, err := h.lessons.GetLesson(lessonID)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "lesson not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	enriched, err := h.pipeline.Enrich(lesson, lessonID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, enriched)
}

func (h *Handler) handleLessonArtifacts(w http.ResponseWriter, r *http.Request) {
	lessonID := chi.URLParam(r, "lessonID")

	recs, err := h.pipeline.ArtifactsForLesson(lessonID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []model.ArtifactRecord{}
	}
	respondJSON(w, http.StatusOK, recs)
}

func (h *Handler) handleArtifactContent(w http.ResponseWriter, r *http.Request) {
	artifactID := chi.URLParam(r, "artifactID")

	res, ok, err := h.pipeline.ArtifactContent(artifactID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "artifact not found")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handler) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")

	q, ok := h.questions.GetByID(questionID)
	if !ok {
		respondError(w, http.StatusNotFound, "question not found")
		return
	}
	respondJSON(w, http.StatusOK, q)
}

// handleListQuestions filters by subject, type, or difficulty. Exactly one
// filter is applied, in that precedence order.
func (h *Handler) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	var qs []model.QuestionRecord
	query := r.URL.Query()
	switch {
	case query.Get("subject") != "":
		qs = h.questions.GetBySubject(query.Get("subject"), limit)
	case query.Get("type") != "":
		qs = h.questions.GetByType(model.QuestionType(query.Get("type")), limit)
	case query.Get("difficulty") != "":
		qs = h.questions.GetByDifficulty(model.Difficulty(query.Get("difficulty")), limit)
	default:
		respondError(w, http.StatusBadRequest, "one of subject, type, difficulty is required")
		return
	}
	if qs == nil {
		qs = []model.QuestionRecord{}
	}
	respondJSON(w, http.StatusOK, qs)
}

func (h *Handler) handleRandomQuestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	count := 1
	if raw := query.Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "invalid count")
			return
		}
		count = n
	}

	qs := h.questions.GetRandom(count, question.Filters{
		Subject:    query.Get("subject"),
		Difficulty: model.Difficulty(query.Get("difficulty")),
	})
	if qs == nil {
		qs = []model.QuestionRecord{}
	}
	respondJSON(w, http.StatusOK, qs)
}

// validateRequest is the POST body for answer validation.
type validateRequest struct {
	Answer any `json:"answer"`
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res := h.grader.Validate(questionID, req.Answer)
	if !res.Valid {
		status := http.StatusBadRequest
		if res.Error == grading.ErrNotFound {
			status = http.StatusNotFound
		}
		respondJSON(w, status, res)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.stats.Statistics()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func (h *Handler) handleSubjectStats(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")

	s, err := h.stats.SubjectStatistics(subject)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s)
}
