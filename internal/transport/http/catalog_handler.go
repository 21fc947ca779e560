package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"codecrafter-quiz/internal/catalog"
	"codecrafter-quiz/internal/domain"
	"github.com/rs/zerolog"
)

// CatalogHandler serves the quiz catalog API read by catalog.HTTPClient.
type CatalogHandler struct {
	repo catalog.Repository
	log  zerolog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewCatalogHandler(repo catalog.Repository, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{repo: repo, log: log}
}

// Register mounts the catalog routes on mux.
func (h *CatalogHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/quizzes", h.ListQuizzes)
	mux.HandleFunc("GET /api/quizzes/{id}", h.GetQuiz)
}

func (h *CatalogHandler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.repo.ListQuizzes(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *CatalogHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.repo.GetQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrQuizNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "quiz not found"})
		return
	}
	h.log.Error().Err(err).Msg("catalog request failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
