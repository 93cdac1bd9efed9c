package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"compat-quiz-service/internal/app"
	"compat-quiz-service/internal/domain"
	"go.uber.org/zap"
)

// QuizHandler serves quiz definitions and stateless scoring over plain HTTP.
type QuizHandler struct {
	service *app.QuizService
	log     *zap.Logger
}

func NewQuizHandler(service *app.QuizService, log *zap.Logger) *QuizHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuizHandler{service: service, log: log}
}

// Register mounts the quiz routes on mux.
func (h *QuizHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /quizzes/{id}", h.getQuiz)
	mux.HandleFunc("POST /quizzes/{id}/score", h.score)
}

type publicQuestion struct {
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
	Hint     string   `json:"hint,omitempty"`
	Multiple bool     `json:"multiple"`
}

type publicQuiz struct {
	ID          string           `json:"id"`
	Title       string           `json:"title,omitempty"`
	CollectName bool             `json:"collectName"`
	Questions   []publicQuestion `json:"questions"`
}

type scoreRequest struct {
	Answers domain.Answers `json:"answers"`
}

// getQuiz returns the definition without weights so clients cannot game the score.
func (h *QuizHandler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.Quiz(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := publicQuiz{ID: quiz.ID, Title: quiz.Title, CollectName: quiz.CollectName}
	for _, q := range quiz.Questions {
		out.Questions = append(out.Questions, publicQuestion{
			Prompt:   q.Prompt,
			Options:  q.Options,
			Hint:     q.Hint(),
			Multiple: q.Limit() != 1,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *QuizHandler) score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Code: "bad_request", Message: "invalid score payload"})
		return
	}
	result, err := h.service.Score(r.Context(), r.PathValue("id"), req.Answers)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *QuizHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuiz),
		errors.Is(err, domain.ErrInvalidIndex),
		errors.Is(err, domain.ErrSelectionLimitExceeded):
		status = http.StatusUnprocessableEntity
	default:
		h.log.Error("quiz request failed", zap.Error(err))
	}
	writeJSON(w, status, errorPayload{Code: domain.Code(err), Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
