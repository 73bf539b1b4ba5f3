package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mind-engage/quizcraft/internal/quiz"
)

// statusOf maps the quiz error taxonomy onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, quiz.ErrInternal):
		return http.StatusInternalServerError
	case errors.Is(err, quiz.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, quiz.ErrInvalidReference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, quiz.ErrMalformedAnswer), errors.Is(err, quiz.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, quiz.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, quiz.ErrNotReady):
		return http.StatusTooEarly
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
		http.Error(w, "internal error", status)
		return
	}
	http.Error(w, err.Error(), status)
}
