package http

import (
	"encoding/json"
	"net/http"

	authmw "github.com/mind-engage/quizcraft/internal/auth/middleware"
	"github.com/mind-engage/quizcraft/internal/quiz"
	"github.com/mind-engage/quizcraft/internal/submission"
)

type attemptRequest struct {
	Answers []submission.Answer `json:"answers"`
}

// POST /quizzes/{quizID}/attempt
func SubmitAttemptHandler(store quiz.Store, svc *submission.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authmw.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "numeric subject required", http.StatusUnauthorized)
			return
		}
		quizID, err := quizIDParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req attemptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q, err := store.GetQuiz(r.Context(), quizID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := canTake(r, q); err != nil {
			writeError(w, r, err)
			return
		}
		res, err := svc.Submit(r.Context(), quizID, userID, req.Answers)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res.Wire())
	}
}
