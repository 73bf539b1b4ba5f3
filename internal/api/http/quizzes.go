package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	authmw "github.com/mind-engage/quizcraft/internal/auth/middleware"
	"github.com/mind-engage/quizcraft/internal/quiz"
	"github.com/mind-engage/quizcraft/internal/rbac"
)

// GET /quizzes?creator=me&start_date=2024-01-31&end_date=2024-02-29&sort=passes&limit=50&offset=0
// Only ready quizzes are listed. Dates are UTC days and both ends are inclusive.
func ListQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := authmw.UserIDFromContext(r.Context())
		q := r.URL.Query()
		opts := quiz.ListOpts{
			ViewerID:  viewer,
			OnlyReady: true,
			Sort:      quiz.ListSort(strings.TrimSpace(q.Get("sort"))),
			Limit:     parseIntDefault(q.Get("limit"), 50),
			Offset:    parseIntDefault(q.Get("offset"), 0),
		}
		if !opts.Sort.Valid() {
			writeError(w, r, fmt.Errorf("%w: unknown sort %q", quiz.ErrInvalid, opts.Sort))
			return
		}
		if strings.TrimSpace(q.Get("creator")) == "me" {
			if viewer == 0 {
				writeError(w, r, fmt.Errorf("%w: creator=me needs a numeric subject", quiz.ErrInvalid))
				return
			}
			opts.CreatorID = viewer
		}
		var err error
		if opts.CreatedFrom, err = parseDay(q.Get("start_date"), false); err != nil {
			writeError(w, r, err)
			return
		}
		if opts.CreatedTo, err = parseDay(q.Get("end_date"), true); err != nil {
			writeError(w, r, err)
			return
		}
		list, err := store.ListQuizzes(r.Context(), opts)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// POST /quizzes
func CreateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creator, ok := authmw.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "numeric subject required", http.StatusUnauthorized)
			return
		}
		var q quiz.Quiz
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q.ID = 0
		q.CreatorID = creator
		q.CreatedAt = 0
		saved, err := store.PutQuiz(r.Context(), q)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(saved)
	}
}

// canTake reports whether the caller may see and attempt q.
func canTake(r *http.Request, q quiz.Quiz) error {
	viewer, _ := authmw.UserIDFromContext(r.Context())
	role := rbac.RoleFromContext(r.Context())
	if q.Private && q.CreatorID != viewer && !rbac.Has(role, "quiz:view-private") {
		return fmt.Errorf("quiz %d: %w", q.ID, quiz.ErrForbidden)
	}
	if !q.Ready {
		return fmt.Errorf("quiz %d: %w", q.ID, quiz.ErrNotReady)
	}
	return nil
}

// GET /quizzes/{quizID}?answer=1
// Answer keys are only served to the creator or roles with quiz:view-answers.
func GetQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := quizIDParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		q, err := store.GetQuiz(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := canTake(r, q); err != nil {
			writeError(w, r, err)
			return
		}
		out := q.Public()
		if r.URL.Query().Get("answer") == "1" {
			viewer, _ := authmw.UserIDFromContext(r.Context())
			if q.CreatorID != viewer && !rbac.Has(rbac.RoleFromContext(r.Context()), "quiz:view-answers") {
				writeError(w, r, fmt.Errorf("answers of quiz %d: %w", id, quiz.ErrForbidden))
				return
			}
			out = q
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}
