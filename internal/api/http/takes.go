package http

import (
	"encoding/json"
	"net/http"

	authmw "github.com/mind-engage/quizcraft/internal/auth/middleware"
	"github.com/mind-engage/quizcraft/internal/quiz"
	"github.com/mind-engage/quizcraft/internal/rbac"
)

// GET /takes?quiz_id=...&user_id=...&limit=50&offset=0
// Callers without take:view-all only ever see their own takes.
func ListTakesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := quiz.TakeListOpts{
			Limit:  parseIntDefault(q.Get("limit"), 50),
			Offset: parseIntDefault(q.Get("offset"), 0),
		}
		if id, ok := parseID(q.Get("quiz_id")); ok {
			opts.QuizID = id
		}
		if id, ok := parseID(q.Get("user_id")); ok {
			opts.UserID = id
		}
		if !rbac.Has(rbac.RoleFromContext(r.Context()), "take:view-all") {
			self, ok := authmw.UserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			opts.UserID = self
		}
		list, err := store.ListTakes(r.Context(), opts)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}
