package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/quizcraft/internal/quiz"
)

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}

func quizIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "quizID")
	id, ok := parseID(raw)
	if !ok {
		return 0, fmt.Errorf("%w: bad quiz id %q", quiz.ErrInvalid, raw)
	}
	return id, nil
}

// parseDay turns a YYYY-MM-DD UTC date into unix seconds: the first second of
// the day, or the last one when endOfDay is set. Empty input gives 0.
func parseDay(s string, endOfDay bool) (int64, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return 0, fmt.Errorf("%w: date %q must be YYYY-MM-DD", quiz.ErrInvalid, s)
	}
	if endOfDay {
		d = d.Add(24*time.Hour - time.Second)
	}
	return d.Unix(), nil
}
