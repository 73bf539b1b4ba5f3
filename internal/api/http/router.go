package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authmw "github.com/mind-engage/quizcraft/internal/auth/middleware"
	"github.com/mind-engage/quizcraft/internal/quiz"
	"github.com/mind-engage/quizcraft/internal/rbac"
	"github.com/mind-engage/quizcraft/internal/submission"
)

// Pinger is implemented by stores backed by a database.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Store       quiz.Store
	Submissions *submission.Service
	Auth        *authmw.AuthService

	LocalAuth      bool
	Login          authmw.LoginOptions
	CORSOrigins    []string
	RequestTimeout time.Duration
	AccessLog      bool
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	if d.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if d.LocalAuth {
		r.Post("/auth/login", authmw.LoginHandler(d.Auth, d.Login))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(d.Auth))

		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes", ListQuizzesHandler(d.Store))
		pr.With(rbac.Require("quiz:create")).
			Post("/quizzes", CreateQuizHandler(d.Store))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{quizID}", GetQuizHandler(d.Store))
		pr.With(rbac.Require("take:create")).
			Post("/quizzes/{quizID}/attempt", SubmitAttemptHandler(d.Store, d.Submissions))
		pr.With(rbac.RequireAny("take:view-own", "take:view-all")).
			Get("/takes", ListTakesHandler(d.Store))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", ReadyHandler(d.Store))
	return r
}

// ReadyHandler pings the database when the store has one.
func ReadyHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p, ok := store.(Pinger); ok {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				http.Error(w, "db unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
	}
}
