package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	api "github.com/mind-engage/quizcraft/internal/api/http"
	auth "github.com/mind-engage/quizcraft/internal/auth/middleware"
	"github.com/mind-engage/quizcraft/internal/config"
	"github.com/mind-engage/quizcraft/internal/db"
	"github.com/mind-engage/quizcraft/internal/grading"
	"github.com/mind-engage/quizcraft/internal/logging"
	"github.com/mind-engage/quizcraft/internal/quiz"
	"github.com/mind-engage/quizcraft/internal/submission"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("quizcraftd stopped", "err", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment, layers the flags on top and validates
// the result once.
func loadConfig(args []string) (config.Config, error) {
	fs := pflag.NewFlagSet("quizcraftd", pflag.ContinueOnError)
	envFile := fs.String("env-file", "", "dotenv file to load before reading the environment")
	addr := fs.String("addr", "", "listen address (overrides HTTP_ADDR)")
	driver := fs.String("db-driver", "", "sqlite, postgres or memory (overrides DB_DRIVER)")
	dsn := fs.String("db-dsn", "", "database DSN (overrides DB_DSN)")
	level := fs.String("log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		return config.Config{}, err
	}
	applyFlags(&cfg, *addr, *driver, *dsn, *level)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	log := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	slog.SetDefault(log)

	// --- DB ---
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	store, closeStore, err := openStore(openCtx, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	grader := grading.NewGrader(
		grading.WithDefaultMCQScoring(quiz.MCQScoring(cfg.MCQScoring)),
		grading.WithTextNormalization(cfg.OpenEndedNormalize),
	)
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret, cfg.TokenTTL)

	h := api.NewRouter(api.Deps{
		Store:       store,
		Submissions: submission.NewService(store, grader, log),
		Auth:        authSvc,
		LocalAuth:   cfg.EnableLocalAuth,
		Login: auth.LoginOptions{
			AdminUser:     cfg.AdminUser,
			AdminPassHash: cfg.AdminPassHash,
			DevLogin:      cfg.Mode == config.ModeOffline,
		},
		CORSOrigins:    cfg.CORSOrigins(),
		RequestTimeout: cfg.RequestTimeout,
		AccessLog:      true,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver, "mcq_scoring", cfg.MCQScoring)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func applyFlags(cfg *config.Config, addr, driver, dsn, level string) {
	if addr != "" {
		cfg.HTTPAddr = addr
	}
	if driver != "" {
		cfg.DBDriver = driver
	}
	if dsn != "" {
		cfg.DBDSN = dsn
	}
	if level != "" {
		cfg.LogLevel = level
	}
}

func openStore(ctx context.Context, cfg config.Config) (quiz.Store, func(), error) {
	if cfg.DBDriver == "memory" {
		return quiz.NewMemoryStore(), func() {}, nil
	}
	driver := db.Driver(cfg.DBDriver)
	dbh, err := db.Open(ctx, driver, cfg.DBDSN)
	if err != nil {
		return nil, nil, err
	}
	return quiz.NewSQLStore(dbh, driver), func() { closeDB(dbh) }, nil
}

func closeDB(dbh *sql.DB) {
	if err := dbh.Close(); err != nil {
		slog.Warn("db close", "err", err)
	}
}
