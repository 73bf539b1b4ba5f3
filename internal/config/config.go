package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string // sqlite|postgres|memory
	DBDSN    string

	AuthHMACSecret  string
	TokenTTL        time.Duration
	EnableLocalAuth bool

	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	MCQScoring         string // binary|rational, used when a question does not choose
	OpenEndedNormalize bool

	LogLevel       string
	LogFormat      string // text|color|json
	RequestTimeout time.Duration
}

// Load reads envFile into the process environment, without overriding
// variables that are already set, and then builds the Config. A missing
// default ".env" is not an error. The result is not validated so callers can
// layer flags on top first.
func Load(envFile string) (Config, error) {
	file := envFile
	if file == "" {
		file = ".env"
	}
	if err := godotenv.Load(file); err != nil {
		if envFile != "" || !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return FromEnv(), nil
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:               mode,
		HTTPAddr:           envOr("HTTP_ADDR", ":8080"),
		DBDriver:           envOr("DB_DRIVER", "sqlite"),
		DBDSN:              envOr("DB_DSN", ""),
		AuthHMACSecret:     envOr("AUTH_HMAC_SECRET", "dev-secret-change"),
		TokenTTL:           envDuration("TOKEN_TTL", 12*time.Hour),
		EnableLocalAuth:    envBool("ENABLE_LOCAL_AUTH", true),
		AdminUser:          envOr("ADMIN_USER", "admin"),
		AdminPassHash:      envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://quizcraft.mindengage.ai"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),
		MCQScoring:         envOr("MCQ_SCORING", "binary"),
		OpenEndedNormalize: envBool("OPEN_ENDED_NORMALIZE", false),
		LogLevel:           envOr("LOG_LEVEL", "info"),
		LogFormat:          envOr("LOG_FORMAT", "text"),
		RequestTimeout:     envDuration("REQUEST_TIMEOUT", 60*time.Second),
	}
}

// CORSOrigins returns the allowed origins for the current mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeOffline, ModeOnline:
	default:
		return fmt.Errorf("MODE must be offline or online, got %q", c.Mode)
	}
	switch c.DBDriver {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite, postgres or memory, got %q", c.DBDriver)
	}
	switch c.MCQScoring {
	case "binary", "rational":
	default:
		return fmt.Errorf("MCQ_SCORING must be binary or rational, got %q", c.MCQScoring)
	}
	switch c.LogFormat {
	case "text", "color", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text, color or json, got %q", c.LogFormat)
	}
	if c.Mode == ModeOnline && c.AuthHMACSecret == "dev-secret-change" {
		return errors.New("AUTH_HMAC_SECRET must be set in online mode")
	}
	return nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
