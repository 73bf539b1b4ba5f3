package slogcustom

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// CustomHandler writes one coloured line per record for local consoles.
type CustomHandler struct {
	mu    *sync.Mutex
	l     *log.Logger
	level slog.Leveler
	attrs []slog.Attr
	group string
}

func NewCustomHandler(out io.Writer, level slog.Leveler) *CustomHandler {
	return &CustomHandler{
		mu:    &sync.Mutex{},
		l:     log.New(out, "", 0),
		level: level,
	}
}

func (c *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"

	switch {
	case r.Level >= slog.LevelError:
		level = color.RedString(level)
	case r.Level >= slog.LevelWarn:
		level = color.YellowString(level)
	case r.Level >= slog.LevelInfo:
		level = color.HiBlueString(level)
	default:
		level = color.MagentaString(level)
	}

	var b strings.Builder
	write := func(a slog.Attr) {
		key := a.Key
		if c.group != "" {
			key = c.group + "." + key
		}
		b.WriteString(color.GreenString(key) + "=" + fmt.Sprint(a.Value.Resolve().Any()) + " ")
	}
	for _, a := range c.attrs {
		write(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		write(a)
		return true
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.l.Println(
		r.Time.Format("15:04:05.000"),
		level,
		r.Message,
		strings.TrimSpace(b.String()),
	)
	return nil
}

func (c *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := *c
	out.attrs = append(append([]slog.Attr(nil), c.attrs...), attrs...)
	return &out
}

func (c *CustomHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return c
	}
	out := *c
	if out.group != "" {
		name = out.group + "." + name
	}
	out.group = name
	return &out
}

func (c *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= c.level.Level()
}
