package logger

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// ZerologHandler adapts a [zerolog.Logger] to satisfy [slog.Handler]. Call
// [NewZerolog] to build an [slog.Logger] backed by it; every log/slog call
// elsewhere in this module then ends up formatted and filtered by zerolog
// underneath.
type ZerologHandler struct {
	logger zerolog.Logger
	attrs  []slog.Attr
	group  string
}

// NewZerolog returns an [slog.Logger] whose handler forwards records to z.
func NewZerolog(z zerolog.Logger) *slog.Logger {
	return slog.New(&ZerologHandler{logger: z})
}

func (h *ZerologHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.GetLevel() <= zerologLevel(level)
}

func (h *ZerologHandler) Handle(_ context.Context, r slog.Record) error {
	e := h.event(r.Level)

	for _, a := range h.attrs {
		e = addAttr(e, h.group, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		e = addAttr(e, h.group, a)
		return true
	})

	e.Msg(r.Message)
	return nil
}

func (h *ZerologHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *ZerologHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		clone.group += "."
	}
	clone.group += name
	return &clone
}

func (h *ZerologHandler) event(level slog.Level) *zerolog.Event {
	switch {
	case level >= slog.LevelError:
		return h.logger.Error()
	case level >= slog.LevelWarn:
		return h.logger.Warn()
	case level >= slog.LevelInfo:
		return h.logger.Info()
	default:
		return h.logger.Debug()
	}
}

func zerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level >= slog.LevelError:
		return zerolog.ErrorLevel
	case level >= slog.LevelWarn:
		return zerolog.WarnLevel
	case level >= slog.LevelInfo:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}

func addAttr(e *zerolog.Event, group string, a slog.Attr) *zerolog.Event {
	if a.Equal(slog.Attr{}) {
		return e
	}

	key := a.Key
	if group != "" {
		key = group + "." + key
	}

	if err, ok := a.Value.Any().(error); ok {
		return e.AnErr(key, err)
	}
	return e.Any(key, a.Value.Any())
}
