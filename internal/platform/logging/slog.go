package logging

import (
	"context"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Slog returns a *slog.Logger that writes through this zap logger, so
// slog call sites share the same encoder, level and trace fields.
func (l *Logger) Slog() *slog.Logger {
	if l == nil {
		return slog.New(&slogHandler{logger: NewNop()})
	}
	return slog.New(&slogHandler{logger: l})
}

type slogHandler struct {
	logger *Logger
	attrs  []zap.Field
	prefix string
}

func (h *slogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.Zap().Core().Enabled(zapLevelFromSlog(level))
}

func (h *slogHandler) Handle(ctx context.Context, rec slog.Record) error {
	fields := make([]zap.Field, 0, len(h.attrs)+rec.NumAttrs()+2)
	fields = append(fields, h.attrs...)
	rec.Attrs(func(attr slog.Attr) bool {
		fields = append(fields, h.zapField(attr))
		return true
	})
	fields = append(fields, traceFields(ctx)...)

	if ce := h.logger.Zap().Check(zapLevelFromSlog(rec.Level), rec.Message); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := &slogHandler{
		logger: h.logger,
		attrs:  make([]zap.Field, 0, len(h.attrs)+len(attrs)),
		prefix: h.prefix,
	}
	out.attrs = append(out.attrs, h.attrs...)
	for _, attr := range attrs {
		out.attrs = append(out.attrs, h.zapField(attr))
	}
	return out
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &slogHandler{
		logger: h.logger,
		attrs:  h.attrs,
		prefix: h.prefix + name + ".",
	}
}

func (h *slogHandler) zapField(attr slog.Attr) zap.Field {
	key := h.prefix + attr.Key
	value := attr.Value.Resolve().Any()
	if err, ok := value.(error); ok {
		return zap.NamedError(key, err)
	}
	return zap.Any(key, value)
}

func zapLevelFromSlog(level slog.Level) zapcore.Level {
	switch {
	case level < slog.LevelInfo:
		return zapcore.DebugLevel
	case level < slog.LevelWarn:
		return zapcore.InfoLevel
	case level < slog.LevelError:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
