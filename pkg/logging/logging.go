// Package logging provides the structured logger used across the service.
package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appctx "github.com/CoreyPud/solarlink/pkg/appctx"
	"github.com/CoreyPud/solarlink/pkg/tracing"
)

// Logger is the logging interface passed to repositories, engines, and
// handlers. Implementations are immutable; With* methods return a child.
type Logger interface {
	WithContext(ctx context.Context) Logger
	WithError(err error) Logger
	WithField(key string, value any) Logger
	WithFields(fields map[string]any) Logger

	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Config controls logger construction.
type Config struct {
	AppName string
	Level   string // debug, info, warn, error
	Pretty  bool   // console encoding for local development
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// New builds a zap-backed Logger.
func New(cfg Config) (Logger, error) {
	level := zapcore.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var zcfg zap.Config
	if cfg.Pretty {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	base, err := zcfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	sugar := base.Sugar()
	if cfg.AppName != "" {
		sugar = sugar.With("app", cfg.AppName)
	}
	return &zapLogger{sugar: sugar}, nil
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

func (l *zapLogger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return l
	}
	sugar := l.sugar
	if requestID := appctx.GetRequestID(ctx); requestID != "" {
		sugar = sugar.With("request_id", requestID)
	}
	if userID := appctx.GetUserID(ctx); userID != "" {
		sugar = sugar.With("user_id", userID)
	}
	if traceID := tracing.GetTraceID(ctx); traceID != "" {
		sugar = sugar.With("trace_id", traceID, "span_id", tracing.GetSpanID(ctx))
	}
	return &zapLogger{sugar: sugar}
}

func (l *zapLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return &zapLogger{sugar: l.sugar.With("error", err.Error())}
}

func (l *zapLogger) WithField(key string, value any) Logger {
	return &zapLogger{sugar: l.sugar.With(key, value)}
}

func (l *zapLogger) WithFields(fields map[string]any) Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &zapLogger{sugar: l.sugar.With(args...)}
}

func (l *zapLogger) Debug(msg string) { l.sugar.Debug(msg) }
func (l *zapLogger) Info(msg string)  { l.sugar.Info(msg) }
func (l *zapLogger) Warn(msg string)  { l.sugar.Warn(msg) }
func (l *zapLogger) Error(msg string) { l.sugar.Error(msg) }

func (l *zapLogger) Debugf(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l *zapLogger) Infof(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *zapLogger) Warnf(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l *zapLogger) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }
