package utils

import (
	"context"
	"fmt"
	"log"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

var once sync.Once

// StandardLogger enforces specific log message formats.
type StandardLogger struct {
	*zap.SugaredLogger
}

// LoggerOptions selects the level and encoding of a logger.
type LoggerOptions struct {
	Level string // zap level name, INFO when empty or invalid
	Local bool   // human readable development output
}

// IntegerLevelEncoder returns custom encoder for level field.
func IntegerLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendInt8((int8(l) + 3) * 10)
}

var appLogger *StandardLogger

// NewLogger creates a new application logger.
func NewLogger(opts LoggerOptions) *StandardLogger {
	var cfg zap.Config
	outputLevel := zap.InfoLevel
	if opts.Level != "" {
		levelFromOpts, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			log.Println(
				fmt.Errorf("invalid level, defaulting to INFO: %w", err),
			)
		} else {
			outputLevel = levelFromOpts
		}
	}
	if !opts.Local {
		cfg = zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stdout"}
		cfg.InitialFields = map[string]any{"name": "cronx"}
		cfg.EncoderConfig.EncodeLevel = IntegerLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.TimeKey = "time"
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(outputLevel)
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return &StandardLogger{SugaredLogger: logger.Sugar()}
}

// NopLogger returns a logger that discards everything.
func NopLogger() *StandardLogger {
	return &StandardLogger{zap.NewNop().Sugar()}
}

// SetAppLogger installs l as the process wide fallback logger.
func SetAppLogger(l *StandardLogger) {
	once.Do(func() {})
	appLogger = l
}

func GetAppLogger(ctx context.Context) *StandardLogger {
	once.Do(func() {
		appLogger = NewLogger(LoggerOptions{})
	})
	return LoggerFromCtx(ctx)
}

func GetChildLogger(parent *StandardLogger, childContext map[string]string) *StandardLogger {
	zapFields := make([]any, 0)
	for k, v := range childContext {
		zapFields = append(zapFields, zap.String(k, v))
	}
	return &StandardLogger{parent.With(zapFields...)}
}

// LoggerFromCtx returns the Logger associated with the ctx. If no logger
// is associated, the default logger is returned, unless it is nil
// in which case a disabled logger is returned.
func LoggerFromCtx(ctx context.Context) *StandardLogger {
	if l, ok := ctx.Value(ctxKey{}).(*StandardLogger); ok {
		return l
	} else if l := appLogger; l != nil {
		return l
	}
	return NopLogger()
}

// LoggerWithCtx returns a copy of ctx with the Logger attached.
func LoggerWithCtx(ctx context.Context, l *StandardLogger) context.Context {
	if lp, ok := ctx.Value(ctxKey{}).(*StandardLogger); ok {
		if lp == l {
			// Do not store same logger.
			return ctx
		}
	}

	return context.WithValue(ctx, ctxKey{}, l)
}
