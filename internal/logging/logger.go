// Package logging sets up the shell's structured logger. The shell
// itself talks to the user over stdout/stderr, not logs, so this is
// diagnostic-only output: spawn failures, signal-handling anomalies,
// and config problems, written wherever Config.OutputPath points
// instead of interleaving with the prompt.
package logging

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global *zap.Logger = zap.NewNop()

// Config controls the diagnostic logger's verbosity and destination.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	OutputPath string // file path, "stdout", or "stderr"; empty disables logging
}

// Init builds the global logger from cfg. An empty OutputPath leaves
// logging disabled (the no-op logger), which is the default the shell
// starts with when no config file is supplied.
func Init(cfg Config) error {
	if cfg.OutputPath == "" {
		global = zap.NewNop()
		return nil
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     rfc3339Encoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	var sink zapcore.WriteSyncer
	switch cfg.OutputPath {
	case "stdout":
		sink = zapcore.AddSync(os.Stdout)
	case "stderr":
		sink = zapcore.AddSync(os.Stderr)
	default:
		f, err := os.OpenFile(cfg.OutputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		sink = zapcore.AddSync(f)
	}

	core := zapcore.NewCore(encoder, sink, level)
	global = zap.New(core, zap.AddCaller())
	return nil
}

func rfc3339Encoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format(time.RFC3339))
}

// L returns the global logger. Safe to call before Init; it returns a
// no-op logger until then.
func L() *zap.Logger {
	return global
}

// Sync flushes any buffered log entries. Called once at shutdown.
func Sync() error {
	return global.Sync()
}
