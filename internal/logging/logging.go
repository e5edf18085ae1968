package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// logWriter mirrors every log line to stdout and, when configured, to the
// rotating log file.
type logWriter struct {
	r *rotator.Rotator
}

func (w *logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if w.r != nil {
		return w.r.Write(p)
	}
	return len(p), nil
}

// Backend hands out per-subsystem loggers sharing one writer and one debug
// level.
type Backend struct {
	mu      sync.Mutex
	backend *slog.Backend
	rot     *rotator.Rotator
	level   slog.Level
	loggers map[string]slog.Logger
}

// NewBackend creates a logging backend. logFile may be empty for
// stdout-only logging; debugLevel is one of slog's level names ("trace",
// "debug", "info", "warn", "error", "critical").
func NewBackend(logFile, debugLevel string) (*Backend, error) {
	var rot *rotator.Rotator
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		var err error
		rot, err = rotator.New(logFile, 32*1024, false, 5)
		if err != nil {
			return nil, fmt.Errorf("failed to create log rotator: %w", err)
		}
	}

	level, ok := slog.LevelFromString(debugLevel)
	if !ok {
		level = slog.LevelInfo
	}

	return &Backend{
		backend: slog.NewBackend(&logWriter{r: rot}),
		rot:     rot,
		level:   level,
		loggers: make(map[string]slog.Logger),
	}, nil
}

// Logger returns the logger for a subsystem tag, creating it on first use.
func (b *Backend) Logger(tag string) slog.Logger {
	b.mu.Lock()
	defer b.mu.Unlock()

	if log, ok := b.loggers[tag]; ok {
		return log
	}
	log := b.backend.Logger(tag)
	log.SetLevel(b.level)
	b.loggers[tag] = log
	return log
}

// Close flushes and closes the rotating log file, if any.
func (b *Backend) Close() error {
	if b.rot != nil {
		return b.rot.Close()
	}
	return nil
}
