package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/entrhq/tangent/pkg/platform"
)

// Logger provides structured logging for bridge components.
// All loggers of one process write to a session-specific file in
// <app-data-dir>/logs/<session-id>-tangent.log.
//
// Logs never go to stdout: stdout belongs to the stdio transport.
type Logger struct {
	sessionID string
	component string
	file      *os.File
	sugar     *zap.SugaredLogger
	logPath   string
	shared    bool // child logger; the parent owns file
	closeOnce sync.Once
}

// Config controls the process-wide logging setup.
type Config struct {
	// Dir overrides the log directory.
	Dir string

	// Level is one of debug, info, warn, error. Defaults to info.
	Level string

	// Format is "json" or "console". Defaults to console.
	Format string
}

type contextKey string

const requestIDKey contextKey = "request_id"

var (
	// Global session ID for the current execution
	sessionID     string
	sessionIDOnce sync.Once

	// logDir is the directory where log files are stored
	logDir string

	// initOnce ensures directory initialization happens once
	initOnce sync.Once

	// initErr stores any error from directory initialization
	initErr error

	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	format = "console"
)

// Configure sets the log directory, level and format. It must be called
// before the first NewLogger to change the directory.
func Configure(cfg Config) error {
	if cfg.Dir != "" {
		logDir = cfg.Dir
	}
	if cfg.Format != "" {
		if cfg.Format != "json" && cfg.Format != "console" {
			return fmt.Errorf("invalid log format %q (must be 'json' or 'console')", cfg.Format)
		}
		format = cfg.Format
	}
	if cfg.Level != "" {
		return SetLevel(cfg.Level)
	}
	return nil
}

// SetLevel changes the level of every logger at runtime.
func SetLevel(name string) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	level.SetLevel(l)
	return nil
}

// getSessionID returns or creates the session ID for this execution
func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// initLogDirectory ensures the log directory exists
func initLogDirectory() error {
	initOnce.Do(func() {
		if logDir == "" {
			appData, err := platform.NewResolver("").AppDataDir()
			if err != nil {
				initErr = fmt.Errorf("failed to resolve log directory: %w", err)
				return
			}
			logDir = filepath.Join(appData, "logs")
		}

		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}
	})
	return initErr
}

// NewLogger creates a new logger for a specific component.
//
// If the log directory cannot be created or the log file cannot be opened,
// it returns a fallback logger that writes to stderr along with the error.
func NewLogger(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(component, err), err
	}

	sessID := getSessionID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s-tangent.log", sessID))

	// Append mode: every component of the session shares the file.
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return newFallbackLogger(component, err), err
	}

	return &Logger{
		sessionID: sessID,
		component: component,
		file:      file,
		sugar:     newSugar(file, component, sessID),
		logPath:   logPath,
	}, nil
}

// newFallbackLogger creates a logger that writes to stderr when file logging fails
func newFallbackLogger(component string, err error) *Logger {
	sessID := getSessionID()
	sugar := newSugar(os.Stderr, component, sessID)
	sugar.Warnw("failed to initialize file logging, falling back to stderr", "error", err)

	return &Logger{
		sessionID: sessID,
		component: component,
		sugar:     sugar,
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func newSugar(w io.Writer, component, sessID string) *zap.SugaredLogger {
	var encoder zapcore.Encoder
	if format == "json" {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(core).
		Named(component).
		With(zap.String("session_id", sessID)).
		Sugar()
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// With returns a child logger carrying the given key/value pairs.
// The child shares the parent's file; closing it is a no-op.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{
		sessionID: l.sessionID,
		component: l.component,
		file:      l.file,
		sugar:     l.sugar.With(keysAndValues...),
		logPath:   l.logPath,
		shared:    true,
	}
}

// WithContext returns a child logger tagged with the request ID stored in ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if id := RequestID(ctx); id != "" {
		return l.With("request_id", id)
	}
	return l
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// LogPath returns the path to the log file
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil && !l.shared {
			_ = l.sugar.Sync()
			err = l.file.Close()
		}
	})
	return err
}

// WithRequestID stores a request ID in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// NewRequestID generates a fresh request ID.
func NewRequestID() string {
	return uuid.NewString()
}

// RequestID returns the request ID stored in ctx.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetLogDirectory returns the directory where logs are stored
func GetLogDirectory() (string, error) {
	if err := initLogDirectory(); err != nil {
		return "", err
	}
	return logDir, nil
}
