// Package logx is the firmware's structured logger: log/slog with a
// component attribute on every record and a swappable sink.
package logx

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"tinygo.org/x/drivers"
)

// Component identifies a subsystem for log filtering.
type Component string

const (
	ComponentPort     Component = "port"
	ComponentLamps    Component = "lamps"
	ComponentMCO      Component = "mco"
	ComponentProgram  Component = "program"
	ComponentPlatform Component = "platform"
)

var (
	defaultLogger *slog.Logger
	logLevel      = new(slog.LevelVar)
	logMutex      sync.RWMutex
)

func init() {
	logLevel.Set(slog.LevelInfo)
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

func SetLogLevel(level slog.Level) {
	logMutex.Lock()
	defer logMutex.Unlock()
	logLevel.Set(level)
}

func GetLogLevel() slog.Level {
	logMutex.RLock()
	defer logMutex.RUnlock()
	return logLevel.Level()
}

// SetLogger replaces the default logger. A nil logger restores stderr output.
func SetLogger(logger *slog.Logger) {
	logMutex.Lock()
	defer logMutex.Unlock()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	}
	defaultLogger = logger
}

// SetOutput points the default logger at w, keeping the shared level.
func SetOutput(w io.Writer) {
	SetLogger(NewLogger(w, nil))
}

// NewLogger creates a text logger writing to w. With nil opts the logger
// follows the package level set by SetLogLevel.
func NewLogger(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	if opts == nil {
		opts = &slog.HandlerOptions{Level: logLevel}
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func logger() *slog.Logger {
	logMutex.RLock()
	defer logMutex.RUnlock()
	return defaultLogger
}

func LogDebug(component Component, msg string, args ...any) {
	logger().Debug(msg, append([]any{"component", string(component)}, args...)...)
}

func LogInfo(component Component, msg string, args ...any) {
	logger().Info(msg, append([]any{"component", string(component)}, args...)...)
}

func LogWarn(component Component, msg string, args ...any) {
	logger().Warn(msg, append([]any{"component", string(component)}, args...)...)
}

func LogError(component Component, msg string, args ...any) {
	logger().Error(msg, append([]any{"component", string(component)}, args...)...)
}

// UARTWriter adapts a board UART to io.Writer for the log sink. Writes are
// best effort: a short write is reported, never retried.
type UARTWriter struct {
	U drivers.UART
}

func (w UARTWriter) Write(p []byte) (int, error) {
	if w.U == nil {
		return len(p), nil
	}
	return w.U.Write(p)
}

// DriversVersion is logged in the boot banner for support purposes.
func DriversVersion() string { return drivers.Version }
