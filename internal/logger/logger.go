// Package logger provides the logging used throughout cmdtree. It wraps a
// single charmbracelet logger that is configured once at start-up; components
// get their own prefixed logger from For.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Logger is the global logger instance.
var Logger *log.Logger

var (
	mu     sync.Mutex
	output io.Writer = os.Stderr
)

func init() {
	Logger = log.New(os.Stderr)
	Logger.SetTimeFormat("")
	Logger.SetLevel(log.InfoLevel)
}

// Configure sets the level and destination of all loggers created after it is
// called. An empty level means "info" and an empty file means stderr. It
// should be called before any component logger is obtained with For.
func Configure(level string, file string) error {
	var w io.Writer = os.Stderr
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		w = f
	}
	return ConfigureWriter(level, w)
}

// ConfigureWriter is Configure but writes to an arbitrary writer.
func ConfigureWriter(level string, w io.Writer) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	output = w
	Logger = log.New(w)
	Logger.SetTimeFormat("2006-01-02 15:04:05")
	Logger.SetLevel(lvl)
	return nil
}

// ParseLevel converts a level name to a log level. The empty string is
// treated as "info".
func ParseLevel(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return log.InfoLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	case "fatal":
		return log.FatalLevel, nil
	default:
		return log.InfoLevel, log.ErrInvalidLevel
	}
}

// For returns a logger for the named component. It shares the destination and
// level of the global logger at the time it is called.
func For(component string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()

	l := log.NewWithOptions(output, log.Options{
		Prefix:          component,
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Level:           Logger.GetLevel(),
	})
	l.SetStyles(componentStyles())
	return l
}

// Discard returns a logger that drops everything. It is meant for tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

func componentStyles() *log.Styles {
	styles := log.DefaultStyles()
	styles.Prefix = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	styles.Keys["command"] = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	styles.Keys["actor"] = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styles.Values["error"] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	return styles
}
