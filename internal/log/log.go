package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// The TUI owns the terminal, so everything logs to a file. A single
// process-wide logger is shared; components get tagged entries via
// Component.
var root = logrus.New()

func init() {
	// Until Init runs (or if it fails), discard instead of writing
	// over the UI.
	root.SetOutput(io.Discard)
	root.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
		DisableColors:   true,
	})
}

// parseLevel maps a config string to a logrus level, defaulting to
// Info for anything unrecognized.
func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	}
	return logrus.InfoLevel
}

// Init opens (or creates) the log file and configures the shared
// logger. It returns a closer for the file.
func Init(path, level string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}

	root.SetOutput(f)
	root.SetLevel(parseLevel(level))
	return f, nil
}

// SetLevel changes the shared logger's level at runtime.
func SetLevel(level string) {
	root.SetLevel(parseLevel(level))
}

// Component returns a logger entry tagged with the given component
// name ("hyperkitty", "store", "manager", "sync", ...).
func Component(name string) *logrus.Entry {
	return root.WithField("component", name)
}
