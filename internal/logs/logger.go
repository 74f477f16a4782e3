package logs

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	Logger  *logrus.Logger
	logFile *os.File
	mu      sync.Mutex
)

// The logger discards output until Initialize points it at a directory;
// the TUI owns the terminal so nothing may go to stderr.
func init() {
	Logger = newLogger(io.Discard)
}

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// Initialize redirects the logger to debug.log inside logDir
func Initialize(logDir string) error {
	mu.Lock()
	defer mu.Unlock()

	if logDir == "" {
		return nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	logPath := filepath.Join(logDir, "debug.log")

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		Logger.WithError(err).Errorf("failed to open log file at %s", logPath)
		return err
	}

	if logFile != nil {
		logFile.Close()
	}

	logFile = f
	Logger.SetOutput(f)

	Logger.Infof("logger initialized at %s", logPath)

	return nil
}

// SetLevel parses and applies a level name such as "info" or "debug"
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}

// Close closes the log file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		Logger.SetOutput(io.Discard)
		return err
	}
	return nil
}
