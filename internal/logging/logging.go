package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// LevelEnv names the environment variable that overrides the log level.
const LevelEnv = "COMBO_LOG_LEVEL"

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
	output    io.Writer = io.Discard
)

// SetOutput directs every logger, existing and future, to w. A terminal UI
// owns stdout, so the program points this at a file.
func SetOutput(w io.Writer) {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	output = w
	for _, entry := range loggers {
		entry.Logger.SetOutput(w)
	}
}

// OpenFile opens (or creates) the log file at path and directs every logger to
// it. The returned io.Closer must be closed when the program exits.
func OpenFile(path string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	SetOutput(f)
	return f, nil
}

// NewLogger returns the logger for the given component, creating it on first
// use.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if entry, ok := loggers[component]; ok {
		return entry
	}

	logger := logrus.New()
	logger.SetOutput(output)
	logger.SetLevel(level())
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// level returns the level named by LevelEnv, or info.
func level() logrus.Level {
	l, err := logrus.ParseLevel(os.Getenv(LevelEnv))
	if err != nil {
		return logrus.InfoLevel
	}
	return l
}
