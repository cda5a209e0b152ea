// Package applog provides general-purpose application logging.
//
// Logs are structured (zerolog) and written to ~/.pgstudio/logs/app.log.
// Covers: app start/stop, config changes, connections, store migrations,
// and AI request/response events.
package applog

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

var (
	once    sync.Once
	logFile *os.File
	logger  = zerolog.Nop()
)

func initLog() {
	once.Do(func() {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return
		}
		logDir := filepath.Join(homeDir, ".pgstudio", "logs")
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return
		}
		logPath := filepath.Join(logDir, "app.log")
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return
		}
		logFile = f
		logger = zerolog.New(f).With().Timestamp().Logger()
	})
}

// Info logs a general info message.
func Info(format string, args ...interface{}) {
	initLog()
	logger.Info().Msgf(format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	initLog()
	logger.Error().Msgf(format, args...)
}

// Event logs a structured event with a category.
func Event(category string, format string, args ...interface{}) {
	initLog()
	logger.Info().Str("event", category).Msgf(format, args...)
}

// Close flushes and closes the log file.
func Close() {
	if logFile != nil {
		logFile.Close()
	}
}
