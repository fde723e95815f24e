package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger creates a dual-output logger: text to stderr, JSON to file.
// Returns the logger and a cleanup function to close the file.
func SetupLogger(logFile string, level slog.Level) (*slog.Logger, func() error) {
	return setupLogger(os.Stderr, logFile, level)
}

// SetupQuietLogger logs to the file only. Used while a full-screen
// terminal UI owns stderr.
func SetupQuietLogger(logFile string, level slog.Level) (*slog.Logger, func() error) {
	return setupLogger(io.Discard, logFile, level)
}

func setupLogger(terminal io.Writer, logFile string, level slog.Level) (*slog.Logger, func() error) {
	terminalHandler := slog.NewTextHandler(terminal, &slog.HandlerOptions{Level: level})

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// Fall back to the terminal writer only
		slog.Error("failed to open log file, using stderr only", "error", err, "file", logFile)
		return slog.New(terminalHandler), func() error { return nil }
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	logger := slog.New(slogmulti.Fanout(terminalHandler, fileHandler))

	return logger, file.Close
}

// SetupLoggerWithWriters creates a logger with custom writers (for testing).
func SetupLoggerWithWriters(stderr, file io.Writer, level slog.Level) *slog.Logger {
	stderrHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(stderrHandler, fileHandler))
}
