package slogobs

import (
	"log/slog"
	"os"
	"strings"
)

// ParseLogLevel parses a level string (case-insensitive; "WARNING" accepted
// as an alias for "WARN"). Unrecognized input returns slog.LevelInfo.
func ParseLogLevel(s string) slog.Level {
	s = strings.TrimSpace(strings.ToUpper(s))
	switch s {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLogLevelFromEnv reads the log level from LLMSTREAM_LOG_LEVEL first,
// falling back to LOG_LEVEL, defaulting to slog.LevelInfo if neither is set.
func GetLogLevelFromEnv() slog.Level {
	if level := os.Getenv("LLMSTREAM_LOG_LEVEL"); level != "" {
		return ParseLogLevel(level)
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return ParseLogLevel(level)
	}
	return slog.LevelInfo
}

// LogLevelString returns the canonical uppercase name for level, or "INFO"
// for any value outside the four standard levels.
func LogLevelString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}
