package zerologobs

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Option is a functional option for configuring an Observer.
type Option func(*config)

type config struct {
	level  zerolog.Level
	output io.Writer
	pretty bool
	colors bool
	logger *zerolog.Logger // if set, used directly, bypassing format/level/output/colors
}

// WithLevel sets the minimum log level.
func WithLevel(level zerolog.Level) Option {
	return func(c *config) { c.level = level }
}

// WithOutput sets the destination writer for logs.
func WithOutput(output io.Writer) Option {
	return func(c *config) { c.output = output }
}

// WithPretty enables zerolog's human-readable console writer instead of raw
// JSON lines.
func WithPretty(enabled bool) Option {
	return func(c *config) { c.pretty = enabled }
}

// WithColors enables or disables ANSI color codes. Only applies when
// WithPretty is also set.
func WithColors(enabled bool) Option {
	return func(c *config) { c.colors = enabled }
}

// WithLogger uses an existing zerolog.Logger instead of building one from
// the other options.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) { c.logger = &logger }
}

func defaultConfig() *config {
	return &config{
		level:  getLevelFromEnv(),
		output: os.Stdout,
		pretty: false,
		colors: false,
	}
}

func applyOptions(opts ...Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// getLevelFromEnv mirrors slogobs.GetLogLevelFromEnv's precedence
// (LLMSTREAM_LOG_LEVEL, then LOG_LEVEL, defaulting to info), translated
// onto zerolog's level type.
func getLevelFromEnv() zerolog.Level {
	if level := os.Getenv("LLMSTREAM_LOG_LEVEL"); level != "" {
		return parseLevel(level)
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return parseLevel(level)
	}
	return zerolog.InfoLevel
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "TRACE":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}
