package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lshan99q/epub-converter/pkg/utils"
)

// LogLevel represents different log levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger provides structured logging functionality
type Logger struct {
	level   LogLevel
	verbose bool
	zl      zerolog.Logger
	out     io.Writer
}

// NewLogger creates a new logger with specified level and verbose mode
func NewLogger(level string, verbose bool) *Logger {
	return NewLoggerWithWriter(os.Stderr, level, verbose)
}

// NewLoggerWithWriter creates a logger that writes log lines and progress lines to w
func NewLoggerWithWriter(w io.Writer, level string, verbose bool) *Logger {
	lvl := parseLogLevel(level)
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05", NoColor: !utils.IsTerminal(w)}).
		With().Timestamp().Logger().
		Level(toZerologLevel(lvl))

	return &Logger{
		level:   lvl,
		verbose: verbose,
		zl:      zl,
		out:     w,
	}
}

// NewFileLogger creates a logger that also appends log lines to the given file
func NewFileLogger(level string, verbose bool, file string) (*Logger, error) {
	if file == "" {
		return NewLogger(level, verbose), nil
	}

	fileWriter, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	return NewLoggerWithWriter(io.MultiWriter(os.Stderr, fileWriter), level, verbose), nil
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{
		level: LevelError + 1,
		zl:    zerolog.Nop(),
		out:   io.Discard,
	}
}

// With returns a child logger that attaches key=value to every log line
func (l *Logger) With(key, value string) *Logger {
	child := *l
	child.zl = l.zl.With().Str(key, value).Logger()
	return &child
}

// Debug logs debug information (only in debug mode)
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level <= LevelDebug {
		l.zl.Debug().Msgf(format, args...)
	}
}

// Info logs informational messages (only in verbose mode)
func (l *Logger) Info(format string, args ...interface{}) {
	if l.verbose && l.level <= LevelInfo {
		l.zl.Info().Msgf(format, args...)
	}
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level <= LevelWarn {
		l.zl.Warn().Msgf(format, args...)
	}
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	if l.level <= LevelError {
		l.zl.Error().Msgf(format, args...)
	}
}

// ProgressAlways logs critical progress information that should always be shown
// This is for important milestones that users should see regardless of verbose mode
func (l *Logger) ProgressAlways(emoji, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.out, "%s %s\n", emoji, message)
}

// Progress logs detailed progress information (only in verbose mode)
func (l *Logger) Progress(emoji, format string, args ...interface{}) {
	if l.verbose {
		message := fmt.Sprintf(format, args...)
		fmt.Fprintf(l.out, "%s %s\n", emoji, message)
	}
}

// IsVerbose reports whether verbose output is enabled
func (l *Logger) IsVerbose() bool {
	return l.verbose
}

// parseLogLevel converts string level to LogLevel
func parseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func toZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
