package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/coder/quartz"
	"github.com/fadedpez/twentyone/internal/types"
)

// Level represents a logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// String returns the level name
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel converts a level name such as "debug" or "WARN" into a Level
func ParseLevel(name string) (Level, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == "WARNING" {
		upper = "WARN"
	}
	for level, levelName := range levelNames {
		if levelName == upper {
			return level, nil
		}
	}
	return INFO, fmt.Errorf("unknown log level %q", name)
}

// Logger is a leveled logger that prefixes every line with a timestamp, the
// level and the calling file
type Logger struct {
	*log.Logger
	level Level
	clock quartz.Clock
}

// NewLogger creates a new logger instance writing to stdout
func NewLogger(level Level) *Logger {
	return NewLoggerWithWriter(os.Stdout, level)
}

// NewLoggerWithWriter creates a logger writing to w
func NewLoggerWithWriter(w io.Writer, level Level) *Logger {
	return &Logger{
		Logger: log.New(w, "", 0),
		level:  level,
		clock:  quartz.NewReal(),
	}
}

func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) SetLevel(level Level) {
	l.level = level
}

// SetClock replaces the clock used for timestamps
func (l *Logger) SetClock(clock quartz.Clock) {
	if clock != nil {
		l.clock = clock
	}
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.logf(DEBUG, format, v...)
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.logf(INFO, format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.logf(WARN, format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.logf(ERROR, format, v...)
}

// logf must be called directly from the exported level methods so that the
// caller lookup lands on the user's call site
func (l *Logger) logf(level Level, format string, v ...interface{}) {
	if level < l.level {
		return
	}

	caller := "unknown"
	if _, file, line, ok := runtime.Caller(2); ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	l.Print(fmt.Sprintf("[%s] %-5s %s: %s",
		l.clock.Now().Format("2006-01-02 15:04:05.000"),
		level,
		caller,
		fmt.Sprintf(format, v...),
	))
}

// LogError logs err at ERROR, spelling out the code and cause of a GameError
func (l *Logger) LogError(err error) {
	var gameErr *types.GameError
	if !types.As(err, &gameErr) {
		l.logf(ERROR, "Unexpected error: %v", err)
		return
	}

	fields := []string{
		"Code: " + string(gameErr.Code),
		"Message: " + gameErr.Message,
	}
	if gameErr.Err != nil {
		fields = append(fields, fmt.Sprintf("Cause: %v", gameErr.Err))
	}
	l.logf(ERROR, "Game error occurred: %s", strings.Join(fields, ", "))
}

// Default logger instance
var Default = NewLogger(INFO)
