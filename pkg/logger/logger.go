
package logger

import (
	"fmt"
	"log"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]Level{
	"debug": LevelDebug,
	"info":  LevelInfo,
	"warn":  LevelWarn,
	"error": LevelError,
}

// ParseLevel accepts debug, info, warn or error in any case.
func ParseLevel(s string) (Level, error) {
	lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

type Logger struct {
	min Level
	out *log.Logger
}

func New() *Logger { return &Logger{min: LevelInfo, out: log.Default()} }

// WithLevel returns a copy of l that drops messages below min.
func (l *Logger) WithLevel(min Level) *Logger {
	return &Logger{min: min, out: l.out}
}

// WithOutput returns a copy of l writing through out.
func (l *Logger) WithOutput(out *log.Logger) *Logger {
	return &Logger{min: l.min, out: out}
}

func (l *Logger) logf(lvl Level, prefix, format string, args ...any) {
	if lvl < l.min {
		return
	}
	l.out.Printf(prefix+format, args...)
}

func (l *Logger) Debugf(format string, args ...any) {
	l.logf(LevelDebug, "[DEBUG] ", format, args...)
}
func (l *Logger) Infof(format string, args ...any) {
	l.logf(LevelInfo, "[INFO] ", format, args...)
}
func (l *Logger) Warnf(format string, args ...any) {
	l.logf(LevelWarn, "[WARN] ", format, args...)
}
func (l *Logger) Errorf(format string, args ...any) {
	l.logf(LevelError, "[ERROR] ", format, args...)
}
