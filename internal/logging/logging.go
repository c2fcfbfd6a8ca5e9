// Package logging adapts hclog to ptero.Logger.
package logging

import (
	"io"
	"os"
	"sort"

	"github.com/hashicorp/go-hclog"
)

// Options configures New.
type Options struct {
	Name   string
	Level  string
	JSON   bool
	Output io.Writer
}

// Logger implements ptero.Logger on top of an hclog.Logger.
type Logger struct {
	hclog hclog.Logger
}

// New creates a logger. Level defaults to "info" and Output to stderr.
func New(opts Options) *Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	level := hclog.LevelFromString(opts.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}

	return &Logger{hclog: hclog.New(&hclog.LoggerOptions{
		Name:       opts.Name,
		Level:      level,
		Output:     opts.Output,
		JSONFormat: opts.JSON,
	})}
}

// Wrap adapts an existing hclog logger.
func Wrap(logger hclog.Logger) *Logger {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Logger{hclog: logger}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return Wrap(hclog.NewNullLogger())
}

// HCLog returns the underlying logger.
func (l *Logger) HCLog() hclog.Logger {
	return l.hclog
}

func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.hclog.Debug(msg, pairs(fields)...)
}

func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.hclog.Info(msg, pairs(fields)...)
}

func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.hclog.Warn(msg, pairs(fields)...)
}

func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.hclog.Error(msg, pairs(fields)...)
}

// pairs flattens fields into hclog's key/value list in key order.
func pairs(fields map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	args := make([]interface{}, 0, 2*len(keys))
	for _, key := range keys {
		args = append(args, key, fields[key])
	}

	return args
}
