package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

type Logger struct {
	service string
	sl      *slog.Logger
}

func New(service string) *Logger { return NewWithWriter(service, os.Stdout) }

// NewWithWriter builds a JSON logger writing to w.
func NewWithWriter(service string, w io.Writer) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	sl := slog.New(h).With("service", service, "hostname", hostname())
	return &Logger{service: service, sl: sl}
}

// Named returns a logger for another service sharing the same output.
func (l *Logger) Named(service string) *Logger {
	return &Logger{service: service, sl: l.sl.With("component", service)}
}

func (l *Logger) log(level slog.Level, action string, fields map[string]any, err error) {
	args := make([]any, 0, 2*len(fields)+4)
	args = append(args, "action", action)
	for k, v := range fields {
		args = append(args, k, v)
	}
	if err != nil {
		args = append(args, slog.Group("error", "msg", err.Error(), "type", fmt.Sprintf("%T", err)))
	}
	l.sl.Log(context.Background(), level, action, args...)
}

func (l *Logger) Info(action string, fields map[string]any) {
	l.log(slog.LevelInfo, action, fields, nil)
}
func (l *Logger) Debug(action string, fields map[string]any) {
	l.log(slog.LevelDebug, action, fields, nil)
}
func (l *Logger) Warn(action string, err error, fields map[string]any) {
	l.log(slog.LevelWarn, action, fields, err)
}
func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.log(slog.LevelError, action, fields, err)
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *Logger { return NewWithWriter("test", io.Discard) }

func hostname() string { h, _ := os.Hostname(); return h }
