// Package logger is staffbook's structured logger: a small facade over zap
// with the field helpers the domain logs with.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a zap level under staffbook's names.
type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

var levelNames = map[string]Level{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

// ParseLevel is case-insensitive and falls back to info.
func ParseLevel(s string) Level {
	if l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l
	}
	return LevelInfo
}

// Options configures New. Format is "console" or anything else for JSON.
type Options struct {
	Output    io.Writer
	Level     Level
	Format    string
	AddCaller bool
}

// Logger wraps a zap logger.
type Logger struct {
	z *zap.Logger
}

// New builds a logger writing to opts.Output, stderr when nil.
func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey, ec.MessageKey = "timestamp", "message"
	ec.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	enc := zapcore.NewJSONEncoder(ec)
	if strings.EqualFold(opts.Format, "console") {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	}

	var zo []zap.Option
	if opts.AddCaller {
		zo = append(zo, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	return &Logger{z: zap.New(zapcore.NewCore(enc, zapcore.AddSync(out), opts.Level), zo...)}
}

// Nop discards everything.
func Nop() *Logger { return &Logger{z: zap.NewNop()} }

// With returns a child logger carrying fields on every entry.
func (l *Logger) With(fields ...Field) *Logger { return &Logger{z: l.z.With(fields...)} }

func (l *Logger) Debug(msg string, fields ...Field) { l.z.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.z.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.z.Error(msg, fields...) }

// Sync flushes buffered entries.
func (l *Logger) Sync() error { return l.z.Sync() }

// ══════════════════════════════════════════════════════════════════════════════
// FIELDS
// ══════════════════════════════════════════════════════════════════════════════

type Field = zap.Field

func String(key, value string) Field          { return zap.String(key, value) }
func Int(key string, value int) Field         { return zap.Int(key, value) }
func Float64(key string, value float64) Field { return zap.Float64(key, value) }
func Bool(key string, value bool) Field       { return zap.Bool(key, value) }
func Any(key string, value any) Field         { return zap.Any(key, value) }

// Err is skipped for a nil error.
func Err(err error) Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.String("error", err.Error())
}

// Duration and Time render as strings so console and JSON output agree.
func Duration(key string, d time.Duration) Field { return zap.String(key, d.String()) }
func Time(key string, t time.Time) Field         { return zap.String(key, t.Format(time.RFC3339)) }

// Domain fields.
func StaffID(id string) Field       { return String("staff_id", id) }
func StaffKind(kind string) Field   { return String("staff_kind", kind) }
func Fullname(name string) Field    { return String("fullname", name) }
func Pay(pay int) Field             { return Int("pay", pay) }
func RaiseRate(rate float64) Field  { return Float64("raise_rate", rate) }
func EventType(name string) Field   { return String("event_type", name) }
func Component(name string) Field   { return String("component", name) }
func Latency(d time.Duration) Field { return Duration("latency", d) }
