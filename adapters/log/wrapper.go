package log

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/helpers"
	"github.com/abhissng/synapse/utils/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity level of a log message.
type LogLevel string

const (
	// DebugLevel is the lowest severity level, used for detailed debugging information.
	DebugLevel LogLevel = "debug"
	// InfoLevel is used for general informational messages.
	InfoLevel LogLevel = "info"
	// WarnLevel is used for warnings and potential problems.
	WarnLevel LogLevel = "warn"
	// ErrorLevel is used for errors that have occurred.
	ErrorLevel LogLevel = "error"
	// FatalLevel is the highest severity level, used for critical errors that result in program termination.
	FatalLevel LogLevel = "fatal"
)

// Helper functions to create fields without directly using zap

// String creates a single types.Field (string) for a given key-value pair.
func String(key string, value string) types.Field {
	return zap.String(key, value)
}

// Int creates a single types.Field (int) for a given key-value pair.
func Int(key string, value int) types.Field {
	return zap.Int(key, value)
}

// Int64 creates a single types.Field (int64) for a given key-value pair.
func Int64(key string, value int64) types.Field {
	return zap.Int64(key, value)
}

// Bool creates a single types.Field (bool) for a given key-value pair.
func Bool(key string, value bool) types.Field {
	return zap.Bool(key, value)
}

// Time creates a single types.Field (time.Time) for a given key-value pair.
func Time(key string, value time.Time) types.Field {
	return zap.Time(key, value)
}

// Duration creates a single types.Field (time.Duration) for a given key-value pair.
func Duration(key string, value time.Duration) types.Field {
	return zap.Duration(key, value)
}

// Any creates a single types.Field (any) for a given key-value pair.
func Any(key string, value any) types.Field {
	return zap.Any(key, value)
}

// Err creates a single types.Field (error) for a given error.
func Err(err error) types.Field {
	return zap.Error(err)
}

// Stringer creates a single types.Field (fmt.Stringer) for a given key-value pair.
func Stringer(key string, value fmt.Stringer) types.Field {
	return zap.Stringer(key, value)
}

type errorArray []error

func (a errorArray) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, e := range a {
		if e == nil {
			enc.AppendString("<nil>")
		} else {
			enc.AppendString(e.Error())
		}
	}
	return nil
}

type blameObject struct {
	b blame.Blame
}

func (o blameObject) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("code", o.b.FetchErrCode().String())
	enc.AddInt("status", o.b.FetchStatusCode())
	msg, _ := o.b.Translate()
	if msg != "" {
		enc.AddString("message", msg)
	}
	if cs := o.b.FetchCauses(); len(cs) > 0 {
		return enc.AddArray("causes", errorArray(cs))
	}
	return nil
}

// Blame creates a structured field with the code, status, message and causes of b.
func Blame(b blame.Blame) zap.Field {
	if b == nil {
		return zap.Skip()
	}
	return zap.Object("blame", blameObject{b: b})
}

// ParseLevel maps a config string to a LogLevel, defaulting by environment.
func ParseLevel(level string, isProd bool) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(level))) {
	case DebugLevel:
		return DebugLevel
	case InfoLevel:
		return InfoLevel
	case WarnLevel:
		return WarnLevel
	case ErrorLevel:
		return ErrorLevel
	case FatalLevel:
		return FatalLevel
	}
	return defaultLevel(isProd)
}

func defaultLevel(isProd bool) LogLevel {
	if isProd {
		return InfoLevel
	}
	return DebugLevel
}

// getZapLevel converts our LogLevel to zap.Level
func getZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// FileConfig describes a rotated log file.
type FileConfig struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type LoggerConfig struct {
	// IsProd enables production mode (JSON output, Info level)
	IsProd bool

	// Level overrides the level implied by IsProd
	Level LogLevel

	// File enables a rotated JSON log file next to stdout
	File *FileConfig

	// ServiceName overrides the default service name
	ServiceName string

	// Environment overrides the default environment
	Environment string

	// EncoderTailLength overrides the default encoder tail length
	EncoderTailLength int
}

// LoggerOption defines a function that modifies LoggerConfig
type LoggerOption func(*LoggerConfig)

// NewLoggerConfig creates a new LoggerConfig with default values
func NewLoggerConfig(isProd bool, opts ...LoggerOption) *LoggerConfig {
	cfg := &LoggerConfig{
		ServiceName: helpers.GetServiceName(),
		Environment: helpers.GetEnvironment(),
		IsProd:      isProd,
		Level:       defaultLevel(isProd),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// WithServiceName sets the service name
func WithServiceName(name string) LoggerOption {
	return func(c *LoggerConfig) {
		if name != "" {
			c.ServiceName = name
		}
	}
}

// WithEnvironment sets the environment
func WithEnvironment(env string) LoggerOption {
	return func(c *LoggerConfig) {
		if env != "" {
			c.Environment = env
		}
	}
}

// WithLevel sets the minimum level
func WithLevel(level LogLevel) LoggerOption {
	return func(c *LoggerConfig) {
		if level != "" {
			c.Level = level
		}
	}
}

// WithLogFile writes a rotated copy of every entry to filename.
func WithLogFile(filename string, maxSizeMB, maxBackups, maxAgeDays int) LoggerOption {
	return func(c *LoggerConfig) {
		if strings.TrimSpace(filename) == "" {
			return
		}
		c.File = &FileConfig{
			Filename:   filename,
			MaxSizeMB:  maxSizeMB,
			MaxBackups: maxBackups,
			MaxAgeDays: maxAgeDays,
			Compress:   true,
		}
	}
}

// WithEncoderTailLength sets the encoder tail length
func WithEncoderTailLength(length int) LoggerOption {
	return func(c *LoggerConfig) {
		if length > 0 {
			// Values <= 2 don't provide meaningful context beyond short encoder
			if length <= 2 {
				length = 0
			}
			if length > 7 {
				length = 7
			}
			c.EncoderTailLength = length
		}
	}
}
