package log

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/helpers"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log struct holds the zap Logger instance.
type Log struct {
	*zap.Logger
	closeLog func() error // flushes and closes extra sinks
}

// NewBasicLogger creates a logger with the default configuration, used where no logger was supplied.
func NewBasicLogger(isProd bool) *Log {
	basicLogger, err := NewLogger(NewLoggerConfig(isProd))
	if err != nil {
		helpers.Println(constant.ERROR, "failed to build logger, falling back to zap production: ", err)
		return &Log{Logger: zap.Must(zap.NewProduction())}
	}
	return basicLogger
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Log {
	return &Log{Logger: zap.NewNop()}
}

// NewLogger creates a new Log instance from cfg.
func NewLogger(cfg *LoggerConfig) (*Log, error) {
	atomicLevel := zap.NewAtomicLevel()
	atomicLevel.SetLevel(getZapLevel(cfg.Level))

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "time",
		LevelKey:      "level",
		NameKey:       "log",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		EncodeLevel: func() zapcore.LevelEncoder {
			if cfg.IsProd {
				return zapcore.CapitalLevelEncoder
			}
			return zapcore.CapitalColorLevelEncoder
		}(),
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeCaller:   helpers.TailCallerEncoder(cfg.EncoderTailLength),
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	options := []zap.Option{
		zap.Fields(
			zap.String("environment", cfg.Environment),
			zap.String("service", cfg.ServiceName),
		),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
	}

	var encoder zapcore.Encoder
	if cfg.IsProd {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), atomicLevel)}

	var closeFunc func() error
	if cfg.File != nil {
		fileSink, closer, err := getLumberjackLogger(cfg.File)
		if err != nil {
			return nil, err
		}
		// rotated files are always JSON so they can be shipped as is
		fileEncoderConfig := encoderConfig
		fileEncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), fileSink, atomicLevel))
		closeFunc = closer
	}

	l := zap.New(zapcore.NewTee(cores...), options...)
	return &Log{Logger: l, closeLog: closeFunc}, nil
}

// Debug logs a message at the DebugLevel.
func (l *Log) Debug(msg string, fields ...zap.Field) {
	l.Logger.Debug(msg, fields...)
}

// Info logs a message at the InfoLevel.
func (l *Log) Info(msg string, fields ...zap.Field) {
	l.Logger.Info(msg, fields...)
}

// Warn logs a message at the WarnLevel.
func (l *Log) Warn(msg string, fields ...zap.Field) {
	l.Logger.Warn(msg, fields...)
}

// Error logs a message at the ErrorLevel.
func (l *Log) Error(msg string, fields ...zap.Field) {
	l.Logger.Error(msg, fields...)
}

// Fatal logs a message at the FatalLevel and then exits the program.
func (l *Log) Fatal(msg string, fields ...zap.Field) {
	l.Logger.Fatal(msg, fields...)
}

// With creates a child Log with the specified fields.
func (l *Log) With(fields ...zap.Field) *Log {
	return &Log{Logger: l.Logger.With(fields...)}
}

// Named creates a child Log with the given name segment.
func (l *Log) Named(name string) *Log {
	return &Log{Logger: l.Logger.Named(name)}
}

// Sync flushes any buffered log entries. Applications should take care to call
// Sync before exiting.
func (l *Log) Sync() error {
	err := l.Logger.Sync()

	if l.closeLog != nil {
		if closeErr := l.closeLog(); closeErr != nil {
			if err != nil {
				return fmt.Errorf("zap sync error: %w; file close error: %v", err, closeErr)
			}
			return closeErr
		}
	}
	return err
}

// getLumberjackLogger returns a rotating file sink for cfg.
func getLumberjackLogger(cfg *FileConfig) (zapcore.WriteSyncer, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Filename), 0o750); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	lumberjackLogger := &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	return zapcore.AddSync(lumberjackLogger), lumberjackLogger.Close, nil
}
