// Package logger provides the structured, leveled logger the indexing
// core writes ambient diagnostics through — anomalies silently absorbed
// per spec.md §4.5/§7, cancellation, worker pool lifecycle events — built
// on zap with lumberjack-based file rotation.
package logger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logLevelMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// Logger is the printf-style logging interface every core component
// accepts, so callers can plug in any backend without importing zap.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Fatal(format string, args ...any)
}

type logger struct {
	log   *zap.Logger
	sugar *zap.SugaredLogger
}

// Rotation bounds a rotating log file. The zero value is not usable
// directly — DefaultRotation gives the sizes cxxindex runs with day to
// day; a caller indexing an unusually large monorepo in one process can
// widen MaxSizeMB/MaxAgeDays without recompiling.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultRotation is the rotation policy NewLogger applies when a caller
// passes the zero Rotation.
var DefaultRotation = Rotation{MaxSizeMB: 100, MaxBackups: 0, MaxAgeDays: 5}

// NewLogger creates a Logger that writes JSON lines to both stdout and a
// rotating, date-stamped file under logsDir, tagged with sessionID on
// every line so log output from concurrent cxxindex runs sharing a
// logsDir can be told apart. It returns an error if logsDir is empty or
// cannot be created.
func NewLogger(logsDir, level, sessionID string, rot Rotation) (Logger, error) {
	if logsDir == "" {
		return nil, errors.New("logger: logsDir must not be empty")
	}
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("logger: failed to create log directory %s: %w", logsDir, err)
	}
	if rot == (Rotation{}) {
		rot = DefaultRotation
	}

	currentDate := time.Now().Format("20060102")
	logFileName := filepath.Join(logsDir, fmt.Sprintf("cxxindex-%s.log", currentDate))

	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logFileName,
		MaxSize:    rot.MaxSizeMB,
		MaxBackups: rot.MaxBackups,
		MaxAge:     rot.MaxAgeDays,
		Compress:   true,
		LocalTime:  true,
	})

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000"),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	logLevel, exists := logLevelMap[strings.ToLower(level)]
	if !exists {
		logLevel = zapcore.InfoLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(os.Stdout), logLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, logLevel),
	)

	zapLogger := zap.New(core, zap.AddCaller())
	if sessionID != "" {
		zapLogger = zapLogger.With(zap.String("session", sessionID))
	}
	return &logger{log: zapLogger, sugar: zapLogger.Sugar()}, nil
}

// NewNop returns a Logger that discards everything, for tests and
// library callers that don't want log output.
func NewNop() Logger {
	return &logger{log: zap.NewNop(), sugar: zap.NewNop().Sugar()}
}

func (l *logger) Debug(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l *logger) Info(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *logger) Warn(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l *logger) Error(format string, args ...any) { l.sugar.Errorf(format, args...) }
func (l *logger) Fatal(format string, args ...any) { l.sugar.Fatalf(format, args...) }
