package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name   string
	sugar  *zap.SugaredLogger
	config interface{}
}

// Settings is implemented by configurations that carry log level and file.
type Settings interface {
	LogSettings() (level string, file string)
}

var (
	rootMu    sync.Mutex
	root      *zap.Logger
	rootLevel string
	rootFile  string
)

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. The first config carrying log
// settings configures the shared zap core; later loggers reuse it.
func NewLogger(config interface{}, name string) *Logger {
	level, file := "", ""
	if s, ok := config.(Settings); ok && s != nil {
		level, file = s.LogSettings()
	}
	return &Logger{
		name:   name,
		sugar:  rootLogger(level, file).Named(name).Sugar(),
		config: config,
	}
}

// -----------------------------------------------------------------------------

func rootLogger(level, file string) *zap.Logger {
	rootMu.Lock()
	defer rootMu.Unlock()

	if root != nil && (level == "" || (level == rootLevel && file == rootFile)) {
		return root
	}
	root = build(level, file)
	rootLevel, rootFile = level, file
	return root
}

// -----------------------------------------------------------------------------

func build(level, file string) *zap.Logger {
	lvl := parseLevel(level)

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), lvl),
	}

	if file != "" {
		rotated := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    20, // MB
			MaxBackups: 5,
			MaxAge:     28, // days
			LocalTime:  true,
		}
		jsonCfg := zap.NewProductionEncoderConfig()
		jsonCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), zapcore.AddSync(rotated), lvl))
	}

	return zap.New(zapcore.NewTee(cores...))
}

// -----------------------------------------------------------------------------

func parseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARNING", "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// -----------------------------------------------------------------------------

// Name returns the component name this logger was created with
func (l *Logger) Name() string {
	return l.name
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.sugar.Errorf("CRITICAL: %s", fmt.Sprintf(format, args...))
	_ = l.sugar.Sync()
	os.Exit(1)
}

// -----------------------------------------------------------------------------

// Sync flushes buffered entries
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}
