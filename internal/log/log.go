// Package log provides structured logging for headgaze.
// It wraps logrus with a nested formatter on stderr and a rotating file sink.
package log

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

// Fields is a set of structured log fields.
type Fields = logrus.Fields

// Options controls logger construction.
type Options struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to info.
	Level string
	// Dir receives headgaze.log when set. Ignored when APP_ENV=test.
	Dir string
}

// Init initializes the global logger. Only the first call has an effect.
func Init(opts Options) *logrus.Logger {
	once.Do(func() {
		logger = newLogger(opts)
	})
	return logger
}

func newLogger(opts Options) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(parseLevel(opts.Level))

	l.SetFormatter(&formatter.Formatter{
		NoColors:        false,
		TimestampFormat: "02 Jan 06 - 15:04:05",
		HideKeys:        false,
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			funcName := s[len(s)-1]
			return fmt.Sprintf(" \x1b[%dm[%s:%d][%s()]", 34, path.Base(f.File), f.Line, funcName)
		},
	})

	writers := []io.Writer{os.Stderr}
	if opts.Dir != "" && os.Getenv("APP_ENV") != "test" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, "headgaze.log"),
			LocalTime:  true,
			Compress:   true,
			MaxSize:    20,
			MaxAge:     7,
			MaxBackups: 3,
		})
	}

	l.SetOutput(io.MultiWriter(writers...))
	l.SetReportCaller(true)
	return l
}

func parseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// L returns the global logger, initializing it with defaults if needed.
func L() *logrus.Logger {
	return Init(Options{})
}

func entry(fields Fields) *logrus.Entry {
	if fields == nil {
		fields = Fields{}
	}
	return L().WithFields(fields)
}

// Debug logs at debug level.
func Debug(fields Fields, msg string) {
	entry(fields).Debug(msg)
}

// Info logs at info level.
func Info(fields Fields, msg string) {
	entry(fields).Info(msg)
}

// Warn logs at warn level.
func Warn(fields Fields, msg string) {
	entry(fields).Warn(msg)
}

// Error logs at error level.
func Error(fields Fields, msg string) {
	entry(fields).Error(msg)
}

// Fatal logs at fatal level and exits.
func Fatal(fields Fields, msg string) {
	entry(fields).Fatal(msg)
}
