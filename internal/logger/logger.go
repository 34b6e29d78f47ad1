package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the structured logger handed out by this package.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger
}

type entry struct {
	*logrus.Entry
}

func (e entry) WithField(key string, value interface{}) Logger {
	return entry{e.Entry.WithField(key, value)}
}

func (e entry) WithFields(fields map[string]interface{}) Logger {
	return entry{e.Entry.WithFields(logrus.Fields(fields))}
}

func (e entry) WithError(err error) Logger {
	return entry{e.Entry.WithError(err)}
}

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Options controls the package logger.
type Options struct {
	Level   string
	Format  string
	Debug   bool
	Verbose bool
	Silent  bool
	Output  io.Writer
}

// Configure applies opts to the package logger. Flags win over Level:
// --verbose shows debug, --debug shows info, --silent hides everything
// below error.
func Configure(opts Options) {
	level := logrus.WarnLevel
	if opts.Level != "" {
		if parsed, err := logrus.ParseLevel(opts.Level); err == nil {
			level = parsed
		}
	}

	switch {
	case opts.Silent:
		level = logrus.ErrorLevel
	case opts.Verbose:
		level = logrus.DebugLevel
	case opts.Debug:
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	switch strings.ToLower(opts.Format) {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{})
	default:
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if opts.Output != nil {
		base.SetOutput(opts.Output)
	}
}

// Level reports the active level name.
func Level() string {
	return base.GetLevel().String()
}

func WithField(key string, value interface{}) Logger {
	return entry{base.WithField(key, value)}
}

func WithFields(fields map[string]interface{}) Logger {
	return entry{base.WithFields(logrus.Fields(fields))}
}

func WithError(err error) Logger {
	return entry{base.WithError(err)}
}

func Debug(args ...interface{}) { base.Debug(args...) }
func Info(args ...interface{})  { base.Info(args...) }
func Warn(args ...interface{})  { base.Warn(args...) }
func Error(args ...interface{}) { base.Error(args...) }

func Debugf(format string, args ...interface{}) { base.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { base.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { base.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { base.Errorf(format, args...) }
