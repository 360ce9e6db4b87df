package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

type Level logrus.Level

const (
	WarnLevel  = Level(logrus.WarnLevel)
	DebugLevel = Level(logrus.DebugLevel)
)

var logger = logrus.New()

func init() {
	logger.Formatter = &logrus.TextFormatter{
		DisableLevelTruncation: true,
		PadLevelText:           true,
		TimestampFormat:        "2006/01/02 15:04:05",
		FullTimestamp:          true,
	}
}

func SetLevel(level Level) {
	logger.SetLevel(logrus.Level(level))
}

// SetOutput redirects the logger, mostly so tests can keep quiet.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// WithFields starts an entry carrying structured context, e.g. the request id of a remote call.
func WithFields(fields map[string]any) *logrus.Entry {
	return logger.WithFields(logrus.Fields(fields))
}

func Log(level Level, args ...any) {
	logger.Logln(logrus.Level(level), args...)
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func Info(args ...any) {
	logger.Infoln(args...)
}

func Warnf(format string, args ...any) {
	logger.Warnf(format, args...)
}
func Warn(args ...any) {
	logger.Warnln(args...)
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}
func Error(args ...any) {
	logger.Errorln(args...)
}

func Fatal(args ...any) {
	logger.Fatalln(args...)
}
