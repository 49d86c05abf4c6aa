package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	log *logrus.Logger
}

func New(level string) *Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	return &Logger{log: log}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.log.Infof(msg, args...)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log.Debugf(msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log.Warnf(msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.log.Errorf(msg, args...)
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.log.Fatalf(msg, args...)
}

// WithFields attaches structured context to a log entry, e.g. the natural
// key of a skipped row or the error list returned by the remote API.
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	return l.log.WithFields(logrus.Fields(fields))
}
