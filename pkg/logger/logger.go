package logger

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Logger
}

// Entry is a structured log entry ready for fields.
type Entry = *logrus.Entry

type ContextKey string

const RequestIDKey ContextKey = "request_id"

func New(level string) *Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// JSON formatter for structured logging
	logger.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	logger.SetOutput(os.Stdout)

	return &Logger{Logger: logger}
}

// WithContext attaches the request ID carried in ctx, when present.
func (l *Logger) WithContext(ctx context.Context) Entry {
	entry := l.Logger.WithContext(ctx)

	if requestID := ctx.Value(RequestIDKey); requestID != nil {
		entry = entry.WithField("request_id", requestID)
	}

	return entry
}

func (l *Logger) WithFields(fields logrus.Fields) Entry {
	return l.Logger.WithFields(fields)
}

func (l *Logger) WithField(key string, value interface{}) Entry {
	return l.Logger.WithField(key, value)
}

func (l *Logger) WithError(err error) Entry {
	return l.Logger.WithError(err)
}
