package gorm

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// LogWriter forwards GORM's printf-style output to zap
type LogWriter struct {
	logger *zap.Logger
}

// Printf implements gormlogger.Writer
func (w *LogWriter) Printf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	switch {
	case strings.Contains(msg, "SLOW SQL"):
		w.logger.Warn("Slow query", zap.String("message", msg))
	case strings.Contains(msg, "Error"), strings.Contains(msg, "ERROR"):
		w.logger.Error("Query error", zap.String("message", msg))
	default:
		w.logger.Debug("Query", zap.String("message", msg))
	}
}

// NewLogger builds a GORM logger backed by zap. level follows the
// application log levels: debug logs every statement, info and warn log
// slow queries and errors, anything else logs errors only.
func NewLogger(logger *zap.Logger, level string, slowThreshold time.Duration) gormlogger.Interface {
	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}

	return gormlogger.New(
		&LogWriter{logger: logger.Named("gorm")},
		gormlogger.Config{
			SlowThreshold:             slowThreshold,
			LogLevel:                  logLevel(level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func logLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return gormlogger.Info
	case "info", "warn":
		return gormlogger.Warn
	case "silent":
		return gormlogger.Silent
	default:
		return gormlogger.Error
	}
}
