package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// ZapLogger writes gorm's query and driver messages to a zap logger.
// Statements are logged at debug; failures at error and slow queries at warn.
type ZapLogger struct {
	log   *zap.Logger
	level logger.LogLevel
	slow  time.Duration
}

func NewZapLogger(log *zap.Logger, level logger.LogLevel) *ZapLogger {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapLogger{log: log.Named("gorm"), level: level, slow: slowQueryThreshold}
}

func (l *ZapLogger) LogMode(level logger.LogLevel) logger.Interface {
	copied := *l
	copied.level = level
	return &copied
}

func (l *ZapLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.log.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *ZapLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *ZapLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.log.Error(fmt.Sprintf(msg, args...))
	}
}

func (l *ZapLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.Error("query failed",
			zap.Error(err),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", rows),
			zap.String("sql", sql),
		)
	case elapsed > l.slow && l.level >= logger.Warn:
		sql, rows := fc()
		l.log.Warn("slow query",
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", l.slow),
			zap.Int64("rows", rows),
			zap.String("sql", sql),
		)
	case l.level >= logger.Info:
		sql, rows := fc()
		l.log.Debug("query",
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", rows),
			zap.String("sql", sql),
		)
	}
}
