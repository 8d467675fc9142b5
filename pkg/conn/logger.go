package conn

import (
	"context"
	"errors"
	"time"

	"github.com/yanun0323/logs"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// Logger routes gorm logs to the process logger.
type Logger struct {
	level     gormlogger.LogLevel
	slowQuery time.Duration
}

// NewLogger creates a gorm logger that reports errors and slow queries.
func NewLogger(slowQuery time.Duration) *Logger {
	if slowQuery <= 0 {
		slowQuery = defaultSlowQuery
	}
	return &Logger{level: gormlogger.Warn, slowQuery: slowQuery}
}

func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.level = level
	return &next
}

func (l *Logger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		logs.Infof("gorm: "+msg, args...)
	}
}

func (l *Logger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		logs.Warnf("gorm: "+msg, args...)
	}
}

func (l *Logger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		logs.Errorf("gorm: "+msg, args...)
	}
}

func (l *Logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error &&
		!errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, gorm.ErrDuplicatedKey):
		sql, rows := fc()
		logs.Errorf("gorm: query failed, elapsed: %s, rows: %d, sql: %s, err: %+v", elapsed, rows, sql, err)
	case elapsed > l.slowQuery && l.level >= gormlogger.Warn:
		sql, rows := fc()
		logs.Warnf("gorm: slow query, elapsed: %s, rows: %d, sql: %s", elapsed, rows, sql)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		logs.Debugf("gorm: elapsed: %s, rows: %d, sql: %s", elapsed, rows, sql)
	}
}
