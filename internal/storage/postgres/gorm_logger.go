// internal/storage/postgres/gorm_logger.go
package postgres

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

// queryLogger sends gorm's output to zap as structured fields. Archive
// writes run on the event bus goroutine, so slow inserts are the thing to
// watch; row-level noise stays at Debug.
type queryLogger struct {
	zl    *zap.Logger
	level logger.LogLevel
	slow  time.Duration
}

func newGormLogger(zl *zap.Logger) logger.Interface {
	return &queryLogger{zl: zl, level: logger.Warn, slow: slowQueryThreshold}
}

func (q *queryLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *q
	clone.level = level
	return &clone
}

func (q *queryLogger) Info(_ context.Context, msg string, data ...interface{}) {
	q.message(logger.Info, msg, data)
}

func (q *queryLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	q.message(logger.Warn, msg, data)
}

func (q *queryLogger) Error(_ context.Context, msg string, data ...interface{}) {
	q.message(logger.Error, msg, data)
}

func (q *queryLogger) message(level logger.LogLevel, msg string, data []interface{}) {
	if q.level < level {
		return
	}
	text := fmt.Sprintf(msg, data...)
	switch level {
	case logger.Error:
		q.zl.Error(text)
	case logger.Warn:
		q.zl.Warn(text)
	default:
		q.zl.Info(text)
	}
}

// Trace reports failed, slow and (at Info) all statements. Missing rows,
// replayed events hitting the event_id index and cancelled requests are
// expected and never logged above Debug.
func (q *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if q.level <= logger.Silent {
		return
	}

	took := time.Since(begin)
	statement, rows := fc()
	fields := []zap.Field{
		zap.Duration("took", took),
		zap.Int64("rows", rows),
		zap.String("sql", statement),
	}

	switch {
	case err != nil && expected(err):
		q.zl.Debug("Query returned expected error", append(fields, zap.Error(err))...)
	case err != nil && q.level >= logger.Error:
		q.zl.Error("Query failed", append(fields, zap.Error(err))...)
	case took > q.slow && q.level >= logger.Warn:
		q.zl.Warn("Slow query", append(fields, zap.Duration("threshold", q.slow))...)
	case q.level >= logger.Info:
		q.zl.Debug("Query", fields...)
	}
}

func expected(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, context.Canceled)
}
