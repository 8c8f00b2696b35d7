package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestQueryLoggerTrace(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := newGormLogger(zap.New(core))
	ctx := context.Background()
	insert := func() (string, int64) { return `INSERT INTO "swaps" ...`, 1 }

	l.Trace(ctx, time.Now(), insert, nil)
	assert.Zero(t, logs.Len(), "fast queries are quiet at warn level")

	l.Trace(ctx, time.Now().Add(-time.Second), insert, nil)
	l.Trace(ctx, time.Now(), insert, gorm.ErrRecordNotFound)
	l.Trace(ctx, time.Now(), insert, gorm.ErrDuplicatedKey)
	l.Trace(ctx, time.Now(), insert, context.Canceled)
	l.Trace(ctx, time.Now(), insert, assert.AnError)

	entries := logs.TakeAll()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "Slow query", entries[0].Message)
		assert.Equal(t, int64(1), entries[0].ContextMap()["rows"])
		assert.Equal(t, "Query failed", entries[1].Message)
	}
}

func TestQueryLoggerModes(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := newGormLogger(zap.New(core))
	ctx := context.Background()

	l.Info(ctx, "migrating %s", "swaps")
	assert.Zero(t, logs.Len(), "info is below the default warn level")

	verbose := l.LogMode(logger.Info)
	verbose.Info(ctx, "migrating %s", "swaps")
	entries := logs.TakeAll()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "migrating swaps", entries[0].Message)
	}

	silent := l.LogMode(logger.Silent)
	silent.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 1 }, assert.AnError)
	silent.Error(ctx, "boom")
	assert.Zero(t, logs.Len())

	// LogMode returns a copy.
	l.Error(ctx, "still %s", "loud")
	assert.Equal(t, 1, logs.Len())
}
