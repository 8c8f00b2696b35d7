// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rovshanmuradov/genesis-launchpad/internal/storage"
	"github.com/rovshanmuradov/genesis-launchpad/internal/storage/models"
)

// migrationLockID is the advisory lock key held while AutoMigrate runs.
const migrationLockID = 7301

var ErrMigrationInProgress = errors.New("another migration is in progress")

type postgresStorage struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStorage opens a pooled Postgres connection for the event archive.
func NewStorage(dsn string, zapLogger *zap.Logger) (storage.Storage, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newGormLogger(zapLogger.Named("gorm")),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		SkipDefaultTransaction:                   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &postgresStorage{db: db, logger: zapLogger.Named("postgres")}, nil
}

// RunMigrations creates or updates the archive tables under an advisory
// lock so that two nodes never migrate at once.
func (p *postgresStorage) RunMigrations() error {
	var lockObtained bool
	if err := p.db.Raw("SELECT pg_try_advisory_lock(?)", migrationLockID).Scan(&lockObtained).Error; err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !lockObtained {
		return ErrMigrationInProgress
	}
	defer p.db.Exec("SELECT pg_advisory_unlock(?)", migrationLockID)

	err := p.db.AutoMigrate(
		&models.Purchase{},
		&models.Commission{},
		&models.RateChange{},
		&models.Swap{},
		&models.OraclePrice{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	p.logger.Info("Archive schema up to date")
	return nil
}

func (p *postgresStorage) SavePurchase(ctx context.Context, m *models.Purchase) error {
	return p.insert(ctx, m)
}

func (p *postgresStorage) SaveCommission(ctx context.Context, m *models.Commission) error {
	return p.insert(ctx, m)
}

func (p *postgresStorage) SaveRateChange(ctx context.Context, m *models.RateChange) error {
	return p.insert(ctx, m)
}

func (p *postgresStorage) SaveSwap(ctx context.Context, m *models.Swap) error {
	return p.insert(ctx, m)
}

func (p *postgresStorage) SaveOraclePrice(ctx context.Context, m *models.OraclePrice) error {
	return p.insert(ctx, m)
}

// insert ignores rows whose event id is already archived, so a replayed
// event is a no-op.
func (p *postgresStorage) insert(ctx context.Context, row interface{}) error {
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(row).Error
}

func (p *postgresStorage) ListPurchases(ctx context.Context, launch string, limit, offset int) ([]*models.Purchase, error) {
	var rows []*models.Purchase
	q := p.db.WithContext(ctx)
	if launch != "" {
		q = q.Where("launch = ?", launch)
	}
	err := q.
		Order("event_time desc").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

func (p *postgresStorage) ListSwaps(ctx context.Context, pool string, limit, offset int) ([]*models.Swap, error) {
	var rows []*models.Swap
	q := p.db.WithContext(ctx)
	if pool != "" {
		q = q.Where("pool = ?", pool)
	}
	err := q.
		Order("event_time desc").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

func (p *postgresStorage) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
