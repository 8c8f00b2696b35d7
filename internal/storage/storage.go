// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/rovshanmuradov/genesis-launchpad/internal/storage/models"
)

// Storage is the append-only event archive.
type Storage interface {
	SavePurchase(ctx context.Context, p *models.Purchase) error
	SaveCommission(ctx context.Context, c *models.Commission) error
	SaveRateChange(ctx context.Context, r *models.RateChange) error
	SaveSwap(ctx context.Context, s *models.Swap) error
	SaveOraclePrice(ctx context.Context, p *models.OraclePrice) error

	ListPurchases(ctx context.Context, launch string, limit, offset int) ([]*models.Purchase, error)
	ListSwaps(ctx context.Context, pool string, limit, offset int) ([]*models.Swap, error)

	RunMigrations() error
	Close() error
}
