package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// ServiceCatalogRepo implements ports.ServiceCatalogRepository over the
// services table (sell rate vs provider cost per service).
type ServiceCatalogRepo struct {
	pool Pool
}

// NewServiceCatalogRepo creates a new ServiceCatalogRepo.
func NewServiceCatalogRepo(pool Pool) *ServiceCatalogRepo {
	return &ServiceCatalogRepo{pool: pool}
}

// AverageMarginRatio returns avg((rate - cost) / rate) over services with a
// positive rate, zero for an empty catalog.
func (r *ServiceCatalogRepo) AverageMarginRatio(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT COALESCE(AVG((rate - cost) / rate), 0)::text FROM services WHERE rate > 0`

	var ratio string
	if err := r.pool.QueryRow(ctx, query).Scan(&ratio); err != nil {
		return decimal.Zero, fmt.Errorf("average margin ratio: %w", err)
	}
	d, err := decimal.NewFromString(ratio)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse margin ratio: %w", err)
	}
	return d, nil
}
