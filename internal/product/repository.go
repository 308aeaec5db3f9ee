package product

import (
	"context"

	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	"github.com/fekuna/omnipos-replenishment-service/internal/product/dto"
)

// Repository is the tenant-scoped product store. Every method takes the tenant explicitly.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// Create fails with model.ErrBatchExists when the batch is taken for the tenant.
	Create(ctx context.Context, p *model.Product) error
	// FindByBatch returns nil, nil when the batch does not exist.
	FindByBatch(ctx context.Context, tenantID, batch string) (*model.Product, error)
	// FindByBatchForUpdate is FindByBatch that also row-locks inside a transaction.
	FindByBatchForUpdate(ctx context.Context, tenantID, batch string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error)
	UpdateQuantity(ctx context.Context, tenantID, batch string, quantity int) error
	Delete(ctx context.Context, tenantID, batch string) error
}
