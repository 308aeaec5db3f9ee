package order

import (
	"context"

	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	"github.com/fekuna/omnipos-replenishment-service/internal/order/dto"
)

// Repository is the tenant-scoped order store.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// Create fails with model.ErrOrderIDExists on a duplicate id and with
	// model.ErrDraftExists when the batch already has a DRAFT order.
	Create(ctx context.Context, o *model.Order) error
	// FindByID returns nil, nil when the order does not exist.
	FindByID(ctx context.Context, tenantID, orderID string) (*model.Order, error)
	// FindDraftByBatch returns the DRAFT order of a batch, row-locked when
	// called inside a transaction, or nil, nil.
	FindDraftByBatch(ctx context.Context, tenantID, batch string) (*model.Order, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, error)
	Count(ctx context.Context, tenantID string) (int, error)
	// NextSequence atomically allocates the next order number for the tenant.
	NextSequence(ctx context.Context, tenantID string) (int64, error)
	UpdateQuantity(ctx context.Context, tenantID, orderID string, quantity int, source model.OrderSource) error
	UpdateStatus(ctx context.Context, tenantID, orderID string, status model.OrderStatus) error
}
