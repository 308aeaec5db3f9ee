package order

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	"github.com/fekuna/omnipos-replenishment-service/internal/order/dto"
)

type UseCase interface {
	// CreateOrUpdateDraft overwrites the batch's DRAFT quantity, or creates a
	// new DRAFT when none exists.
	CreateOrUpdateDraft(ctx context.Context, input *dto.CreateOrderInput) (*dto.CreateOrderResult, error)
	// EnsureDraft is the replenishment entry point: it creates a DRAFT when
	// none exists and never raises an existing draft's quantity.
	EnsureDraft(ctx context.Context, input *dto.EnsureDraftInput) (*dto.EnsureDraftResult, error)
	UpdateQuantity(ctx context.Context, input *dto.UpdateOrderInput) (*model.Order, error)
	ConfirmOrder(ctx context.Context, tenantID, orderID string) (*model.Order, error)
	ListOrders(ctx context.Context, tenantID string) ([]model.Order, int, error)
	ListDraftOrders(ctx context.Context, tenantID string) ([]model.Order, error)
}

type ProductFinder interface {
	FindByBatch(ctx context.Context, tenantID, batch string) (*model.Product, error)
}

type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, key, value []byte) error
}
