package inventory

import (
	"context"

	"github.com/fekuna/omnipos-replenishment-service/internal/expiry"
	"github.com/fekuna/omnipos-replenishment-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	orderdto "github.com/fekuna/omnipos-replenishment-service/internal/order/dto"
	productdto "github.com/fekuna/omnipos-replenishment-service/internal/product/dto"
)

// UseCase is the service surface: every stock mutation is followed by a
// replenishment run for the tenant.
type UseCase interface {
	RegisterProduct(ctx context.Context, input *productdto.CreateProductInput) (*dto.RegisterProductResult, error)
	ReceiveStock(ctx context.Context, input *productdto.ReceiveStockInput) (*dto.ReceiveStockResult, error)
	RemoveProduct(ctx context.Context, tenantID, batch string) (*dto.MessageResult, error)
	ListProducts(ctx context.Context, tenantID string) ([]model.Product, error)
	SearchProducts(ctx context.Context, tenantID, query string) ([]model.Product, error)
	ExpiryReport(ctx context.Context, tenantID string) ([]expiry.Entry, error)

	CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*orderdto.CreateOrderResult, error)
	UpdateOrder(ctx context.Context, input *orderdto.UpdateOrderInput) (*model.Order, error)
	ConfirmOrder(ctx context.Context, tenantID, orderID string) (*model.Order, error)
	ListOrders(ctx context.Context, tenantID string) ([]model.Order, int, error)
	ListDraftOrders(ctx context.Context, tenantID string) ([]model.Order, error)
}
