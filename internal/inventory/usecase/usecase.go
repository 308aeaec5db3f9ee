package usecase

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-replenishment-service/internal/clock"
	"github.com/fekuna/omnipos-replenishment-service/internal/expiry"
	"github.com/fekuna/omnipos-replenishment-service/internal/inventory"
	"github.com/fekuna/omnipos-replenishment-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	"github.com/fekuna/omnipos-replenishment-service/internal/order"
	orderdto "github.com/fekuna/omnipos-replenishment-service/internal/order/dto"
	"github.com/fekuna/omnipos-replenishment-service/internal/product"
	productdto "github.com/fekuna/omnipos-replenishment-service/internal/product/dto"
	"github.com/fekuna/omnipos-replenishment-service/internal/replenishment"
	"github.com/fekuna/omnipos-replenishment-service/pkg/logger"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	products product.UseCase
	orders   order.UseCase
	trigger  *replenishment.Trigger
	clock    clock.Clock
	logger   logger.ZapLogger
}

func NewInventoryUseCase(
	products product.UseCase,
	orders order.UseCase,
	trigger *replenishment.Trigger,
	clk clock.Clock,
	log logger.ZapLogger,
) inventory.UseCase {
	return &inventoryUseCase{
		products: products,
		orders:   orders,
		trigger:  trigger,
		clock:    clk,
		logger:   log,
	}
}

func (uc *inventoryUseCase) RegisterProduct(ctx context.Context, input *productdto.CreateProductInput) (*dto.RegisterProductResult, error) {
	p, err := uc.products.CreateProduct(ctx, input)
	if err != nil {
		return nil, err
	}

	summary := uc.replenish(ctx, input.TenantID)

	return &dto.RegisterProductResult{
		Message:       fmt.Sprintf("Product %s added successfully.", p.Name),
		Product:       *p,
		Replenishment: summary,
	}, nil
}

func (uc *inventoryUseCase) ReceiveStock(ctx context.Context, input *productdto.ReceiveStockInput) (*dto.ReceiveStockResult, error) {
	p, err := uc.products.ReceiveStock(ctx, input)
	if err != nil {
		return nil, err
	}

	summary := uc.replenish(ctx, input.TenantID)

	return &dto.ReceiveStockResult{
		Message:       "Stock updated",
		Received:      input.ReceivedQuantity,
		CurrentStock:  p.Quantity,
		Replenishment: summary,
	}, nil
}

func (uc *inventoryUseCase) RemoveProduct(ctx context.Context, tenantID, batch string) (*dto.MessageResult, error) {
	if err := uc.products.DeleteProduct(ctx, tenantID, batch); err != nil {
		return nil, err
	}
	return &dto.MessageResult{Message: fmt.Sprintf("Product with batch number %s has been removed.", batch)}, nil
}

func (uc *inventoryUseCase) ListProducts(ctx context.Context, tenantID string) ([]model.Product, error) {
	return uc.products.ListProducts(ctx, &productdto.ProductFilters{TenantID: tenantID})
}

func (uc *inventoryUseCase) SearchProducts(ctx context.Context, tenantID, query string) ([]model.Product, error) {
	return uc.products.SearchProducts(ctx, tenantID, query)
}

func (uc *inventoryUseCase) ExpiryReport(ctx context.Context, tenantID string) ([]expiry.Entry, error) {
	products, err := uc.products.ListProducts(ctx, &productdto.ProductFilters{TenantID: tenantID})
	if err != nil {
		return nil, err
	}
	return expiry.Report(products, clock.Today(uc.clock)), nil
}

func (uc *inventoryUseCase) CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*orderdto.CreateOrderResult, error) {
	return uc.orders.CreateOrUpdateDraft(ctx, input)
}

func (uc *inventoryUseCase) UpdateOrder(ctx context.Context, input *orderdto.UpdateOrderInput) (*model.Order, error) {
	return uc.orders.UpdateQuantity(ctx, input)
}

func (uc *inventoryUseCase) ConfirmOrder(ctx context.Context, tenantID, orderID string) (*model.Order, error) {
	return uc.orders.ConfirmOrder(ctx, tenantID, orderID)
}

func (uc *inventoryUseCase) ListOrders(ctx context.Context, tenantID string) ([]model.Order, int, error) {
	return uc.orders.ListOrders(ctx, tenantID)
}

func (uc *inventoryUseCase) ListDraftOrders(ctx context.Context, tenantID string) ([]model.Order, error) {
	return uc.orders.ListDraftOrders(ctx, tenantID)
}

// replenish runs after the stock change has committed, so its failures are
// reported in the summary and never undo or fail the caller's operation.
func (uc *inventoryUseCase) replenish(ctx context.Context, tenantID string) replenishment.Summary {
	summary, err := uc.trigger.Run(ctx, tenantID)
	if err != nil {
		uc.logger.Error("replenishment run failed",
			zap.String("tenant_id", tenantID),
			zap.Int("failed", summary.Failed),
			zap.Error(err),
		)
	}
	return summary
}
