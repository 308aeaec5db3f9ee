package usecase

import (
	"context"
	"strings"

	"github.com/fekuna/omnipos-replenishment-service/internal/clock"
	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	"github.com/fekuna/omnipos-replenishment-service/internal/product"
	"github.com/fekuna/omnipos-replenishment-service/internal/product/dto"
	"github.com/fekuna/omnipos-replenishment-service/pkg/logger"
	"go.uber.org/zap"
)

type productUseCase struct {
	repo    product.Repository
	indexer product.Indexer
	clock   clock.Clock
	logger  logger.ZapLogger
}

// NewProductUseCase builds the product use case. indexer may be nil when search is disabled.
func NewProductUseCase(repo product.Repository, indexer product.Indexer, clk clock.Clock, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:    repo,
		indexer: indexer,
		clock:   clk,
		logger:  log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	batch := strings.TrimSpace(input.Batch)
	if name == "" {
		return nil, model.ErrMissingField.Withf("name is required")
	}
	if batch == "" {
		return nil, model.ErrMissingField.Withf("batch is required")
	}
	if input.Quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}
	if !input.Price.IsPositive() {
		return nil, model.ErrInvalidPrice
	}

	expiry, err := model.ParseDate(input.ExpiryDate)
	if err != nil {
		return nil, model.ErrInvalidExpiryFormat.Wrap(err)
	}
	if !expiry.After(clock.Today(uc.clock)) {
		return nil, model.ErrExpiryNotInFuture
	}

	now := uc.clock.Now()
	p := &model.Product{
		TenantID:   input.TenantID,
		Batch:      batch,
		Name:       name,
		Price:      input.Price,
		Quantity:   input.Quantity,
		ExpiryDate: expiry,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	uc.logger.Info("product registered",
		zap.String("tenant_id", p.TenantID),
		zap.String("batch", p.Batch),
		zap.Int("quantity", p.Quantity),
	)

	if uc.indexer != nil {
		go uc.indexer.IndexProduct(context.Background(), *p)
	}

	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, tenantID, batch string) (*model.Product, error) {
	p, err := uc.repo.FindByBatch(ctx, tenantID, batch)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, model.ErrProductNotFound
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *productUseCase) SearchProducts(ctx context.Context, tenantID, query string) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return uc.repo.FindAll(ctx, &dto.ProductFilters{TenantID: tenantID})
	}

	if uc.indexer != nil {
		products, err := uc.indexer.Search(ctx, tenantID, query)
		if err == nil {
			return products, nil
		}
		uc.logger.Error("search backend failed, falling back to DB", zap.Error(err))
	}

	return uc.repo.FindAll(ctx, &dto.ProductFilters{TenantID: tenantID, SearchQuery: query})
}

func (uc *productUseCase) ReceiveStock(ctx context.Context, input *dto.ReceiveStockInput) (*model.Product, error) {
	if input.ReceivedQuantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	var updated *model.Product
	err := uc.repo.WithTx(ctx, func(txCtx context.Context) error {
		p, err := uc.repo.FindByBatchForUpdate(txCtx, input.TenantID, input.Batch)
		if err != nil {
			return err
		}
		if p == nil {
			return model.ErrProductNotFound
		}

		p.Quantity += input.ReceivedQuantity
		if err := uc.repo.UpdateQuantity(txCtx, input.TenantID, input.Batch, p.Quantity); err != nil {
			return err
		}
		p.UpdatedAt = uc.clock.Now()
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("stock received",
		zap.String("tenant_id", input.TenantID),
		zap.String("batch", input.Batch),
		zap.Int("received", input.ReceivedQuantity),
		zap.Int("current_stock", updated.Quantity),
	)

	if uc.indexer != nil {
		go uc.indexer.IndexProduct(context.Background(), *updated)
	}

	return updated, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, tenantID, batch string) error {
	if err := uc.repo.Delete(ctx, tenantID, batch); err != nil {
		return err
	}

	uc.logger.Info("product removed", zap.String("tenant_id", tenantID), zap.String("batch", batch))

	if uc.indexer != nil {
		go uc.indexer.RemoveProduct(context.Background(), tenantID, batch)
	}
	return nil
}
