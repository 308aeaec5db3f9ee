package product

import (
	"context"

	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	"github.com/fekuna/omnipos-replenishment-service/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, tenantID, batch string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error)
	SearchProducts(ctx context.Context, tenantID, query string) ([]model.Product, error)
	ReceiveStock(ctx context.Context, input *dto.ReceiveStockInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, tenantID, batch string) error
}

// Indexer mirrors products into a search backend. Implementations log their own failures.
type Indexer interface {
	IndexProduct(ctx context.Context, p model.Product)
	RemoveProduct(ctx context.Context, tenantID, batch string)
	Search(ctx context.Context, tenantID, query string) ([]model.Product, error)
}
