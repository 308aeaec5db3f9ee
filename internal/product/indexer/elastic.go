package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	"github.com/fekuna/omnipos-replenishment-service/pkg/logger"
	"github.com/fekuna/omnipos-replenishment-service/pkg/search"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const indexName = "products"

const mapping = `{
	"mappings": {
		"properties": {
			"tenant_id": { "type": "keyword" },
			"batch": { "type": "keyword" },
			"name": { "type": "text" },
			"price": { "type": "scaled_float", "scaling_factor": 100 },
			"quantity": { "type": "integer" },
			"expiry_date": { "type": "date", "format": "yyyy-MM-dd" },
			"updated_at": { "type": "date" }
		}
	}
}`

// SearchBackend is the subset of *search.Client the indexer needs.
type SearchBackend interface {
	CreateIndex(ctx context.Context, name, mapping string) error
	Index(ctx context.Context, index, id string, doc any) error
	Delete(ctx context.Context, index, id string) error
	Search(ctx context.Context, index string, query map[string]any) (*search.SearchResponse, error)
}

type ElasticIndexer struct {
	es      SearchBackend
	logger  logger.ZapLogger
	timeout time.Duration
	once    sync.Once
}

func NewElasticIndexer(es SearchBackend, log logger.ZapLogger) *ElasticIndexer {
	return &ElasticIndexer{es: es, logger: log, timeout: 5 * time.Second}
}

type document struct {
	TenantID   string          `json:"tenant_id"`
	Batch      string          `json:"batch"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	ExpiryDate model.Date      `json:"expiry_date"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func docID(tenantID, batch string) string {
	return tenantID + ":" + batch
}

func (ix *ElasticIndexer) ensureIndex(ctx context.Context) {
	ix.once.Do(func() {
		if err := ix.es.CreateIndex(ctx, indexName, mapping); err != nil {
			ix.logger.Warn("failed to create products index", zap.Error(err))
		}
	})
}

func (ix *ElasticIndexer) IndexProduct(ctx context.Context, p model.Product) {
	ctx, cancel := context.WithTimeout(ctx, ix.timeout)
	defer cancel()
	ix.ensureIndex(ctx)

	doc := document{
		TenantID:   p.TenantID,
		Batch:      p.Batch,
		Name:       p.Name,
		Price:      p.Price,
		Quantity:   p.Quantity,
		ExpiryDate: p.ExpiryDate,
		UpdatedAt:  p.UpdatedAt,
	}
	if err := ix.es.Index(ctx, indexName, docID(p.TenantID, p.Batch), doc); err != nil {
		ix.logger.Error("failed to index product",
			zap.String("tenant_id", p.TenantID),
			zap.String("batch", p.Batch),
			zap.Error(err),
		)
	}
}

func (ix *ElasticIndexer) RemoveProduct(ctx context.Context, tenantID, batch string) {
	ctx, cancel := context.WithTimeout(ctx, ix.timeout)
	defer cancel()

	if err := ix.es.Delete(ctx, indexName, docID(tenantID, batch)); err != nil {
		ix.logger.Error("failed to delete product from search index",
			zap.String("tenant_id", tenantID),
			zap.String("batch", batch),
			zap.Error(err),
		)
	}
}

func (ix *ElasticIndexer) Search(ctx context.Context, tenantID, query string) ([]model.Product, error) {
	q := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []map[string]any{
					{
						"query_string": map[string]any{
							"query":  fmt.Sprintf("*%s*", query),
							"fields": []string{"name^3", "batch"},
						},
					},
				},
				"filter": []map[string]any{
					{"term": map[string]any{"tenant_id": tenantID}},
				},
			},
		},
		"size": 100,
	}

	res, err := ix.es.Search(ctx, indexName, q)
	if err != nil {
		return nil, err
	}

	products := make([]model.Product, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var doc document
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			ix.logger.Warn("skipping undecodable search hit", zap.String("id", hit.ID), zap.Error(err))
			continue
		}
		if doc.TenantID != tenantID {
			continue
		}
		products = append(products, model.Product{
			TenantID:   doc.TenantID,
			Batch:      doc.Batch,
			Name:       doc.Name,
			Price:      doc.Price,
			Quantity:   doc.Quantity,
			ExpiryDate: doc.ExpiryDate,
			UpdatedAt:  doc.UpdatedAt,
		})
	}
	return products, nil
}
