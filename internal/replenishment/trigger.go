// Package replenishment scans a tenant's stock for products below the
// low-stock threshold and makes sure each has a draft order.
package replenishment

import (
	"context"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	orderdto "github.com/fekuna/omnipos-replenishment-service/internal/order/dto"
	productdto "github.com/fekuna/omnipos-replenishment-service/internal/product/dto"
	"github.com/fekuna/omnipos-replenishment-service/pkg/logger"
	"go.uber.org/zap"
)

const (
	DefaultThreshold   = 10
	DefaultTargetLevel = 10
)

type ProductScanner interface {
	FindAll(ctx context.Context, filters *productdto.ProductFilters) ([]model.Product, error)
}

type DraftEnsurer interface {
	EnsureDraft(ctx context.Context, input *orderdto.EnsureDraftInput) (*orderdto.EnsureDraftResult, error)
}

// Policy: products with quantity < Threshold get a draft for TargetLevel - quantity.
type Policy struct {
	Threshold   int
	TargetLevel int
}

func DefaultPolicy() Policy {
	return Policy{Threshold: DefaultThreshold, TargetLevel: DefaultTargetLevel}
}

type Summary struct {
	Scanned   int `json:"scanned"`
	Created   int `json:"created"`
	Adjusted  int `json:"adjusted"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed,omitempty"`
}

type Trigger struct {
	products ProductScanner
	orders   DraftEnsurer
	policy   Policy
	logger   logger.ZapLogger
}

func NewTrigger(products ProductScanner, orders DraftEnsurer, policy Policy, log logger.ZapLogger) *Trigger {
	if policy.Threshold <= 0 {
		policy.Threshold = DefaultThreshold
	}
	if policy.TargetLevel <= 0 {
		policy.TargetLevel = DefaultTargetLevel
	}
	return &Trigger{products: products, orders: orders, policy: policy, logger: log}
}

// Run evaluates every low-stock product of the tenant. A failing product does
// not stop the scan; all failures are returned joined.
func (t *Trigger) Run(ctx context.Context, tenantID string) (Summary, error) {
	var summary Summary

	low, err := t.products.FindAll(ctx, &productdto.ProductFilters{TenantID: tenantID, QuantityBelow: t.policy.Threshold})
	if err != nil {
		return summary, fmt.Errorf("scan low stock: %w", err)
	}

	var errs []error
	for _, p := range low {
		summary.Scanned++

		shortfall := t.policy.TargetLevel - p.Quantity
		if shortfall <= 0 {
			summary.Unchanged++
			continue
		}

		res, err := t.orders.EnsureDraft(ctx, &orderdto.EnsureDraftInput{TenantID: tenantID, Product: p, Quantity: shortfall})
		if err != nil {
			t.logger.Error("failed to ensure replenishment draft",
				zap.String("tenant_id", tenantID),
				zap.String("batch", p.Batch),
				zap.Error(err),
			)
			summary.Failed++
			errs = append(errs, fmt.Errorf("batch %s: %w", p.Batch, err))
			continue
		}

		switch res.Outcome {
		case orderdto.DraftCreated:
			summary.Created++
		case orderdto.DraftAdjusted:
			summary.Adjusted++
		default:
			summary.Unchanged++
		}
	}

	if summary.Created > 0 || summary.Adjusted > 0 {
		t.logger.Info("replenishment run finished",
			zap.String("tenant_id", tenantID),
			zap.Int("scanned", summary.Scanned),
			zap.Int("created", summary.Created),
			zap.Int("adjusted", summary.Adjusted),
		)
	}

	return summary, errors.Join(errs...)
}
