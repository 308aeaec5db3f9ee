package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-replenishment-service/internal/clock"
	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	"github.com/fekuna/omnipos-replenishment-service/internal/order"
	"github.com/fekuna/omnipos-replenishment-service/internal/order/dto"
	"github.com/fekuna/omnipos-replenishment-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockTTL        = 5 * time.Second
	lockAttempts   = 3
	lockRetryDelay = 100 * time.Millisecond

	// a racing insert of the same batch's draft is retried as an update
	draftAttempts = 2

	msgDraftCreated = "Draft order created"
	msgDraftUpdated = "Draft order updated"
)

type orderUseCase struct {
	repo      order.Repository
	products  order.ProductFinder
	locker    order.Locker
	publisher order.EventPublisher
	clock     clock.Clock
	logger    logger.ZapLogger
}

// NewOrderUseCase builds the order use case. locker and publisher are optional.
func NewOrderUseCase(
	repo order.Repository,
	products order.ProductFinder,
	locker order.Locker,
	publisher order.EventPublisher,
	clk clock.Clock,
	log logger.ZapLogger,
) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		products:  products,
		locker:    locker,
		publisher: publisher,
		clock:     clk,
		logger:    log,
	}
}

// FormatOrderID renders ORD-<first 8 chars of tenant>-<n>.
func FormatOrderID(tenantID string, seq int64) string {
	prefix := tenantID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("ORD-%s-%d", prefix, seq)
}

func (uc *orderUseCase) CreateOrUpdateDraft(ctx context.Context, input *dto.CreateOrderInput) (*dto.CreateOrderResult, error) {
	if input.Batch == "" {
		return nil, model.ErrMissingField.Withf("batch is required")
	}
	if input.Quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	var result dto.CreateOrderResult
	err := uc.withBatchLock(ctx, input.TenantID, input.Batch, func() error {
		return uc.retryDraftConflict(func() error {
			return uc.repo.WithTx(ctx, func(txCtx context.Context) error {
				draft, err := uc.repo.FindDraftByBatch(txCtx, input.TenantID, input.Batch)
				if err != nil {
					return err
				}
				if draft != nil {
					if err := uc.repo.UpdateQuantity(txCtx, input.TenantID, draft.OrderID, input.Quantity, model.OrderSourceManual); err != nil {
						return err
					}
					draft.RequestedQty = input.Quantity
					draft.Source = model.OrderSourceManual
					draft.UpdatedAt = uc.clock.Now()
					result = dto.CreateOrderResult{Message: msgDraftUpdated, Order: *draft}
					return nil
				}

				p, err := uc.products.FindByBatch(txCtx, input.TenantID, input.Batch)
				if err != nil {
					return err
				}
				if p == nil {
					return model.ErrProductNotFound
				}

				o, err := uc.insertDraft(txCtx, p, input.Quantity, model.OrderSourceManual)
				if err != nil {
					return err
				}
				result = dto.CreateOrderResult{Message: msgDraftCreated, Order: *o, Created: true}
				return nil
			})
		})
	})
	if err != nil {
		return nil, err
	}

	eventType := dto.EventDraftUpdated
	if result.Created {
		eventType = dto.EventDraftCreated
	}
	uc.logger.Info("draft order saved",
		zap.String("tenant_id", input.TenantID),
		zap.String("order_id", result.Order.OrderID),
		zap.String("batch", input.Batch),
		zap.Int("requested_qty", result.Order.RequestedQty),
		zap.Bool("created", result.Created),
	)
	uc.publish(ctx, eventType, result.Order)

	return &result, nil
}

func (uc *orderUseCase) EnsureDraft(ctx context.Context, input *dto.EnsureDraftInput) (*dto.EnsureDraftResult, error) {
	if input.Quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}
	tenantID, batch := input.TenantID, input.Product.Batch

	var result dto.EnsureDraftResult
	err := uc.withBatchLock(ctx, tenantID, batch, func() error {
		return uc.retryDraftConflict(func() error {
			return uc.repo.WithTx(ctx, func(txCtx context.Context) error {
				draft, err := uc.repo.FindDraftByBatch(txCtx, tenantID, batch)
				if err != nil {
					return err
				}

				switch {
				case draft == nil:
					o, err := uc.insertDraft(txCtx, &input.Product, input.Quantity, model.OrderSourceAuto)
					if err != nil {
						return err
					}
					result = dto.EnsureDraftResult{Order: *o, Outcome: dto.DraftCreated}

				case draft.Source == model.OrderSourceAuto && draft.RequestedQty > input.Quantity:
					// auto drafts shrink to the remaining shortfall, never grow
					if err := uc.repo.UpdateQuantity(txCtx, tenantID, draft.OrderID, input.Quantity, model.OrderSourceAuto); err != nil {
						return err
					}
					draft.RequestedQty = input.Quantity
					draft.UpdatedAt = uc.clock.Now()
					result = dto.EnsureDraftResult{Order: *draft, Outcome: dto.DraftAdjusted}

				default:
					result = dto.EnsureDraftResult{Order: *draft, Outcome: dto.DraftUnchanged}
				}
				return nil
			})
		})
	})
	if err != nil {
		return nil, err
	}

	switch result.Outcome {
	case dto.DraftCreated:
		uc.logger.Info("replenishment draft created",
			zap.String("tenant_id", tenantID),
			zap.String("order_id", result.Order.OrderID),
			zap.String("batch", batch),
			zap.Int("requested_qty", result.Order.RequestedQty),
		)
		uc.publish(ctx, dto.EventDraftCreated, result.Order)
	case dto.DraftAdjusted:
		uc.logger.Info("replenishment draft adjusted",
			zap.String("tenant_id", tenantID),
			zap.String("order_id", result.Order.OrderID),
			zap.Int("requested_qty", result.Order.RequestedQty),
		)
		uc.publish(ctx, dto.EventDraftUpdated, result.Order)
	}

	return &result, nil
}

func (uc *orderUseCase) UpdateQuantity(ctx context.Context, input *dto.UpdateOrderInput) (*model.Order, error) {
	if input.Quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	var updated *model.Order
	err := uc.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := uc.repo.UpdateQuantity(txCtx, input.TenantID, input.OrderID, input.Quantity, model.OrderSourceManual); err != nil {
			return err
		}
		o, err := uc.repo.FindByID(txCtx, input.TenantID, input.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return model.ErrOrderNotFound
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order quantity updated",
		zap.String("tenant_id", input.TenantID),
		zap.String("order_id", input.OrderID),
		zap.Int("requested_qty", input.Quantity),
	)
	uc.publish(ctx, dto.EventQuantityUpdated, *updated)

	return updated, nil
}

func (uc *orderUseCase) ConfirmOrder(ctx context.Context, tenantID, orderID string) (*model.Order, error) {
	var confirmed *model.Order
	err := uc.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := uc.repo.UpdateStatus(txCtx, tenantID, orderID, model.OrderStatusConfirmed); err != nil {
			return err
		}
		o, err := uc.repo.FindByID(txCtx, tenantID, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return model.ErrOrderNotFound
		}
		confirmed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order confirmed", zap.String("tenant_id", tenantID), zap.String("order_id", orderID))
	uc.publish(ctx, dto.EventConfirmed, *confirmed)

	return confirmed, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, tenantID string) ([]model.Order, int, error) {
	orders, err := uc.repo.FindAll(ctx, &dto.OrderFilters{TenantID: tenantID})
	if err != nil {
		return nil, 0, err
	}
	count, err := uc.repo.Count(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}

func (uc *orderUseCase) ListDraftOrders(ctx context.Context, tenantID string) ([]model.Order, error) {
	return uc.repo.FindAll(ctx, &dto.OrderFilters{TenantID: tenantID, Status: model.OrderStatusDraft})
}

func (uc *orderUseCase) insertDraft(ctx context.Context, p *model.Product, qty int, source model.OrderSource) (*model.Order, error) {
	seq, err := uc.repo.NextSequence(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	o := &model.Order{
		TenantID:     p.TenantID,
		OrderID:      FormatOrderID(p.TenantID, seq),
		Batch:        p.Batch,
		ProductName:  p.Name,
		RequestedQty: qty,
		Status:       model.OrderStatusDraft,
		Source:       source,
		CreatedAt:    model.DateOf(now),
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *orderUseCase) retryDraftConflict(fn func() error) error {
	var err error
	for i := 0; i < draftAttempts; i++ {
		err = fn()
		if !errors.Is(err, model.ErrDraftExists) {
			return err
		}
		uc.logger.Debug("concurrent draft insert detected, retrying as update")
	}
	return err
}

// withBatchLock serializes draft mutations of one batch across replicas.
// Without a locker, or when the lock backend errors, the store's one-draft
// constraint is the only guard.
func (uc *orderUseCase) withBatchLock(ctx context.Context, tenantID, batch string, fn func() error) error {
	if uc.locker == nil {
		return fn()
	}

	key := fmt.Sprintf("lock:order:draft:%s:%s", tenantID, batch)
	value := uuid.New().String()

	for i := 0; i < lockAttempts; i++ {
		acquired, err := uc.locker.AcquireLock(ctx, key, value, lockTTL)
		if err != nil {
			uc.logger.Warn("lock backend unavailable, continuing without lock", zap.String("key", key), zap.Error(err))
			return fn()
		}
		if acquired {
			defer func() {
				if err := uc.locker.ReleaseLock(context.Background(), key, value); err != nil {
					uc.logger.Error("failed to release lock", zap.String("key", key), zap.Error(err))
				}
			}()
			return fn()
		}
		if i < lockAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(lockRetryDelay):
			}
		}
	}

	uc.logger.Warn("failed to acquire draft lock", zap.String("key", key))
	return model.ErrSystemBusy
}

func (uc *orderUseCase) publish(ctx context.Context, eventType string, o model.Order) {
	if uc.publisher == nil {
		return
	}

	evt := dto.OrderEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		TenantID:  o.TenantID,
		Payload:   o,
		Timestamp: uc.clock.Now(),
	}
	data, err := json.Marshal(evt)
	if err != nil {
		uc.logger.Error("failed to marshal order event", zap.Error(err))
		return
	}
	if err := uc.publisher.Publish(ctx, []byte(o.TenantID+":"+o.Batch), data); err != nil {
		uc.logger.Error("failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_id", o.OrderID),
			zap.Error(err),
		)
	}
}
