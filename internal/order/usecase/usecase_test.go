package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-replenishment-service/internal/apperr"
	"github.com/fekuna/omnipos-replenishment-service/internal/clock"
	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	"github.com/fekuna/omnipos-replenishment-service/internal/order"
	"github.com/fekuna/omnipos-replenishment-service/internal/order/dto"
	"github.com/fekuna/omnipos-replenishment-service/internal/testutil"
	"github.com/fekuna/omnipos-replenishment-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenantA = "3fa85f64-5717-4562-b3fc-2c963f66afa6"

var now = time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store     *testutil.MemStore
	locker    *testutil.MemLocker
	publisher *testutil.MemPublisher
	uc        order.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewMemStore()
	locker := testutil.NewMemLocker()
	publisher := &testutil.MemPublisher{}
	uc := NewOrderUseCase(store.Orders(), store.Products(), locker, publisher, clock.NewFixed(now), logger.NewNop())
	return &fixture{store: store, locker: locker, publisher: publisher, uc: uc}
}

func (f *fixture) addProduct(t *testing.T, tenantID, batch string, qty int) model.Product {
	t.Helper()
	p := model.Product{
		TenantID:   tenantID,
		Batch:      batch,
		Name:       "Paracetamol",
		Price:      decimal.RequireFromString("2.50"),
		Quantity:   qty,
		ExpiryDate: model.NewDate(2027, time.January, 1),
	}
	require.NoError(t, f.store.Products().Create(context.Background(), &p))
	return p
}

func TestFormatOrderID(t *testing.T) {
	assert.Equal(t, "ORD-3fa85f64-1", FormatOrderID(tenantA, 1))
	assert.Equal(t, "ORD-short-12", FormatOrderID("short", 12))
}

func TestCreateOrUpdateDraft_CreatesThenUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, tenantA, "B1", 4)

	res, err := f.uc.CreateOrUpdateDraft(ctx, &dto.CreateOrderInput{TenantID: tenantA, Batch: "B1", Quantity: 12})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "Draft order created", res.Message)
	assert.Equal(t, "ORD-3fa85f64-1", res.Order.OrderID)
	assert.Equal(t, "Paracetamol", res.Order.ProductName)
	assert.Equal(t, 12, res.Order.RequestedQty)
	assert.Equal(t, model.OrderStatusDraft, res.Order.Status)
	assert.Equal(t, model.NewDate(2026, time.October, 18), res.Order.CreatedAt)

	res, err = f.uc.CreateOrUpdateDraft(ctx, &dto.CreateOrderInput{TenantID: tenantA, Batch: "B1", Quantity: 7})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, "Draft order updated", res.Message)
	assert.Equal(t, "ORD-3fa85f64-1", res.Order.OrderID)
	assert.Equal(t, 7, res.Order.RequestedQty)

	drafts, err := f.uc.ListDraftOrders(ctx, tenantA)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, 7, drafts[0].RequestedQty)
	assert.Equal(t, model.OrderSourceManual, drafts[0].Source)
}

func TestCreateOrUpdateDraft_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.CreateOrUpdateDraft(ctx, &dto.CreateOrderInput{TenantID: tenantA, Batch: "B1", Quantity: 0})
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)

	_, err = f.uc.CreateOrUpdateDraft(ctx, &dto.CreateOrderInput{TenantID: tenantA, Batch: "", Quantity: 3})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = f.uc.CreateOrUpdateDraft(ctx, &dto.CreateOrderInput{TenantID: tenantA, Batch: "NOPE", Quantity: 3})
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestCreateOrUpdateDraft_ConfirmedOrderStartsNewDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, tenantA, "B1", 4)

	first, err := f.uc.CreateOrUpdateDraft(ctx, &dto.CreateOrderInput{TenantID: tenantA, Batch: "B1", Quantity: 6})
	require.NoError(t, err)
	_, err = f.uc.ConfirmOrder(ctx, tenantA, first.Order.OrderID)
	require.NoError(t, err)

	second, err := f.uc.CreateOrUpdateDraft(ctx, &dto.CreateOrderInput{TenantID: tenantA, Batch: "B1", Quantity: 6})
	require.NoError(t, err)
	assert.True(t, second.Created)
	assert.Equal(t, "ORD-3fa85f64-2", second.Order.OrderID)

	orders, count, err := f.uc.ListOrders(ctx, tenantA)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, orders, 2)
	assert.Equal(t, first.Order.OrderID, orders[0].OrderID)
}

func TestEnsureDraft_Outcomes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, tenantA, "B1", 5)

	res, err := f.uc.EnsureDraft(ctx, &dto.EnsureDraftInput{TenantID: tenantA, Product: p, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, dto.DraftCreated, res.Outcome)
	assert.Equal(t, model.OrderSourceAuto, res.Order.Source)

	// shortfall grows: no top-up
	res, err = f.uc.EnsureDraft(ctx, &dto.EnsureDraftInput{TenantID: tenantA, Product: p, Quantity: 9})
	require.NoError(t, err)
	assert.Equal(t, dto.DraftUnchanged, res.Outcome)
	assert.Equal(t, 5, res.Order.RequestedQty)

	// shortfall shrinks after a delivery
	res, err = f.uc.EnsureDraft(ctx, &dto.EnsureDraftInput{TenantID: tenantA, Product: p, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, dto.DraftAdjusted, res.Outcome)
	assert.Equal(t, 2, res.Order.RequestedQty)

	drafts, err := f.uc.ListDraftOrders(ctx, tenantA)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, 2, drafts[0].RequestedQty)
}

func TestEnsureDraft_LeavesManualDraftAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, tenantA, "B1", 4)

	_, err := f.uc.CreateOrUpdateDraft(ctx, &dto.CreateOrderInput{TenantID: tenantA, Batch: "B1", Quantity: 12})
	require.NoError(t, err)

	res, err := f.uc.EnsureDraft(ctx, &dto.EnsureDraftInput{TenantID: tenantA, Product: p, Quantity: 6})
	require.NoError(t, err)
	assert.Equal(t, dto.DraftUnchanged, res.Outcome)
	assert.Equal(t, 12, res.Order.RequestedQty)
}

func TestEnsureDraft_ConcurrentCallsKeepOneDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, tenantA, "B1", 3)

	// no locker: only the store's one-draft rule guards the race
	uc := NewOrderUseCase(f.store.Orders(), f.store.Products(), nil, nil, clock.NewFixed(now), logger.NewNop())

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.EnsureDraft(ctx, &dto.EnsureDraftInput{TenantID: tenantA, Product: p, Quantity: 7})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	drafts, err := uc.ListDraftOrders(ctx, tenantA)
	require.NoError(t, err)
	assert.Len(t, drafts, 1)
}

func TestEnsureDraft_LockContentionIsSystemBusy(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, tenantA, "B1", 3)
	f.locker.Hold("lock:order:draft:" + tenantA + ":B1")

	_, err := f.uc.EnsureDraft(context.Background(), &dto.EnsureDraftInput{TenantID: tenantA, Product: p, Quantity: 7})
	assert.ErrorIs(t, err, model.ErrSystemBusy)
	assert.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))
	assert.Equal(t, lockAttempts, f.locker.Calls)
}

func TestEnsureDraft_LockBackendDownStillWorks(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, tenantA, "B1", 3)
	f.locker.Err = errors.New("connection refused")

	res, err := f.uc.EnsureDraft(context.Background(), &dto.EnsureDraftInput{TenantID: tenantA, Product: p, Quantity: 7})
	require.NoError(t, err)
	assert.Equal(t, dto.DraftCreated, res.Outcome)
}

func TestUpdateQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, tenantA, "B1", 4)
	created, err := f.uc.CreateOrUpdateDraft(ctx, &dto.CreateOrderInput{TenantID: tenantA, Batch: "B1", Quantity: 6})
	require.NoError(t, err)

	o, err := f.uc.UpdateQuantity(ctx, &dto.UpdateOrderInput{TenantID: tenantA, OrderID: created.Order.OrderID, Quantity: 20})
	require.NoError(t, err)
	assert.Equal(t, 20, o.RequestedQty)

	_, err = f.uc.UpdateQuantity(ctx, &dto.UpdateOrderInput{TenantID: tenantA, OrderID: "ORD-missing-9", Quantity: 1})
	assert.ErrorIs(t, err, model.ErrOrderNotFound)

	_, err = f.uc.UpdateQuantity(ctx, &dto.UpdateOrderInput{TenantID: tenantA, OrderID: created.Order.OrderID, Quantity: -1})
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
}

func TestConfirmOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, tenantA, "B1", 4)
	created, err := f.uc.CreateOrUpdateDraft(ctx, &dto.CreateOrderInput{TenantID: tenantA, Batch: "B1", Quantity: 6})
	require.NoError(t, err)

	o, err := f.uc.ConfirmOrder(ctx, tenantA, created.Order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, o.Status)

	drafts, err := f.uc.ListDraftOrders(ctx, tenantA)
	require.NoError(t, err)
	assert.Empty(t, drafts)

	_, err = f.uc.ConfirmOrder(ctx, tenantA, "ORD-3fa85f64-99")
	assert.ErrorIs(t, err, model.ErrOrderNotFound)

	_, err = f.uc.ConfirmOrder(ctx, "other-tenant", created.Order.OrderID)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestEventsArePublished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, tenantA, "B1", 4)

	created, err := f.uc.CreateOrUpdateDraft(ctx, &dto.CreateOrderInput{TenantID: tenantA, Batch: "B1", Quantity: 6})
	require.NoError(t, err)
	_, err = f.uc.ConfirmOrder(ctx, tenantA, created.Order.OrderID)
	require.NoError(t, err)

	msgs := f.publisher.Snapshot()
	require.Len(t, msgs, 2)
	assert.Equal(t, tenantA+":B1", string(msgs[0].Key))

	var evt dto.OrderEvent
	require.NoError(t, json.Unmarshal(msgs[1].Value, &evt))
	assert.Equal(t, dto.EventConfirmed, evt.EventType)
	assert.Equal(t, tenantA, evt.TenantID)
	assert.Equal(t, created.Order.OrderID, evt.Payload.OrderID)
	assert.NotEmpty(t, evt.EventID)
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	f.publisher.Err = errors.New("broker down")
	f.addProduct(t, tenantA, "B1", 4)

	_, err := f.uc.CreateOrUpdateDraft(context.Background(), &dto.CreateOrderInput{TenantID: tenantA, Batch: "B1", Quantity: 6})
	assert.NoError(t, err)
}
