package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-replenishment-service/internal/clock"
	"github.com/fekuna/omnipos-replenishment-service/internal/expiry"
	"github.com/fekuna/omnipos-replenishment-service/internal/inventory"
	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	orderdto "github.com/fekuna/omnipos-replenishment-service/internal/order/dto"
	orderusecase "github.com/fekuna/omnipos-replenishment-service/internal/order/usecase"
	productdto "github.com/fekuna/omnipos-replenishment-service/internal/product/dto"
	productusecase "github.com/fekuna/omnipos-replenishment-service/internal/product/usecase"
	"github.com/fekuna/omnipos-replenishment-service/internal/replenishment"
	"github.com/fekuna/omnipos-replenishment-service/internal/testutil"
	"github.com/fekuna/omnipos-replenishment-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tenantA = "aaaaaaaa-1111-2222-3333-444444444444"
	tenantB = "bbbbbbbb-1111-2222-3333-444444444444"
)

func newService(t *testing.T) inventory.UseCase {
	t.Helper()
	return newServiceWithLocker(t, testutil.NewMemLocker())
}

func newServiceWithLocker(t *testing.T, locker *testutil.MemLocker) inventory.UseCase {
	t.Helper()
	store := testutil.NewMemStore()
	clk := clock.NewFixed(time.Date(2026, time.October, 18, 8, 0, 0, 0, time.UTC))
	log := logger.NewNop()

	products := productusecase.NewProductUseCase(store.Products(), nil, clk, log)
	orders := orderusecase.NewOrderUseCase(store.Orders(), store.Products(), locker, nil, clk, log)
	trigger := replenishment.NewTrigger(store.Products(), orders, replenishment.DefaultPolicy(), log)
	return NewInventoryUseCase(products, orders, trigger, clk, log)
}

func register(t *testing.T, svc inventory.UseCase, tenantID, batch string, qty int, exp string) {
	t.Helper()
	_, err := svc.RegisterProduct(context.Background(), &productdto.CreateProductInput{
		TenantID:   tenantID,
		Name:       "Item " + batch,
		Price:      decimal.RequireFromString("4.20"),
		Quantity:   qty,
		Batch:      batch,
		ExpiryDate: exp,
	})
	require.NoError(t, err)
}

func TestRegisterProduct_Message(t *testing.T) {
	svc := newService(t)

	res, err := svc.RegisterProduct(context.Background(), &productdto.CreateProductInput{
		TenantID:   tenantA,
		Name:       "Aspirin",
		Price:      decimal.RequireFromString("1.99"),
		Quantity:   50,
		Batch:      "ASP-1",
		ExpiryDate: "2027-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, "Product Aspirin added successfully.", res.Message)
	assert.Equal(t, replenishment.Summary{}, res.Replenishment)
}

func TestLowStockRegistration_CreatesSingleDraft(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	register(t, svc, tenantA, "B1", 5, "2027-01-01")

	drafts, err := svc.ListDraftOrders(ctx, tenantA)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, 5, drafts[0].RequestedQty)
	assert.Equal(t, "ORD-aaaaaaaa-1", drafts[0].OrderID)

	// an unrelated registration re-runs the trigger without duplicating
	register(t, svc, tenantA, "B2", 40, "2027-01-01")
	drafts, err = svc.ListDraftOrders(ctx, tenantA)
	require.NoError(t, err)
	assert.Len(t, drafts, 1)
}

func TestReceiveStock_ShrinksAutoDraft(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	register(t, svc, tenantA, "B1", 5, "2027-01-01")

	res, err := svc.ReceiveStock(ctx, &productdto.ReceiveStockInput{TenantID: tenantA, Batch: "B1", ReceivedQuantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Received)
	assert.Equal(t, 8, res.CurrentStock)
	assert.Equal(t, 1, res.Replenishment.Adjusted)

	drafts, err := svc.ListDraftOrders(ctx, tenantA)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, 2, drafts[0].RequestedQty)
}

func TestStockChanges_SurviveReplenishmentFailure(t *testing.T) {
	locker := testutil.NewMemLocker()
	locker.Hold("lock:order:draft:" + tenantA + ":B1")
	svc := newServiceWithLocker(t, locker)
	ctx := context.Background()

	in := &productdto.CreateProductInput{
		TenantID:   tenantA,
		Name:       "Gauze",
		Price:      decimal.RequireFromString("0.80"),
		Quantity:   4,
		Batch:      "B1",
		ExpiryDate: "2027-06-30",
	}
	reg, err := svc.RegisterProduct(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Product Gauze added successfully.", reg.Message)
	assert.Equal(t, replenishment.Summary{Scanned: 1, Failed: 1}, reg.Replenishment)

	products, err := svc.ListProducts(ctx, tenantA)
	require.NoError(t, err)
	require.Len(t, products, 1)

	rcv, err := svc.ReceiveStock(ctx, &productdto.ReceiveStockInput{TenantID: tenantA, Batch: "B1", ReceivedQuantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 6, rcv.CurrentStock)
	assert.Equal(t, 1, rcv.Replenishment.Failed)

	drafts, err := svc.ListDraftOrders(ctx, tenantA)
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestReceiveStock_Errors(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	register(t, svc, tenantA, "B1", 20, "2027-01-01")

	_, err := svc.ReceiveStock(ctx, &productdto.ReceiveStockInput{TenantID: tenantA, Batch: "B1", ReceivedQuantity: 0})
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)

	_, err = svc.ReceiveStock(ctx, &productdto.ReceiveStockInput{TenantID: tenantA, Batch: "NOPE", ReceivedQuantity: 2})
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestConfirmOrder_Visibility(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	register(t, svc, tenantA, "B1", 5, "2027-01-01")

	drafts, err := svc.ListDraftOrders(ctx, tenantA)
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	confirmed, err := svc.ConfirmOrder(ctx, tenantA, drafts[0].OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, confirmed.Status)

	drafts, err = svc.ListDraftOrders(ctx, tenantA)
	require.NoError(t, err)
	assert.Empty(t, drafts)

	all, count, err := svc.ListOrders(ctx, tenantA)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, model.OrderStatusConfirmed, all[0].Status)

	_, err = svc.ConfirmOrder(ctx, tenantA, "ORD-unknown-1")
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestManualOrderAboveThreshold(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	register(t, svc, tenantA, "B1", 50, "2027-01-01")

	res, err := svc.CreateOrder(ctx, &orderdto.CreateOrderInput{TenantID: tenantA, Batch: "B1", Quantity: 12})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, 12, res.Order.RequestedQty)
	assert.Equal(t, model.OrderStatusDraft, res.Order.Status)
}

func TestTenantIsolation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	register(t, svc, tenantA, "SHARED", 3, "2026-10-20")
	register(t, svc, tenantB, "SHARED", 30, "2027-01-01")

	productsB, err := svc.ListProducts(ctx, tenantB)
	require.NoError(t, err)
	require.Len(t, productsB, 1)
	assert.Equal(t, 30, productsB[0].Quantity)

	draftsB, err := svc.ListDraftOrders(ctx, tenantB)
	require.NoError(t, err)
	assert.Empty(t, draftsB)

	ordersB, count, err := svc.ListOrders(ctx, tenantB)
	require.NoError(t, err)
	assert.Empty(t, ordersB)
	assert.Zero(t, count)

	reportA, err := svc.ExpiryReport(ctx, tenantA)
	require.NoError(t, err)
	require.Len(t, reportA, 1)
	assert.Equal(t, expiry.StatusCritical, reportA[0].Status)
	assert.Equal(t, 2, reportA[0].DaysLeft)

	reportB, err := svc.ExpiryReport(ctx, tenantB)
	require.NoError(t, err)
	require.Len(t, reportB, 1)
	assert.Equal(t, expiry.StatusSafe, reportB[0].Status)

	_, err = svc.RemoveProduct(ctx, tenantB, "NOPE")
	assert.ErrorIs(t, err, model.ErrBatchNotFound)

	msg, err := svc.RemoveProduct(ctx, tenantB, "SHARED")
	require.NoError(t, err)
	assert.Equal(t, "Product with batch number SHARED has been removed.", msg.Message)

	productsA, err := svc.ListProducts(ctx, tenantA)
	require.NoError(t, err)
	assert.Len(t, productsA, 1)
}
