package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-replenishment-service/internal/clock"
	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	"github.com/fekuna/omnipos-replenishment-service/internal/order/dto"
	"github.com/fekuna/omnipos-replenishment-service/internal/order/repository"
	orderusecase "github.com/fekuna/omnipos-replenishment-service/internal/order/usecase"
	prodrepo "github.com/fekuna/omnipos-replenishment-service/internal/product/repository"
	"github.com/fekuna/omnipos-replenishment-service/internal/testutil"
	"github.com/fekuna/omnipos-replenishment-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draft(tenantID, orderID, batch string, qty int) *model.Order {
	return &model.Order{
		TenantID:     tenantID,
		OrderID:      orderID,
		Batch:        batch,
		ProductName:  "Widget",
		RequestedQty: qty,
		Status:       model.OrderStatusDraft,
		Source:       model.OrderSourceAuto,
		CreatedAt:    model.NewDate(2026, time.October, 18),
		UpdatedAt:    time.Now().UTC(),
	}
}

func TestPGRepository_Constraints(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, db)
	testutil.TruncateAll(t, ctx, db)

	repo := repository.NewPGRepository(db)

	require.NoError(t, repo.Create(ctx, draft("t1", "ORD-t1-1", "B1", 5)))
	assert.ErrorIs(t, repo.Create(ctx, draft("t1", "ORD-t1-1", "B9", 5)), model.ErrOrderIDExists)
	assert.ErrorIs(t, repo.Create(ctx, draft("t1", "ORD-t1-2", "B1", 5)), model.ErrDraftExists)

	// same batch in another tenant is independent
	require.NoError(t, repo.Create(ctx, draft("t2", "ORD-t2-1", "B1", 5)))

	require.NoError(t, repo.UpdateStatus(ctx, "t1", "ORD-t1-1", model.OrderStatusConfirmed))
	require.NoError(t, repo.Create(ctx, draft("t1", "ORD-t1-2", "B1", 3)))

	drafts, err := repo.FindAll(ctx, &dto.OrderFilters{TenantID: "t1", Status: model.OrderStatusDraft})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "ORD-t1-2", drafts[0].OrderID)

	all, err := repo.FindAll(ctx, &dto.OrderFilters{TenantID: "t1"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ORD-t1-1", all[0].OrderID)

	n, err := repo.Count(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.ErrorIs(t, repo.UpdateQuantity(ctx, "t1", "ORD-missing", 1, model.OrderSourceManual), model.ErrOrderNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "t2", "ORD-t1-2", model.OrderStatusConfirmed), model.ErrOrderNotFound)
}

func TestPGRepository_NextSequence(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, db)
	testutil.TruncateAll(t, ctx, db)

	repo := repository.NewPGRepository(db)
	for want := int64(1); want <= 3; want++ {
		got, err := repo.NextSequence(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	got, err := repo.NextSequence(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestEnsureDraft_ConcurrentAgainstPostgres(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, db)
	testutil.TruncateAll(t, ctx, db)

	products := prodrepo.NewPGRepository(db)
	p := &model.Product{
		TenantID:   "t1",
		Batch:      "B1",
		Name:       "Widget",
		Price:      decimal.NewFromInt(2),
		Quantity:   3,
		ExpiryDate: model.NewDate(2027, time.March, 3),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	require.NoError(t, products.Create(ctx, p))

	uc := orderusecase.NewOrderUseCase(repository.NewPGRepository(db), products, nil, nil,
		clock.NewSystem(nil), logger.NewNop())

	var wg sync.WaitGroup
	errs := make(chan error, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.EnsureDraft(ctx, &dto.EnsureDraftInput{TenantID: "t1", Product: *p, Quantity: 7})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	drafts, err := uc.ListDraftOrders(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "ORD-t1-1", drafts[0].OrderID)
}
