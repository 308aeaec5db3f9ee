package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	"github.com/fekuna/omnipos-replenishment-service/internal/product/dto"
	"github.com/fekuna/omnipos-replenishment-service/internal/product/repository"
	"github.com/fekuna/omnipos-replenishment-service/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(tenantID, batch string, qty int) *model.Product {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Product{
		TenantID:   tenantID,
		Batch:      batch,
		Name:       "Product " + batch,
		Price:      decimal.RequireFromString("10.50"),
		Quantity:   qty,
		ExpiryDate: model.NewDate(2027, time.February, 1),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestPGRepository_CRUD(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, db)
	testutil.TruncateAll(t, ctx, db)

	repo := repository.NewPGRepository(db)

	require.NoError(t, repo.Create(ctx, newProduct("t1", "B1", 5)))
	require.NoError(t, repo.Create(ctx, newProduct("t1", "B2", 50)))
	require.NoError(t, repo.Create(ctx, newProduct("t2", "B1", 1)))

	err := repo.Create(ctx, newProduct("t1", "B1", 9))
	assert.ErrorIs(t, err, model.ErrBatchExists)

	p, err := repo.FindByBatch(ctx, "t1", "B1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("10.5")))
	assert.True(t, p.ExpiryDate.Equal(model.NewDate(2027, time.February, 1)))

	missing, err := repo.FindByBatch(ctx, "t1", "NOPE")
	require.NoError(t, err)
	assert.Nil(t, missing)

	low, err := repo.FindAll(ctx, &dto.ProductFilters{TenantID: "t1", QuantityBelow: 10})
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "B1", low[0].Batch)

	found, err := repo.FindAll(ctx, &dto.ProductFilters{TenantID: "t1", SearchQuery: "product b2"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NoError(t, repo.UpdateQuantity(ctx, "t1", "B1", 12))
	assert.ErrorIs(t, repo.UpdateQuantity(ctx, "t1", "NOPE", 1), model.ErrProductNotFound)

	require.NoError(t, repo.Delete(ctx, "t1", "B1"))
	assert.ErrorIs(t, repo.Delete(ctx, "t1", "B1"), model.ErrBatchNotFound)

	other, err := repo.FindByBatch(ctx, "t2", "B1")
	require.NoError(t, err)
	assert.NotNil(t, other)
}

func TestPGRepository_WithTxRollsBack(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, db)
	testutil.TruncateAll(t, ctx, db)

	repo := repository.NewPGRepository(db)
	require.NoError(t, repo.Create(ctx, newProduct("t1", "B1", 5)))

	err := repo.WithTx(ctx, func(txCtx context.Context) error {
		p, err := repo.FindByBatchForUpdate(txCtx, "t1", "B1")
		require.NoError(t, err)
		require.NoError(t, repo.UpdateQuantity(txCtx, "t1", "B1", p.Quantity+100))
		return model.ErrSystemBusy
	})
	assert.ErrorIs(t, err, model.ErrSystemBusy)

	p, err := repo.FindByBatch(ctx, "t1", "B1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Quantity)
}
