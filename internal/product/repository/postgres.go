package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	"github.com/fekuna/omnipos-replenishment-service/internal/product/dto"
	"github.com/fekuna/omnipos-replenishment-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

const productColumns = `tenant_id, batch, name, price, quantity, expiry_date, created_at, updated_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return postgres.WithTx(ctx, r.DB, fn)
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            tenant_id, batch, name, price, quantity, expiry_date, created_at, updated_at
        )
        VALUES (
            :tenant_id, :batch, :name, :price, :quantity, :expiry_date, :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Ext(ctx, r.DB), query, p)
	if err != nil {
		if _, ok := postgres.UniqueViolation(err); ok {
			return model.ErrBatchExists.Wrap(err)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *PGRepository) FindByBatch(ctx context.Context, tenantID, batch string) (*model.Product, error) {
	return r.findByBatch(ctx, tenantID, batch, "")
}

func (r *PGRepository) FindByBatchForUpdate(ctx context.Context, tenantID, batch string) (*model.Product, error) {
	return r.findByBatch(ctx, tenantID, batch, " FOR UPDATE")
}

func (r *PGRepository) findByBatch(ctx context.Context, tenantID, batch, suffix string) (*model.Product, error) {
	var p model.Product
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 AND batch = $2` + suffix
	err := sqlx.GetContext(ctx, postgres.Ext(ctx, r.DB), &p, query, tenantID, batch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, error) {
	conditions := []string{"tenant_id = :tenant_id"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.QuantityBelow > 0 {
		conditions = append(conditions, "quantity < :quantity_below")
		args["quantity_below"] = f.QuantityBelow
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR batch ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	query := "SELECT " + productColumns + " FROM products WHERE " +
		strings.Join(conditions, " AND ") + " ORDER BY created_at, batch"

	query, bound, err := sqlx.Named(query, args)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	products := []model.Product{}
	if err := sqlx.SelectContext(ctx, postgres.Ext(ctx, r.DB), &products, query, bound...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (r *PGRepository) UpdateQuantity(ctx context.Context, tenantID, batch string, quantity int) error {
	res, err := postgres.Ext(ctx, r.DB).ExecContext(ctx,
		`UPDATE products SET quantity = $3, updated_at = NOW() WHERE tenant_id = $1 AND batch = $2`,
		tenantID, batch, quantity,
	)
	if err != nil {
		return fmt.Errorf("update product quantity: %w", err)
	}
	return requireRow(res, model.ErrProductNotFound)
}

func (r *PGRepository) Delete(ctx context.Context, tenantID, batch string) error {
	res, err := postgres.Ext(ctx, r.DB).ExecContext(ctx,
		`DELETE FROM products WHERE tenant_id = $1 AND batch = $2`,
		tenantID, batch,
	)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return requireRow(res, model.ErrBatchNotFound)
}

func requireRow(res sql.Result, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
