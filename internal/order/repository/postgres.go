package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	"github.com/fekuna/omnipos-replenishment-service/internal/order/dto"
	"github.com/fekuna/omnipos-replenishment-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

const (
	orderColumns = `tenant_id, order_id, batch, product_name, requested_qty, status, source, created_at, updated_at`

	constraintOneDraft = "orders_one_draft_per_batch"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return postgres.WithTx(ctx, r.DB, fn)
}

func (r *PGRepository) Create(ctx context.Context, o *model.Order) error {
	query := `
        INSERT INTO orders (
            tenant_id, order_id, batch, product_name, requested_qty, status, source, created_at, updated_at
        )
        VALUES (
            :tenant_id, :order_id, :batch, :product_name, :requested_qty, :status, :source, :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Ext(ctx, r.DB), query, o)
	if err != nil {
		if constraint, ok := postgres.UniqueViolation(err); ok {
			if constraint == constraintOneDraft {
				return model.ErrDraftExists.Wrap(err)
			}
			return model.ErrOrderIDExists.Wrap(err)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, tenantID, orderID string) (*model.Order, error) {
	var o model.Order
	query := `SELECT ` + orderColumns + ` FROM orders WHERE tenant_id = $1 AND order_id = $2`
	if err := sqlx.GetContext(ctx, postgres.Ext(ctx, r.DB), &o, query, tenantID, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

func (r *PGRepository) FindDraftByBatch(ctx context.Context, tenantID, batch string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE tenant_id = $1 AND batch = $2 AND status = $3`
	if postgres.TxFromContext(ctx) != nil {
		query += ` FOR UPDATE`
	}

	var o model.Order
	err := sqlx.GetContext(ctx, postgres.Ext(ctx, r.DB), &o, query, tenantID, batch, model.OrderStatusDraft)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get draft order: %w", err)
	}
	return &o, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, error) {
	conditions := []string{"tenant_id = :tenant_id"}
	args := map[string]interface{}{"tenant_id": f.TenantID}

	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.Batch != "" {
		conditions = append(conditions, "batch = :batch")
		args["batch"] = f.Batch
	}

	query := "SELECT " + orderColumns + " FROM orders WHERE " +
		strings.Join(conditions, " AND ") + " ORDER BY seq"

	query, bound, err := sqlx.Named(query, args)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	orders := []model.Order{}
	if err := sqlx.SelectContext(ctx, postgres.Ext(ctx, r.DB), &orders, query, bound...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (r *PGRepository) Count(ctx context.Context, tenantID string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, postgres.Ext(ctx, r.DB), &n,
		`SELECT COUNT(*) FROM orders WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func (r *PGRepository) NextSequence(ctx context.Context, tenantID string) (int64, error) {
	var next int64
	err := sqlx.GetContext(ctx, postgres.Ext(ctx, r.DB), &next, `
        INSERT INTO order_sequences (tenant_id, last_value)
        VALUES ($1, 1)
        ON CONFLICT (tenant_id) DO UPDATE SET last_value = order_sequences.last_value + 1
        RETURNING last_value
    `, tenantID)
	if err != nil {
		return 0, fmt.Errorf("next order sequence: %w", err)
	}
	return next, nil
}

func (r *PGRepository) UpdateQuantity(ctx context.Context, tenantID, orderID string, quantity int, source model.OrderSource) error {
	res, err := postgres.Ext(ctx, r.DB).ExecContext(ctx,
		`UPDATE orders SET requested_qty = $3, source = $4, updated_at = NOW() WHERE tenant_id = $1 AND order_id = $2`,
		tenantID, orderID, quantity, source,
	)
	if err != nil {
		return fmt.Errorf("update order quantity: %w", err)
	}
	return requireRow(res)
}

func (r *PGRepository) UpdateStatus(ctx context.Context, tenantID, orderID string, status model.OrderStatus) error {
	res, err := postgres.Ext(ctx, r.DB).ExecContext(ctx,
		`UPDATE orders SET status = $3, updated_at = NOW() WHERE tenant_id = $1 AND order_id = $2`,
		tenantID, orderID, status,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}
