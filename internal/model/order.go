package model

import "time"

type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
)

// OrderSource records who last set the requested quantity of an order.
type OrderSource string

const (
	OrderSourceAuto   OrderSource = "AUTO"
	OrderSourceManual OrderSource = "MANUAL"
)

// Order is a replenishment order for one batch. Batch is a soft reference:
// the product may have been removed since.
type Order struct {
	TenantID     string      `db:"tenant_id" json:"-"`
	OrderID      string      `db:"order_id" json:"order_id"`
	Batch        string      `db:"batch" json:"batch"`
	ProductName  string      `db:"product_name" json:"product"`
	RequestedQty int         `db:"requested_qty" json:"requested_qty"`
	Status       OrderStatus `db:"status" json:"status"`
	Source       OrderSource `db:"source" json:"source"`
	CreatedAt    Date        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

func (o *Order) IsDraft() bool {
	return o.Status == OrderStatusDraft
}
