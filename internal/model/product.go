package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	TenantID   string          `db:"tenant_id" json:"-"`
	Batch      string          `db:"batch" json:"batch"`
	Name       string          `db:"name" json:"name"`
	Price      decimal.Decimal `db:"price" json:"price"`
	Quantity   int             `db:"quantity" json:"quantity"`
	ExpiryDate Date            `db:"expiry_date" json:"expiry_date"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}
