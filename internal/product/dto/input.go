package dto

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	TenantID   string
	Name       string
	Price      decimal.Decimal
	Quantity   int
	Batch      string
	ExpiryDate string // YYYY-MM-DD
}

type ReceiveStockInput struct {
	TenantID         string
	Batch            string
	ReceivedQuantity int
}
