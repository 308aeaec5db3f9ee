package dto

import "github.com/shopspring/decimal"

// RegisterProductRequest is the POST /products body.
type RegisterProductRequest struct {
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	Batch      string          `json:"batch"`
	ExpiryDate string          `json:"expiry_date"`
}

type CreateOrderRequest struct {
	Batch    string `json:"batch"`
	Quantity int    `json:"quantity"`
}

type UpdateOrderRequest struct {
	Quantity int `json:"quantity"`
}

type ReceiveStockRequest struct {
	Batch            string `json:"batch"`
	ReceivedQuantity int    `json:"received_quantity"`
}

// DeliveryEvent is a supplier delivery notification consumed from Kafka.
type DeliveryEvent struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   DeliveryPayload `json:"payload"`
}

type DeliveryPayload struct {
	TenantID string `json:"tenant_id"`
	Batch    string `json:"batch"`
	Quantity int    `json:"quantity"`
}
