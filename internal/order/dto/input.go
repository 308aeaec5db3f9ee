package dto

import "github.com/fekuna/omnipos-replenishment-service/internal/model"

type CreateOrderInput struct {
	TenantID string
	Batch    string
	Quantity int
}

type CreateOrderResult struct {
	Message string      `json:"message"`
	Order   model.Order `json:"order"`
	Created bool        `json:"created"`
}

type EnsureDraftInput struct {
	TenantID string
	Product  model.Product
	Quantity int
}

type DraftOutcome string

const (
	DraftCreated   DraftOutcome = "created"
	DraftAdjusted  DraftOutcome = "adjusted"
	DraftUnchanged DraftOutcome = "unchanged"
)

type EnsureDraftResult struct {
	Order   model.Order
	Outcome DraftOutcome
}

type UpdateOrderInput struct {
	TenantID string
	OrderID  string
	Quantity int
}
