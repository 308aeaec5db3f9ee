package dto

import "github.com/fekuna/omnipos-replenishment-service/internal/model"

type OrderFilters struct {
	TenantID string
	Status   model.OrderStatus // empty means any
	Batch    string
}
