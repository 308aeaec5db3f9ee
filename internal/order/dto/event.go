package dto

import (
	"time"

	"github.com/fekuna/omnipos-replenishment-service/internal/model"
)

const (
	EventDraftCreated    = "OrderDraftCreated"
	EventDraftUpdated    = "OrderDraftUpdated"
	EventQuantityUpdated = "OrderQuantityUpdated"
	EventConfirmed       = "OrderConfirmed"
)

type OrderEvent struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	TenantID  string      `json:"tenant_id"`
	Payload   model.Order `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}
