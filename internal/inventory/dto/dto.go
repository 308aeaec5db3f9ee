package dto

import (
	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	"github.com/fekuna/omnipos-replenishment-service/internal/replenishment"
)

type RegisterProductResult struct {
	Message       string                `json:"message"`
	Product       model.Product         `json:"product"`
	Replenishment replenishment.Summary `json:"replenishment"`
}

type ReceiveStockResult struct {
	Message       string                `json:"message"`
	Received      int                   `json:"received"`
	CurrentStock  int                   `json:"current_stock"`
	Replenishment replenishment.Summary `json:"replenishment"`
}

type MessageResult struct {
	Message string `json:"message"`
}
