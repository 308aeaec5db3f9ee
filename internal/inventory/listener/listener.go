package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-replenishment-service/internal/inventory"
	"github.com/fekuna/omnipos-replenishment-service/internal/inventory/dto"
	productdto "github.com/fekuna/omnipos-replenishment-service/internal/product/dto"
	"github.com/fekuna/omnipos-replenishment-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const eventStockDelivered = "StockDelivered"

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// DeliveryListener applies supplier delivery events as stock receipts.
type DeliveryListener struct {
	consumer MessageReader
	uc       inventory.UseCase
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewDeliveryListener(consumer MessageReader, uc inventory.UseCase, logger logger.ZapLogger) *DeliveryListener {
	return &DeliveryListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  time.Second,
	}
}

func (l *DeliveryListener) Start(ctx context.Context) {
	l.logger.Info("Starting supplier delivery listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping supplier delivery listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(l.backoff):
				}
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *DeliveryListener) processMessage(ctx context.Context, value []byte) {
	var event dto.DeliveryEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != eventStockDelivered {
		return
	}

	p := event.Payload
	if p.TenantID == "" || p.Batch == "" {
		l.logger.Warn("Dropping delivery event without tenant or batch", zap.String("event_id", event.EventID))
		return
	}

	res, err := l.uc.ReceiveStock(ctx, &productdto.ReceiveStockInput{
		TenantID:         p.TenantID,
		Batch:            p.Batch,
		ReceivedQuantity: p.Quantity,
	})
	if err != nil {
		l.logger.Error("Failed to apply delivery",
			zap.String("event_id", event.EventID),
			zap.String("tenant_id", p.TenantID),
			zap.String("batch", p.Batch),
			zap.Error(err),
		)
		return
	}

	l.logger.Info("Delivery applied",
		zap.String("event_id", event.EventID),
		zap.String("tenant_id", p.TenantID),
		zap.String("batch", p.Batch),
		zap.Int("current_stock", res.CurrentStock),
	)
}
