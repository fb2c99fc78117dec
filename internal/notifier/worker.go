package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-CallBookingService/internal/domain"
	"github.com/m04kA/SMC-CallBookingService/internal/integrations/notifications"
)

const (
	resultDelivered = "delivered"
	resultDropped   = "dropped"
)

// Worker читает очередь уведомлений и доставляет сообщения по routing key
type Worker struct {
	senders map[string]Sender
	metrics Metrics
	logger  Logger
}

func NewWorker(metrics Metrics, logger Logger) *Worker {
	return &Worker{
		senders: make(map[string]Sender),
		metrics: metrics,
		logger:  logger,
	}
}

// Register назначает отправителя для routing key
func (w *Worker) Register(routingKey string, sender Sender) *Worker {
	w.senders[routingKey] = sender
	return w
}

// RoutingKeys ключи, на которые нужно подписать очередь
func (w *Worker) RoutingKeys() []string {
	keys := make([]string, 0, len(w.senders))
	for key := range w.senders {
		keys = append(keys, key)
	}
	return keys
}

// NewDefaultWorker регистрирует лог-отправителей на все каналы
func NewDefaultWorker(metrics Metrics, logger Logger) *Worker {
	return NewWorker(metrics, logger).
		Register(domain.PatternEmail, NewLogSender("EMAIL", logger)).
		Register(domain.PatternSMS, NewLogSender("SMS", logger)).
		Register(domain.PatternPush, NewLogSender("PUSH", logger)).
		Register(domain.PatternAdmin, NewLogSender("ADMIN", logger))
}

// Run обрабатывает сообщения до отмены ctx или закрытия канала доставки
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	w.logger.Info("Notifier: worker started, keys=%v", w.RoutingKeys())

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Notifier: worker stopped")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				w.logger.Warn("Notifier: delivery channel closed")
				return nil
			}
			w.Handle(ctx, d)
		}
	}
}

// Handle доставляет одно сообщение
// Успех подтверждается ack, ошибка отбрасывает сообщение без повторной постановки в очередь
func (w *Worker) Handle(ctx context.Context, d amqp.Delivery) {
	if err := w.deliver(ctx, d); err != nil {
		w.logger.Error("Notifier: %s delivery failed: %v", d.RoutingKey, err)
		w.metrics.ObserveDelivery(d.RoutingKey, resultDropped)
		if nackErr := d.Nack(false, false); nackErr != nil {
			w.logger.Error("Notifier: nack failed: %v", nackErr)
		}
		return
	}

	w.metrics.ObserveDelivery(d.RoutingKey, resultDelivered)
	if err := d.Ack(false); err != nil {
		w.logger.Error("Notifier: ack failed: %v", err)
	}
}

func (w *Worker) deliver(ctx context.Context, d amqp.Delivery) error {
	sender, ok := w.senders[d.RoutingKey]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRoutingKey, d.RoutingKey)
	}

	var msg notifications.Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return sender.Send(ctx, msg)
}
