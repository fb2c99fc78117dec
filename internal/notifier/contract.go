package notifier

import (
	"context"

	"github.com/m04kA/SMC-CallBookingService/internal/integrations/notifications"
)

// Sender доставляет сообщение конкретным каналом (email, sms, push)
type Sender interface {
	Send(ctx context.Context, msg notifications.Message) error
}

// Metrics счетчики доставки по routing key
type Metrics interface {
	ObserveDelivery(routingKey, result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
