package notifications

import (
	"context"

	"github.com/m04kA/SMC-CallBookingService/pkg/mq"
)

// Publisher публикует сообщение в брокер и возвращает отложенное подтверждение
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) (mq.Confirmation, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
