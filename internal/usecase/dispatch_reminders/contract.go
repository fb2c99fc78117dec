package dispatch_reminders

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CallBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListUpcoming(ctx context.Context, until time.Time) ([]*domain.Booking, error)
	MarkSent(ctx context.Context, id string, channel domain.Channel) error
}

// BookingCompleter переводит наступившие бронирования в SUCCESSFUL
type BookingCompleter interface {
	Complete(ctx context.Context, id string, now time.Time) (*domain.Booking, error)
}

// NotificationGateway интерфейс шлюза уведомлений
type NotificationGateway interface {
	Send(ctx context.Context, pattern string, n domain.Notification) <-chan domain.SendResult
}

// Metrics счетчики напоминаний
type Metrics interface {
	ObserveReminder(channel, result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
