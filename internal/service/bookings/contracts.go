package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CallBookingService/internal/domain"
	"github.com/m04kA/SMC-CallBookingService/pkg/types"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context) ([]*domain.Booking, error)
	GetActiveBySlot(ctx context.Context, date time.Time, start types.TimeString) (*domain.Booking, error)
	Update(ctx context.Context, id string, patch domain.BookingPatch) (*domain.Booking, error)
	Transition(ctx context.Context, id string, from, to domain.BookingStatus) (*domain.Booking, error)
}

// NotificationGateway интерфейс шлюза уведомлений
type NotificationGateway interface {
	Send(ctx context.Context, pattern string, n domain.Notification) <-chan domain.SendResult
	SendAdmin(ctx context.Context, subject, text string) <-chan domain.SendResult
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчики переходов статусов
type Metrics interface {
	ObserveStatusTransition(status string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
