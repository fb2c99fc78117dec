package dispatch_reminders

import "errors"

var (
	// ErrListUpcoming возвращается, когда не удалось получить ближайшие бронирования
	ErrListUpcoming = errors.New("dispatch_reminders: failed to list upcoming bookings")

	// ErrInvalidConfig возвращается при недопустимых параметрах диспетчера
	ErrInvalidConfig = errors.New("dispatch_reminders: invalid config")
)
