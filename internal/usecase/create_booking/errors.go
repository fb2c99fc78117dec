package create_booking

import "errors"

var (
	// ErrInvalidFormat возвращается, когда startTime не в формате HH:mm
	ErrInvalidFormat = errors.New("create_booking: invalid start time format")

	// ErrInvalidMinuteAlignment возвращается, когда минуты startTime не 00, 15, 30 или 45
	ErrInvalidMinuteAlignment = errors.New("create_booking: start time must be aligned to a quarter hour")

	// ErrSlotConflict возвращается, когда слот уже занят неотмененным бронированием
	ErrSlotConflict = errors.New("create_booking: this time slot is already reserved")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
