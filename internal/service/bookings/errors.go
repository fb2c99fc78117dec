package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidState возвращается, когда бронирование не в статусе QUEUED
	ErrInvalidState = errors.New("booking is not in QUEUED status")

	// ErrSlotConflict возвращается, когда новый слот уже занят другим бронированием
	ErrSlotConflict = errors.New("this time slot is already reserved")

	// ErrInvalidFormat возвращается, когда startTime не в формате HH:mm
	ErrInvalidFormat = errors.New("invalid start time format")

	// ErrInvalidMinuteAlignment возвращается, когда минуты startTime не 00, 15, 30 или 45
	ErrInvalidMinuteAlignment = errors.New("start time must be aligned to a quarter hour")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
