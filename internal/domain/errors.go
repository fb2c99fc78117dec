package domain

import "errors"

var (
	// ErrInvalidFormat возвращается, когда время не в формате HH:mm или вне диапазона
	ErrInvalidFormat = errors.New("domain: invalid time format")

	// ErrInvalidMinuteAlignment возвращается, когда минуты не 00, 15, 30 или 45
	ErrInvalidMinuteAlignment = errors.New("domain: minutes must be aligned to a quarter hour")
)
