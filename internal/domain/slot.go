package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/m04kA/SMC-CallBookingService/pkg/types"
)

// slotStartPattern HH:mm, HH 00-23, mm 00-59. Выравнивание по четверти часа проверяется отдельно
var slotStartPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// ParseSlotStart разбирает время начала слота
// Минуты обязаны быть 00, 15, 30 или 45 - это правило домена, а не формата
func ParseSlotStart(s string) (types.TimeString, error) {
	if !slotStartPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q, expected HH:mm", ErrInvalidFormat, s)
	}

	ts := types.TimeString(s)
	minutes, err := ts.Minutes()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	if minutes%SlotAlignment != 0 {
		return "", fmt.Errorf("%w: %q, minutes must be 00, 15, 30 or 45", ErrInvalidMinuteAlignment, s)
	}

	return ts, nil
}

// SlotEnd возвращает конец слота: start + 15 минут с переходом через полночь
func SlotEnd(start types.TimeString) (types.TimeString, error) {
	end, err := start.AddMinutes(SlotDurationMinutes)
	if err != nil {
		if errors.Is(err, types.ErrInvalidTimeString) {
			return "", fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return "", err
	}
	return end, nil
}

// Combine строит абсолютный момент начала слота в зоне процесса
func Combine(date time.Time, tod types.TimeString) (time.Time, error) {
	minutes, err := tod.Minutes()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, time.Local), nil
}

// DateOnly отбрасывает время суток: полночь того же календарного дня в зоне процесса
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// IsWithinLeadWindow true, если now попадает в полуинтервал [target-lead, target-lead+1m)
// Ширина окна равна периоду тика, поэтому каждая граница наблюдается ровно одним тиком
func IsWithinLeadWindow(target, now time.Time, leadMinutes int) bool {
	windowStart := target.Add(-time.Duration(leadMinutes) * time.Minute)
	windowEnd := windowStart.Add(LeadWindowMinutes * time.Minute)
	return !now.Before(windowStart) && now.Before(windowEnd)
}

// AvailableSlot свободный слот на день
type AvailableSlot struct {
	StartTime types.TimeString
	EndTime   types.TimeString
}

// DaySlots все слоты суток с шагом SlotAlignment
func DaySlots() []types.TimeString {
	slots := make([]types.TimeString, 0, 24*60/SlotAlignment)
	for minutes := 0; minutes < 24*60; minutes += SlotAlignment {
		slots = append(slots, types.NewTimeStringFromMinutes(minutes))
	}
	return slots
}
