package get_available_slots

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-CallBookingService/internal/domain"
	"github.com/m04kA/SMC-CallBookingService/pkg/types"
)

// UseCase use case для получения свободных слотов текущего дня
type UseCase struct {
	bookingRepo  BookingRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(bookingRepo BookingRepository, logger Logger) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute возвращает слоты сегодняшнего дня, которые еще не начались
// и не заняты неотмененным бронированием
func (uc *UseCase) Execute(ctx context.Context) (*Response, error) {
	now := uc.timeProvider.Now()
	today := domain.DateOnly(now)

	bookings, err := uc.bookingRepo.ListByDate(ctx, today)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings for %s: %v", today.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	occupied := make(map[types.TimeString]struct{}, len(bookings))
	for _, b := range bookings {
		if b.IsActive() {
			occupied[b.StartTime] = struct{}{}
		}
	}

	slots := make([]Slot, 0)
	for _, start := range domain.DaySlots() {
		if _, taken := occupied[start]; taken {
			continue
		}

		instant, err := domain.Combine(today, start)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		if !instant.After(now) {
			continue
		}

		end, err := domain.SlotEnd(start)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		slots = append(slots, Slot{StartTime: start, EndTime: end})
	}

	uc.logger.Info("GetAvailableSlots: %d free slots of %d booked on %s",
		len(slots), len(occupied), today.Format(domain.DateFormat))

	return &Response{Date: today, Slots: slots}, nil
}
