package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CallBookingService/internal/domain"
	"github.com/m04kA/SMC-CallBookingService/pkg/types"
)

// MemoryRepository хранилище бронирований в памяти процесса
// Контракт совпадает с Repository, включая уникальность неотмененного слота
type MemoryRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking
	now      func() time.Time
}

// NewMemoryRepository создает пустое хранилище в памяти
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		bookings: make(map[string]*domain.Booking),
		now:      time.Now,
	}
}

// WithClock подменяет источник времени для created_at/updated_at
func (r *MemoryRepository) WithClock(now func() time.Time) *MemoryRepository {
	r.now = now
	return r
}

func (r *MemoryRepository) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slotHolderLocked(booking.BookingDate, booking.StartTime, "") != nil {
		return nil, fmt.Errorf("%w: Create - %s %s", ErrSlotTaken, booking.BookingDate.Format(domain.DateFormat), booking.StartTime)
	}

	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := r.now()
	booking.BookingDate = domain.DateOnly(booking.BookingDate)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	stored := *booking
	r.bookings[stored.ID] = &stored

	return booking, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	booking := *stored
	return &booking, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := r.collectLocked(func(*domain.Booking) bool { return true })
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryRepository) ListByDate(_ context.Context, date time.Time) ([]*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := domain.DateOnly(date)
	result := r.collectLocked(func(b *domain.Booking) bool {
		return b.IsActive() && b.BookingDate.Equal(day)
	})
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartTime.IsBefore(result[j].StartTime)
	})
	return result, nil
}

func (r *MemoryRepository) GetActiveBySlot(_ context.Context, date time.Time, start types.TimeString) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	holder := r.slotHolderLocked(date, start, "")
	if holder == nil {
		return nil, ErrBookingNotFound
	}
	booking := *holder
	return &booking, nil
}

func (r *MemoryRepository) ListUpcoming(_ context.Context, until time.Time) ([]*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := r.collectLocked(func(b *domain.Booking) bool {
		return b.IsQueued()
	})
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].BookingDate.Equal(result[j].BookingDate) {
			return result[i].BookingDate.Before(result[j].BookingDate)
		}
		return result[i].StartTime.IsBefore(result[j].StartTime)
	})
	return filterUntil(result, until), nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, patch domain.BookingPatch) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	if stored.Status != domain.StatusQueued {
		return nil, fmt.Errorf("%w: Update - booking %s is %s", ErrStatusConflict, id, stored.Status)
	}

	updated, err := patch.Apply(*stored)
	if err != nil {
		return nil, err
	}

	if updated.IsActive() && r.slotHolderLocked(updated.BookingDate, updated.StartTime, id) != nil {
		return nil, fmt.Errorf("%w: Update - %s %s", ErrSlotTaken, updated.BookingDate.Format(domain.DateFormat), updated.StartTime)
	}

	updated.UpdatedAt = r.now()
	*stored = updated

	booking := updated
	return &booking, nil
}

func (r *MemoryRepository) Transition(_ context.Context, id string, from, to domain.BookingStatus) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	if stored.Status != from {
		return nil, fmt.Errorf("%w: Transition - booking %s is no longer %s", ErrStatusConflict, id, from)
	}

	stored.Status = to
	stored.UpdatedAt = r.now()

	booking := *stored
	return &booking, nil
}

func (r *MemoryRepository) MarkSent(_ context.Context, id string, channel domain.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.bookings[id]
	if !ok {
		return ErrBookingNotFound
	}

	switch channel {
	case domain.ChannelEmail:
		stored.EmailSent = true
	case domain.ChannelSMS:
		stored.SMSSent = true
	case domain.ChannelPush:
		stored.PushSent = true
	default:
		return fmt.Errorf("%w: %s", ErrUnknownChannel, channel)
	}
	stored.UpdatedAt = r.now()

	return nil
}

func (r *MemoryRepository) slotHolderLocked(date time.Time, start types.TimeString, excludeID string) *domain.Booking {
	day := domain.DateOnly(date)
	for id, b := range r.bookings {
		if id == excludeID || !b.IsActive() {
			continue
		}
		if b.BookingDate.Equal(day) && b.StartTime == start {
			return b
		}
	}
	return nil
}

func (r *MemoryRepository) collectLocked(match func(*domain.Booking) bool) []*domain.Booking {
	result := make([]*domain.Booking, 0, len(r.bookings))
	for _, stored := range r.bookings {
		if !match(stored) {
			continue
		}
		booking := *stored
		result = append(result, &booking)
	}
	return result
}
