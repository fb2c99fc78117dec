package domain

import (
	"time"

	"github.com/m04kA/SMC-CallBookingService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusQueued     BookingStatus = "QUEUED"
	StatusSuccessful BookingStatus = "SUCCESSFUL"
	StatusCancelled  BookingStatus = "CANCELLED"
	StatusRejected   BookingStatus = "REJECTED"
)

// Channel канал напоминаний
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

// Booking represents a 15-minute call slot reservation
type Booking struct {
	ID          string
	StartTime   types.TimeString
	EndTime     types.TimeString // всегда StartTime + SlotDurationMinutes
	BookingDate time.Time        // полночь дня слота в зоне процесса
	Status      BookingStatus

	// Контакты участника (не валидируются ядром)
	Email   string
	Phone   string
	PushKey string

	ReceiveEmail bool
	ReceiveSMS   bool
	ReceivePush  bool

	// Флаги отправленных напоминаний, монотонные: true никогда не сбрасывается
	EmailSent bool
	SMSSent   bool
	PushSent  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsQueued returns true if the booking still awaits its slot
func (b *Booking) IsQueued() bool {
	return b.Status == StatusQueued
}

// IsActive returns true if the booking holds its slot (everything except cancelled)
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// CanTransitionTo returns true if the status change is an edge of the lifecycle
// QUEUED -> {SUCCESSFUL, CANCELLED, REJECTED}; остальные статусы терминальные
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	if b.Status != StatusQueued {
		return false
	}
	switch next {
	case StatusSuccessful, StatusCancelled, StatusRejected:
		return true
	default:
		return false
	}
}

// Wants returns true if the participant opted in for the channel
func (b *Booking) Wants(c Channel) bool {
	switch c {
	case ChannelEmail:
		return b.ReceiveEmail
	case ChannelSMS:
		return b.ReceiveSMS
	case ChannelPush:
		return b.ReceivePush
	default:
		return false
	}
}

// Sent returns true if the channel reminder was already dispatched
func (b *Booking) Sent(c Channel) bool {
	switch c {
	case ChannelEmail:
		return b.EmailSent
	case ChannelSMS:
		return b.SMSSent
	case ChannelPush:
		return b.PushSent
	default:
		return false
	}
}

// Recipient returns the contact used for the channel
func (b *Booking) Recipient(c Channel) string {
	switch c {
	case ChannelEmail:
		return b.Email
	case ChannelSMS:
		return b.Phone
	case ChannelPush:
		return b.PushKey
	default:
		return ""
	}
}

// SlotInstant returns the absolute start of the slot
func (b *Booking) SlotInstant() (time.Time, error) {
	return Combine(b.BookingDate, b.StartTime)
}

// BookingPatch частичное обновление бронирования
// nil означает "не менять". EndTime здесь нет: он всегда вычисляется из StartTime
type BookingPatch struct {
	StartTime    *types.TimeString
	Email        *string
	Phone        *string
	PushKey      *string
	ReceiveEmail *bool
	ReceiveSMS   *bool
	ReceivePush  *bool
}

// IsEmpty returns true if the patch changes nothing
func (p BookingPatch) IsEmpty() bool {
	return p.StartTime == nil &&
		p.Email == nil &&
		p.Phone == nil &&
		p.PushKey == nil &&
		p.ReceiveEmail == nil &&
		p.ReceiveSMS == nil &&
		p.ReceivePush == nil
}

// Apply применяет патч к копии бронирования, пересчитывая EndTime
func (p BookingPatch) Apply(b Booking) (Booking, error) {
	if p.StartTime != nil {
		end, err := SlotEnd(*p.StartTime)
		if err != nil {
			return b, err
		}
		b.StartTime = *p.StartTime
		b.EndTime = end
	}
	if p.Email != nil {
		b.Email = *p.Email
	}
	if p.Phone != nil {
		b.Phone = *p.Phone
	}
	if p.PushKey != nil {
		b.PushKey = *p.PushKey
	}
	if p.ReceiveEmail != nil {
		b.ReceiveEmail = *p.ReceiveEmail
	}
	if p.ReceiveSMS != nil {
		b.ReceiveSMS = *p.ReceiveSMS
	}
	if p.ReceivePush != nil {
		b.ReceivePush = *p.ReceivePush
	}
	return b, nil
}
