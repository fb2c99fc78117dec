package models

import (
	"time"

	"github.com/m04kA/SMC-CallBookingService/internal/domain"
)

// Request модели

// UpdateBookingRequest частичное обновление бронирования
// Отсутствующее поле (nil) не меняется. endTime не принимается: он вычисляется из startTime
type UpdateBookingRequest struct {
	StartTime               *string `json:"startTime,omitempty"`
	Email                   *string `json:"email,omitempty"`
	Phone                   *string `json:"phone,omitempty"`
	PushNotificationKey     *string `json:"pushNotificationKey,omitempty"`
	ReceiveEmail            *bool   `json:"receiveEmail,omitempty"`
	ReceiveSmsNotification  *bool   `json:"receiveSmsNotification,omitempty"`
	ReceivePushNotification *bool   `json:"receivePushNotification,omitempty"`
}

// CancelBookingRequest запрос на отмену бронирования, причина опциональна
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// RejectBookingRequest запрос на отклонение бронирования, причина обязательна
type RejectBookingRequest struct {
	Reason string `json:"reason"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID                      string    `json:"id"`
	StartTime               string    `json:"startTime"`   // "13:15"
	EndTime                 string    `json:"endTime"`     // "13:30"
	BookingDate             string    `json:"bookingDate"` // "2025-10-15"
	Email                   string    `json:"email"`
	Phone                   string    `json:"phone"`
	PushNotificationKey     string    `json:"pushNotificationKey"`
	Status                  string    `json:"status"`
	ReceiveEmail            bool      `json:"receiveEmail"`
	ReceiveSmsNotification  bool      `json:"receiveSmsNotification"`
	ReceivePushNotification bool      `json:"receivePushNotification"`
	EmailSent               bool      `json:"emailSent"`
	SmsSent                 bool      `json:"smsSent"`
	PushSent                bool      `json:"pushSent"`
	CreatedTime             time.Time `json:"createdTime"`
	UpdatedTime             time.Time `json:"updatedTime"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		ID:                      b.ID,
		StartTime:               b.StartTime.String(),
		EndTime:                 b.EndTime.String(),
		BookingDate:             b.BookingDate.Format(domain.DateFormat),
		Email:                   b.Email,
		Phone:                   b.Phone,
		PushNotificationKey:     b.PushKey,
		Status:                  string(b.Status),
		ReceiveEmail:            b.ReceiveEmail,
		ReceiveSmsNotification:  b.ReceiveSMS,
		ReceivePushNotification: b.ReceivePush,
		EmailSent:               b.EmailSent,
		SmsSent:                 b.SMSSent,
		PushSent:                b.PushSent,
		CreatedTime:             b.CreatedAt,
		UpdatedTime:             b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(b))
	}

	return resp
}
