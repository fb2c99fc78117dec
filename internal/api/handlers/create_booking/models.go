package create_booking

import (
	createBooking "github.com/m04kA/SMC-CallBookingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	StartTime               string `json:"startTime"` // "13:15"
	Email                   string `json:"email"`
	Phone                   string `json:"phone"`
	PushNotificationKey     string `json:"pushNotificationKey"`
	ReceiveEmail            bool   `json:"receiveEmail"`
	ReceiveSmsNotification  bool   `json:"receiveSmsNotification"`
	ReceivePushNotification bool   `json:"receivePushNotification"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest() *createBooking.Request {
	return &createBooking.Request{
		StartTime:    r.StartTime,
		Email:        r.Email,
		Phone:        r.Phone,
		PushKey:      r.PushNotificationKey,
		ReceiveEmail: r.ReceiveEmail,
		ReceiveSMS:   r.ReceiveSmsNotification,
		ReceivePush:  r.ReceivePushNotification,
	}
}
