package update_booking

import (
	"github.com/m04kA/SMC-CallBookingService/internal/service/bookings/models"
)

// UpdateBookingRequest HTTP request model
// endTime в теле игнорируется: он всегда вычисляется из startTime
type UpdateBookingRequest struct {
	StartTime               *string `json:"startTime,omitempty"`
	EndTime                 *string `json:"endTime,omitempty"`
	Email                   *string `json:"email,omitempty"`
	Phone                   *string `json:"phone,omitempty"`
	PushNotificationKey     *string `json:"pushNotificationKey,omitempty"`
	ReceiveEmail            *bool   `json:"receiveEmail,omitempty"`
	ReceiveSmsNotification  *bool   `json:"receiveSmsNotification,omitempty"`
	ReceivePushNotification *bool   `json:"receivePushNotification,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateBookingRequest) ToServiceRequest() *models.UpdateBookingRequest {
	return &models.UpdateBookingRequest{
		StartTime:               r.StartTime,
		Email:                   r.Email,
		Phone:                   r.Phone,
		PushNotificationKey:     r.PushNotificationKey,
		ReceiveEmail:            r.ReceiveEmail,
		ReceiveSmsNotification:  r.ReceiveSmsNotification,
		ReceivePushNotification: r.ReceivePushNotification,
	}
}
