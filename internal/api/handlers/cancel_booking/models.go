package cancel_booking

import (
	"github.com/m04kA/SMC-CallBookingService/internal/service/bookings/models"
)

// CancelBookingRequest HTTP request model, тело запроса может отсутствовать
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelBookingRequest) ToServiceRequest() *models.CancelBookingRequest {
	return &models.CancelBookingRequest{Reason: r.Reason}
}
