package update_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CallBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CallBookingService/internal/service/bookings"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "бронирование не найдено"
	msgInvalidTime        = "некорректный формат времени начала, ожидается HH:mm"
	msgInvalidAlignment   = "время начала должно быть кратно 15 минутам"
	msgCannotUpdate       = "изменять можно только бронирование в очереди"
	msgSlotNotAvailable   = "выбранный временной слот уже занят"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/bookings/{bookingId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.BookingIDFromPath(r)
	if err != nil {
		h.logger.Warn("PUT /bookings/{id} - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req UpdateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /bookings/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), bookingID, req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("PUT /bookings/{id} - Booking not found: booking_id=%s", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrInvalidFormat):
			h.logger.Warn("PUT /bookings/{id} - Invalid start time: booking_id=%s", bookingID)
			handlers.RespondBadRequest(w, msgInvalidTime)

		case errors.Is(err, bookings.ErrInvalidMinuteAlignment):
			h.logger.Warn("PUT /bookings/{id} - Unaligned start time: booking_id=%s", bookingID)
			handlers.RespondBadRequest(w, msgInvalidAlignment)

		case errors.Is(err, bookings.ErrInvalidState):
			h.logger.Warn("PUT /bookings/{id} - Cannot update: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondConflict(w, msgCannotUpdate)

		case errors.Is(err, bookings.ErrSlotConflict):
			h.logger.Warn("PUT /bookings/{id} - Slot not available: booking_id=%s", bookingID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		default:
			h.logger.Error("PUT /bookings/{id} - Failed to update booking: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /bookings/{id} - Booking updated successfully: booking_id=%s", bookingID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
