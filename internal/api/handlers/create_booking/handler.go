package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CallBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CallBookingService/internal/service/bookings/models"
	createBooking "github.com/m04kA/SMC-CallBookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTime        = "некорректный формат времени начала, ожидается HH:mm"
	msgInvalidAlignment   = "время начала должно быть кратно 15 минутам"
	msgSlotNotAvailable   = "выбранный временной слот уже занят"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if !result.IsSuccess() {
		switch {
		case errors.Is(result.Err, createBooking.ErrInvalidFormat):
			h.logger.Warn("POST /bookings - Invalid start time: start_time=%q", req.StartTime)
			handlers.RespondBadRequest(w, msgInvalidTime)

		case errors.Is(result.Err, createBooking.ErrInvalidMinuteAlignment):
			h.logger.Warn("POST /bookings - Unaligned start time: start_time=%q", req.StartTime)
			handlers.RespondBadRequest(w, msgInvalidAlignment)

		case errors.Is(result.Err, createBooking.ErrSlotConflict):
			h.logger.Warn("POST /bookings - Slot not available: start_time=%s", req.StartTime)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: start_time=%s, error=%s",
				req.StartTime, result.Message)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%s, start_time=%s",
		result.Booking.ID, result.Booking.StartTime)
	handlers.RespondJSON(w, http.StatusCreated, models.FromDomainBooking(result.Booking))
}
