package get_available_slots

import (
	"net/http"

	"github.com/m04kA/SMC-CallBookingService/internal/api/handlers"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/slots/available
// Возвращает еще не начавшиеся свободные слоты текущего дня
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.useCase.Execute(r.Context())
	if err != nil {
		h.logger.Error("GET /slots/available - Failed to get available slots: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /slots/available - Available slots retrieved successfully: date=%s, count=%d",
		response.Date, len(response.Slots))
	handlers.RespondJSON(w, http.StatusOK, response)
}
