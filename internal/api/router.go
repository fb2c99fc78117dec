package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/SMC-CallBookingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-CallBookingService/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-CallBookingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-CallBookingService/internal/api/handlers/get_booking"
	listBookingsHandler "github.com/m04kA/SMC-CallBookingService/internal/api/handlers/list_bookings"
	rejectBookingHandler "github.com/m04kA/SMC-CallBookingService/internal/api/handlers/reject_booking"
	updateBookingHandler "github.com/m04kA/SMC-CallBookingService/internal/api/handlers/update_booking"
	"github.com/m04kA/SMC-CallBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CallBookingService/internal/service/bookings"
	createBookingUC "github.com/m04kA/SMC-CallBookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-CallBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-CallBookingService/pkg/logger"
	"github.com/m04kA/SMC-CallBookingService/pkg/metrics"
)

// Dependencies зависимости HTTP слоя
type Dependencies struct {
	Bookings          *bookings.Service
	CreateBooking     *createBookingUC.UseCase
	GetAvailableSlots *getAvailableSlotsUC.UseCase
	Logger            *logger.Logger

	// Metrics nil отключает HTTP метрики и endpoint метрик
	Metrics     *metrics.Metrics
	MetricsPath string
}

// NewRouter собирает маршруты сервиса
func NewRouter(deps Dependencies) *mux.Router {
	createBooking := createBookingHandler.NewHandler(deps.CreateBooking, deps.Logger)
	listBookings := listBookingsHandler.NewHandler(deps.Bookings, deps.Logger)
	getBooking := getBookingHandler.NewHandler(deps.Bookings, deps.Logger)
	updateBooking := updateBookingHandler.NewHandler(deps.Bookings, deps.Logger)
	cancelBooking := cancelBookingHandler.NewHandler(deps.Bookings, deps.Logger)
	rejectBooking := rejectBookingHandler.NewHandler(deps.Bookings, deps.Logger)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(deps.GetAvailableSlots, deps.Logger)

	r := mux.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))

	if deps.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(deps.Metrics))
		r.Handle(deps.MetricsPath, promhttp.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Бронирования ---
	api.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings", listBookings.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}", updateBooking.Handle).Methods(http.MethodPut)
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}/reject", rejectBooking.Handle).Methods(http.MethodPost)

	// --- Слоты ---
	api.HandleFunc("/slots/available", getAvailableSlots.Handle).Methods(http.MethodGet)

	return r
}
