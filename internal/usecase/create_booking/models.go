package create_booking

import "github.com/m04kA/SMC-CallBookingService/internal/domain"

// Статусы результата создания
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Request модель запроса на создание бронирования
// Дата не передается: бронирование всегда создается на текущий календарный день
type Request struct {
	StartTime    string // Время начала слота, "HH:mm"
	Email        string
	Phone        string
	PushKey      string
	ReceiveEmail bool
	ReceiveSMS   bool
	ReceivePush  bool
}

// Result результат создания: успех с бронированием или ошибка с сообщением
type Result struct {
	Status  string
	Booking *domain.Booking
	Message string
	Err     error // сентинел для маппинга в транспортный статус
}

// IsSuccess returns true if the booking was created
func (r *Result) IsSuccess() bool {
	return r.Status == ResultSuccess
}

func success(booking *domain.Booking) *Result {
	return &Result{Status: ResultSuccess, Booking: booking}
}

func failure(err error) *Result {
	return &Result{Status: ResultError, Message: err.Error(), Err: err}
}
