package dispatch_reminders

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-CallBookingService/internal/domain"
)

// Результаты отправки для метрик
const (
	ResultSent   = "sent"
	ResultFailed = "failed"
)

// Config параметры одного прохода диспетчера
type Config struct {
	// Lookahead горизонт выборки. Должен покрывать наибольшее упреждение плюс ширину окна
	Lookahead time.Duration
	// SendTimeout общее время ожидания результатов отправок одного прохода
	SendTimeout time.Duration
}

// Validate проверяет, что горизонт не отрезает окна напоминаний
func (c Config) Validate() error {
	minLookahead := time.Duration(domain.MaxReminderLeadMinutes()+domain.LeadWindowMinutes) * time.Minute
	if c.Lookahead < minLookahead {
		return fmt.Errorf("%w: lookahead %s is shorter than %s", ErrInvalidConfig, c.Lookahead, minLookahead)
	}
	if c.SendTimeout <= 0 {
		return fmt.Errorf("%w: send timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Report итоги одного прохода
type Report struct {
	Scanned   int // бронирований в горизонте
	Completed int // переведено в SUCCESSFUL
	Sent      int // успешных напоминаний
	Failed    int // неудачных напоминаний и ошибок по бронированиям
}

type pendingSend struct {
	booking *domain.Booking
	rule    domain.ReminderRule
	result  <-chan domain.SendResult
}
