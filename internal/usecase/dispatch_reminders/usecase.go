package dispatch_reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CallBookingService/internal/domain"
)

// UseCase один проход диспетчера напоминаний
type UseCase struct {
	bookingRepo  BookingRepository
	completer    BookingCompleter
	notifier     NotificationGateway
	metrics      Metrics
	cfg          Config
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	completer BookingCompleter,
	notifier NotificationGateway,
	metrics Metrics,
	cfg Config,
	logger Logger,
) (*UseCase, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		completer:    completer,
		notifier:     notifier,
		metrics:      metrics,
		cfg:          cfg,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}, nil
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет один проход
// Для каждого бронирования в статусе QUEUED в горизонте:
// наступившее завершается без напоминаний, иначе по каждому каналу отправляется
// напоминание, если участник на него подписан, оно еще не отправлено и now в окне канала.
// Ошибка по одному бронированию не прерывает проход
func (uc *UseCase) Execute(ctx context.Context) (*Report, error) {
	now := uc.timeProvider.Now()
	until := now.Add(uc.cfg.Lookahead)

	upcoming, err := uc.bookingRepo.ListUpcoming(ctx, until)
	if err != nil {
		uc.logger.Error("DispatchReminders: failed to list bookings until %s: %v", until.Format(time.RFC3339), err)
		return nil, fmt.Errorf("%w: %v", ErrListUpcoming, err)
	}

	report := &Report{Scanned: len(upcoming)}
	pending := make([]pendingSend, 0)

	for _, booking := range upcoming {
		instant, err := booking.SlotInstant()
		if err != nil {
			uc.logger.Error("DispatchReminders: booking id=%s has invalid slot: %v", booking.ID, err)
			report.Failed++
			continue
		}

		if !instant.After(now) {
			if _, err := uc.completer.Complete(ctx, booking.ID, now); err != nil {
				uc.logger.Warn("DispatchReminders: failed to complete booking id=%s: %v", booking.ID, err)
				report.Failed++
				continue
			}
			uc.logger.Info("DispatchReminders: booking id=%s completed", booking.ID)
			report.Completed++
			continue
		}

		for _, rule := range domain.ReminderSchedule {
			if !booking.Wants(rule.Channel) || booking.Sent(rule.Channel) {
				continue
			}
			if !domain.IsWithinLeadWindow(instant, now, rule.LeadMinutes) {
				continue
			}

			pending = append(pending, pendingSend{
				booking: booking,
				rule:    rule,
				result:  uc.notifier.Send(ctx, rule.Pattern, domain.ReminderNotification(booking, rule.Channel)),
			})
		}
	}

	uc.awaitSends(ctx, pending, report)

	if report.Completed > 0 || report.Sent > 0 || report.Failed > 0 {
		uc.logger.Info("DispatchReminders: scanned=%d completed=%d sent=%d failed=%d",
			report.Scanned, report.Completed, report.Sent, report.Failed)
	}

	return report, nil
}

// awaitSends собирает результаты всех отправок прохода под одним таймаутом
// Флаг канала поднимается только после успешного результата
func (uc *UseCase) awaitSends(ctx context.Context, pending []pendingSend, report *Report) {
	if len(pending) == 0 {
		return
	}

	waitCtx, cancel := context.WithTimeout(ctx, uc.cfg.SendTimeout)
	defer cancel()

	for _, p := range pending {
		var res domain.SendResult
		select {
		case r, ok := <-p.result:
			if ok {
				res = r
			} else {
				res = domain.SendResult{Message: "result channel closed"}
			}
		case <-waitCtx.Done():
			res = domain.SendResult{Message: fmt.Sprintf("no result: %v", waitCtx.Err())}
		}

		if !res.Success {
			uc.logger.Warn("DispatchReminders: %s reminder for booking id=%s failed: %s",
				p.rule.Channel, p.booking.ID, res.Message)
			uc.metrics.ObserveReminder(string(p.rule.Channel), ResultFailed)
			report.Failed++
			continue
		}

		if err := uc.bookingRepo.MarkSent(ctx, p.booking.ID, p.rule.Channel); err != nil {
			// Сообщение ушло, но флаг не записан: в пределах окна возможна повторная отправка
			uc.logger.Error("DispatchReminders: failed to mark %s sent for booking id=%s: %v",
				p.rule.Channel, p.booking.ID, err)
			uc.metrics.ObserveReminder(string(p.rule.Channel), ResultFailed)
			report.Failed++
			continue
		}

		uc.logger.Info("DispatchReminders: %s reminder sent for booking id=%s", p.rule.Channel, p.booking.ID)
		uc.metrics.ObserveReminder(string(p.rule.Channel), ResultSent)
		report.Sent++
	}
}
