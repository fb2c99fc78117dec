package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CallBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CallBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CallBookingService/pkg/txmanager"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	notifier     NotificationGateway
	txManager    TransactionManager
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	notifier NotificationGateway,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		notifier:     notifier,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания бронирования
// Ошибки не пробрасываются вызывающему: валидация, конфликт слота и сбои хранилища
// возвращаются в Result со статусом "error"
func (uc *UseCase) Execute(ctx context.Context, req *Request) *Result {
	uc.logger.Info("CreateBooking: startTime=%s, email=%t, sms=%t, push=%t",
		req.StartTime, req.ReceiveEmail, req.ReceiveSMS, req.ReceivePush)

	start, err := domain.ParseSlotStart(req.StartTime)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return failure(mapDomainError(err))
	}

	end, err := domain.SlotEnd(start)
	if err != nil {
		uc.logger.Warn("CreateBooking: failed to compute end time for %s: %v", start, err)
		return failure(mapDomainError(err))
	}

	today := domain.DateOnly(uc.timeProvider.Now())

	var created *domain.Booking

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		existing, err := uc.bookingRepo.GetActiveBySlot(txCtx, today, start)
		if err == nil {
			uc.logger.Warn("CreateBooking: slot %s %s already held by booking id=%s",
				today.Format(domain.DateFormat), start, existing.ID)
			return ErrSlotConflict
		}
		if !errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return err
		}

		booking := &domain.Booking{
			StartTime:    start,
			EndTime:      end,
			BookingDate:  today,
			Status:       domain.StatusQueued,
			Email:        req.Email,
			Phone:        req.Phone,
			PushKey:      req.PushKey,
			ReceiveEmail: req.ReceiveEmail,
			ReceiveSMS:   req.ReceiveSMS,
			ReceivePush:  req.ReceivePush,
		}

		created, err = uc.bookingRepo.Create(txCtx, booking)
		return err
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrSlotConflict):
			return failure(ErrSlotConflict)
		case errors.Is(err, bookingRepo.ErrSlotTaken), errors.Is(err, txmanager.ErrSerialization):
			// Параллельное создание на тот же слот проиграло гонку
			uc.logger.Warn("CreateBooking: concurrent booking for slot %s: %v", start, err)
			return failure(ErrSlotConflict)
		default:
			uc.logger.Error("CreateBooking: failed to create booking for slot %s: %v", start, err)
			return failure(fmt.Errorf("%w: %v", ErrInternal, err))
		}
	}

	uc.metrics.ObserveStatusTransition(string(domain.StatusQueued))
	uc.logger.Info("CreateBooking: created booking id=%s for %s %s",
		created.ID, created.BookingDate.Format(domain.DateFormat), created.StartTime)

	uc.notifyCreated(ctx, created)

	return success(created)
}

// notifyCreated отправляет подтверждение, не дожидаясь результата
func (uc *UseCase) notifyCreated(ctx context.Context, booking *domain.Booking) {
	resultCh := uc.notifier.Send(context.WithoutCancel(ctx), domain.PatternEmail, domain.CreatedNotification(booking))

	go func() {
		res := <-resultCh
		if !res.Success {
			uc.logger.Warn("CreateBooking: confirmation for booking id=%s not sent: %s", booking.ID, res.Message)
			return
		}
		uc.logger.Info("CreateBooking: confirmation sent for booking id=%s: %s", booking.ID, res.Message)
	}()
}

func mapDomainError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidMinuteAlignment):
		return fmt.Errorf("%w: %v", ErrInvalidMinuteAlignment, err)
	case errors.Is(err, domain.ErrInvalidFormat):
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
