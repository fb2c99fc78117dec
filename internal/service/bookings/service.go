package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-CallBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CallBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CallBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-CallBookingService/pkg/txmanager"
)

// Service сервис жизненного цикла бронирований
type Service struct {
	bookingRepo BookingRepository
	notifier    NotificationGateway
	txManager   TransactionManager
	metrics     Metrics
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	notifier NotificationGateway,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		notifier:    notifier,
		txManager:   txManager,
		metrics:     metrics,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id string) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s", id)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// List возвращает все бронирования, сначала новые
func (s *Service) List(ctx context.Context) (*models.BookingListResponse, error) {
	bookings, err := s.bookingRepo.List(ctx)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d bookings", len(bookings))
	return models.FromDomainBookingList(bookings), nil
}

// Update частично обновляет бронирование в статусе QUEUED
// Новый startTime проверяется на занятость в пределах даты бронирования, само бронирование не считается конфликтом
func (s *Service) Update(ctx context.Context, id string, req *models.UpdateBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Update: updating booking id=%s", id)

	patch, err := toPatch(req)
	if err != nil {
		s.logger.Warn("Update: invalid request for booking id=%s: %v", id, err)
		return nil, err
	}

	var updated *domain.Booking

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := s.getBooking(txCtx, "Update", id)
		if err != nil {
			return err
		}

		if !booking.IsQueued() {
			s.logger.Warn("Update: booking id=%s has status=%s", id, booking.Status)
			return fmt.Errorf("%w: status is %s", ErrInvalidState, booking.Status)
		}

		if patch.StartTime != nil {
			holder, err := s.bookingRepo.GetActiveBySlot(txCtx, booking.BookingDate, *patch.StartTime)
			switch {
			case err == nil && holder.ID != booking.ID:
				s.logger.Warn("Update: slot %s already held by booking id=%s", *patch.StartTime, holder.ID)
				return ErrSlotConflict
			case err != nil && !errors.Is(err, bookingRepo.ErrBookingNotFound):
				return err
			}
		}

		updated, err = s.bookingRepo.Update(txCtx, id, patch)
		return err
	})
	if err != nil {
		if errors.Is(err, txmanager.ErrSerialization) {
			if stateErr := s.checkStillQueued(ctx, "Update", id); stateErr != nil {
				return nil, stateErr
			}
		}
		return nil, s.mapError("Update", id, err)
	}

	s.logger.Info("Update: booking id=%s updated, startTime=%s", id, updated.StartTime)

	s.notify(ctx, "Update", domain.PatternEmail, domain.UpdatedNotification(updated))

	return models.FromDomainBooking(updated), nil
}

// Cancel отменяет бронирование в статусе QUEUED. Отмена освобождает слот
func (s *Service) Cancel(ctx context.Context, id string, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%s", id)

	var reason string
	if req != nil && req.Reason != nil {
		reason = strings.TrimSpace(*req.Reason)
	}
	if len(reason) > domain.MaxReasonLength {
		return nil, fmt.Errorf("%w: reason must be at most %d characters", ErrInvalidInput, domain.MaxReasonLength)
	}

	cancelled, err := s.transition(ctx, "Cancel", id, domain.StatusCancelled)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "Cancel", domain.PatternEmail, domain.CancelledNotification(cancelled, reason))
	subject, text := domain.AdminCancelledText(cancelled, reason)
	s.notifyAdmin(ctx, "Cancel", subject, text)

	return models.FromDomainBooking(cancelled), nil
}

// Reject отклоняет бронирование в статусе QUEUED. Отклоненное бронирование продолжает занимать слот
func (s *Service) Reject(ctx context.Context, id string, req *models.RejectBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Reject: rejecting booking id=%s", id)

	if req == nil || strings.TrimSpace(req.Reason) == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	reason := strings.TrimSpace(req.Reason)
	if len(reason) > domain.MaxReasonLength {
		return nil, fmt.Errorf("%w: reason must be at most %d characters", ErrInvalidInput, domain.MaxReasonLength)
	}

	rejected, err := s.transition(ctx, "Reject", id, domain.StatusRejected)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "Reject", domain.PatternEmail, domain.RejectedNotification(rejected, reason))
	subject, text := domain.AdminRejectedText(rejected, reason)
	s.notifyAdmin(ctx, "Reject", subject, text)

	return models.FromDomainBooking(rejected), nil
}

// Complete переводит бронирование в SUCCESSFUL, когда момент начала слота уже наступил
// Вызывается только диспетчером напоминаний
func (s *Service) Complete(ctx context.Context, id string, now time.Time) (*domain.Booking, error) {
	booking, err := s.getBooking(ctx, "Complete", id)
	if err != nil {
		return nil, err
	}

	instant, err := booking.SlotInstant()
	if err != nil {
		return nil, fmt.Errorf("%w: Complete - slot instant: %v", ErrInternal, err)
	}
	if instant.After(now) {
		return nil, fmt.Errorf("%w: slot %s has not started yet", ErrInvalidState, instant.Format(time.RFC3339))
	}

	return s.transition(ctx, "Complete", id, domain.StatusSuccessful)
}

// transition проверяет допустимость перехода и выполняет его условной записью
func (s *Service) transition(ctx context.Context, op, id string, to domain.BookingStatus) (*domain.Booking, error) {
	booking, err := s.getBooking(ctx, op, id)
	if err != nil {
		return nil, err
	}

	if !booking.CanTransitionTo(to) {
		s.logger.Warn("%s: booking id=%s has status=%s", op, id, booking.Status)
		return nil, fmt.Errorf("%w: status is %s", ErrInvalidState, booking.Status)
	}

	updated, err := s.bookingRepo.Transition(ctx, id, domain.StatusQueued, to)
	if err != nil {
		return nil, s.mapError(op, id, err)
	}

	s.metrics.ObserveStatusTransition(string(to))
	s.logger.Info("%s: booking id=%s moved to %s", op, id, to)

	return updated, nil
}

func (s *Service) getBooking(ctx context.Context, op, id string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%s not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// checkStillQueued перечитывает статус после конфликта сериализации:
// если параллельная транзакция вывела бронирование из очереди, это ErrInvalidState, а не конфликт слота
func (s *Service) checkStillQueued(ctx context.Context, op, id string) error {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil
	}
	if !booking.IsQueued() {
		s.logger.Warn("%s: booking id=%s moved to %s concurrently", op, id, booking.Status)
		return fmt.Errorf("%w: status is %s", ErrInvalidState, booking.Status)
	}
	return nil
}

// mapError переводит ошибки хранилища и транзакций в ошибки сервиса
func (s *Service) mapError(op, id string, err error) error {
	switch {
	case errors.Is(err, ErrBookingNotFound),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrSlotConflict),
		errors.Is(err, ErrInternal):
		return err
	case errors.Is(err, bookingRepo.ErrBookingNotFound):
		return ErrBookingNotFound
	case errors.Is(err, bookingRepo.ErrStatusConflict):
		s.logger.Warn("%s: booking id=%s changed status concurrently", op, id)
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	case errors.Is(err, bookingRepo.ErrSlotTaken), errors.Is(err, txmanager.ErrSerialization):
		s.logger.Warn("%s: concurrent write for booking id=%s: %v", op, id, err)
		return ErrSlotConflict
	default:
		s.logger.Error("%s: repository error for booking id=%s: %v", op, id, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
}

// notify отправляет уведомление участнику, результат только логируется
func (s *Service) notify(ctx context.Context, op, pattern string, n domain.Notification) {
	resultCh := s.notifier.Send(context.WithoutCancel(ctx), pattern, n)
	go s.logResult(op, n.BookingID, resultCh)
}

func (s *Service) notifyAdmin(ctx context.Context, op, subject, text string) {
	resultCh := s.notifier.SendAdmin(context.WithoutCancel(ctx), subject, text)
	go s.logResult(op, "admin", resultCh)
}

func (s *Service) logResult(op, target string, resultCh <-chan domain.SendResult) {
	res := <-resultCh
	if !res.Success {
		s.logger.Warn("%s: notification for %s not sent: %s", op, target, res.Message)
		return
	}
	s.logger.Info("%s: notification for %s sent: %s", op, target, res.Message)
}

// toPatch валидирует запрос и строит типизированный патч
func toPatch(req *models.UpdateBookingRequest) (domain.BookingPatch, error) {
	var patch domain.BookingPatch
	if req == nil {
		return patch, nil
	}

	if req.StartTime != nil {
		start, err := domain.ParseSlotStart(*req.StartTime)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidMinuteAlignment) {
				return patch, fmt.Errorf("%w: %v", ErrInvalidMinuteAlignment, err)
			}
			return patch, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		patch.StartTime = &start
	}

	patch.Email = req.Email
	patch.Phone = req.Phone
	patch.PushKey = req.PushNotificationKey
	patch.ReceiveEmail = req.ReceiveEmail
	patch.ReceiveSMS = req.ReceiveSmsNotification
	patch.ReceivePush = req.ReceivePushNotification

	return patch, nil
}
