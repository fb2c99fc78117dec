package scheduler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/m04kA/SMC-CallBookingService/internal/usecase/dispatch_reminders"
)

const (
	resultCompleted = "completed"
	resultFailed    = "failed"
	resultSkipped   = "skipped"
)

type reminderDispatcher interface {
	Execute(ctx context.Context) (*dispatch_reminders.Report, error)
}

type tickMetrics interface {
	ObserveDispatchTick(result string, duration time.Duration)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Scheduler периодически запускает диспетчер напоминаний
// Одновременно выполняется не больше одного прохода: тик, заставший предыдущий проход, пропускается
type Scheduler struct {
	dispatcher reminderDispatcher
	interval   time.Duration
	metrics    tickMetrics
	logger     Logger

	running *semaphore.Weighted
	wg      sync.WaitGroup
}

func New(
	dispatcher reminderDispatcher,
	interval time.Duration,
	metrics tickMetrics,
	logger Logger,
) *Scheduler {
	return &Scheduler{
		dispatcher: dispatcher,
		interval:   interval,
		metrics:    metrics,
		logger:     logger,
		running:    semaphore.NewWeighted(1),
	}
}

// Start блокируется до отмены ctx. Первый проход запускается сразу
// После отмены дожидается завершения текущего прохода
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Scheduler: started, interval=%s", s.interval)

	s.TryRun(ctx)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.logger.Info("Scheduler: stopped")
			return nil
		case <-ticker.C:
			s.TryRun(ctx)
		}
	}
}

// TryRun запускает проход в фоне, если предыдущий уже завершился
// Возвращает false, если тик пропущен
func (s *Scheduler) TryRun(ctx context.Context) bool {
	if !s.running.TryAcquire(1) {
		s.logger.Warn("Scheduler: previous dispatch still running, tick skipped")
		s.metrics.ObserveDispatchTick(resultSkipped, 0)
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Release(1)
		s.tick(ctx)
	}()

	return true
}

func (s *Scheduler) tick(ctx context.Context) {
	started := time.Now()

	report, err := s.dispatcher.Execute(ctx)
	if err != nil {
		s.logger.Error("Scheduler: dispatch failed: %v", err)
		s.metrics.ObserveDispatchTick(resultFailed, time.Since(started))
		return
	}

	s.metrics.ObserveDispatchTick(resultCompleted, time.Since(started))

	if report.Failed > 0 {
		s.logger.Warn("Scheduler: dispatch finished with %d failures (sent=%d, completed=%d)",
			report.Failed, report.Sent, report.Completed)
	}
}
