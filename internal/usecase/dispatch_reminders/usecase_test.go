package dispatch_reminders

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CallBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CallBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CallBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-CallBookingService/pkg/logger"
	"github.com/m04kA/SMC-CallBookingService/pkg/metrics"
	"github.com/m04kA/SMC-CallBookingService/pkg/txmanager"
	"github.com/m04kA/SMC-CallBookingService/pkg/types"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type fakeGateway struct {
	mu       sync.Mutex
	patterns []string
	fail     bool
	silent   bool
}

func (g *fakeGateway) Send(_ context.Context, pattern string, _ domain.Notification) <-chan domain.SendResult {
	g.mu.Lock()
	g.patterns = append(g.patterns, pattern)
	fail, silent := g.fail, g.silent
	g.mu.Unlock()

	ch := make(chan domain.SendResult, 1)
	if silent {
		return ch
	}
	ch <- domain.SendResult{Success: !fail, Message: pattern}
	return ch
}

func (g *fakeGateway) sent() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.patterns...)
}

func (g *fakeGateway) reset() {
	g.mu.Lock()
	g.patterns = nil
	g.mu.Unlock()
}

var day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)

func at(hour, minute, second int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, second, 0, time.Local)
}

type fixture struct {
	repo    *bookingRepo.MemoryRepository
	gateway *fakeGateway
	clock   *clock
	uc      *UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.NewWithWriter(io.Discard, logger.LevelError)
	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())
	repo := bookingRepo.NewMemoryRepository()
	gateway := &fakeGateway{}
	svc := bookings.NewService(repo, silentLifecycleGateway{}, txmanager.NewPassthrough(), m, log)

	uc, err := NewUseCase(repo, svc, gateway, m, Config{
		Lookahead:   15 * time.Minute,
		SendTimeout: 100 * time.Millisecond,
	}, log)
	require.NoError(t, err)

	c := &clock{}
	uc.WithTimeProvider(c)

	return &fixture{repo: repo, gateway: gateway, clock: c, uc: uc}
}

// silentLifecycleGateway уведомления жизненного цикла здесь не проверяются
type silentLifecycleGateway struct{}

func (silentLifecycleGateway) Send(context.Context, string, domain.Notification) <-chan domain.SendResult {
	return closedResult()
}

func (silentLifecycleGateway) SendAdmin(context.Context, string, string) <-chan domain.SendResult {
	return closedResult()
}

func closedResult() <-chan domain.SendResult {
	ch := make(chan domain.SendResult, 1)
	ch <- domain.SendResult{Success: true}
	close(ch)
	return ch
}

func (f *fixture) seed(t *testing.T, start types.TimeString, email, sms, push bool) *domain.Booking {
	t.Helper()
	end, err := domain.SlotEnd(start)
	require.NoError(t, err)
	created, err := f.repo.Create(context.Background(), &domain.Booking{
		BookingDate:  day,
		StartTime:    start,
		EndTime:      end,
		Status:       domain.StatusQueued,
		Email:        "user@example.com",
		Phone:        "+100",
		PushKey:      "key",
		ReceiveEmail: email,
		ReceiveSMS:   sms,
		ReceivePush:  push,
	})
	require.NoError(t, err)
	return created
}

func (f *fixture) tick(t *testing.T, now time.Time) *Report {
	t.Helper()
	f.clock.set(now)
	report, err := f.uc.Execute(context.Background())
	require.NoError(t, err)
	return report
}

func (f *fixture) get(t *testing.T, id string) *domain.Booking {
	t.Helper()
	b, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func TestExecute_EndToEndReminderSequence(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, "13:15", true, true, true)

	f.tick(t, at(13, 0, 0))
	assert.Empty(t, f.gateway.sent())

	report := f.tick(t, at(13, 5, 0))
	assert.Equal(t, []string{domain.PatternEmail}, f.gateway.sent())
	assert.Equal(t, 1, report.Sent)
	assert.True(t, f.get(t, b.ID).EmailSent)

	f.gateway.reset()
	f.tick(t, at(13, 10, 0))
	assert.Equal(t, []string{domain.PatternSMS}, f.gateway.sent())
	assert.True(t, f.get(t, b.ID).SMSSent)

	f.gateway.reset()
	f.tick(t, at(13, 14, 0))
	assert.Equal(t, []string{domain.PatternPush}, f.gateway.sent())
	assert.True(t, f.get(t, b.ID).PushSent)

	f.gateway.reset()
	report = f.tick(t, at(13, 16, 0))
	assert.Empty(t, f.gateway.sent())
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, domain.StatusSuccessful, f.get(t, b.ID).Status)

	f.tick(t, at(13, 17, 0))
	assert.Empty(t, f.gateway.sent())
}

func TestExecute_EmailNotResentWithinWindow(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, "10:00", true, false, false)

	f.tick(t, at(9, 50, 0))
	f.tick(t, at(9, 50, 30))
	f.tick(t, at(9, 52, 0))

	assert.Equal(t, []string{domain.PatternEmail}, f.gateway.sent())
	assert.True(t, f.get(t, b.ID).EmailSent)
}

func TestExecute_LateTickMissesWindow(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, "10:00", true, false, false)

	f.tick(t, at(9, 51, 0))

	assert.Empty(t, f.gateway.sent())
	assert.False(t, f.get(t, b.ID).EmailSent)
}

func TestExecute_FailedSendKeepsFlagAndRetriesInWindow(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, "10:00", false, true, false)

	f.gateway.fail = true
	report := f.tick(t, at(9, 55, 0))
	assert.Equal(t, 1, report.Failed)
	assert.False(t, f.get(t, b.ID).SMSSent)

	f.gateway.fail = false
	report = f.tick(t, at(9, 55, 40))
	assert.Equal(t, 1, report.Sent)
	assert.True(t, f.get(t, b.ID).SMSSent)
}

func TestExecute_StuckSendDoesNotBlockTick(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, "10:00", false, false, true)

	f.gateway.silent = true
	started := time.Now()
	report := f.tick(t, at(9, 59, 0))

	assert.Less(t, time.Since(started), 2*time.Second)
	assert.Equal(t, 1, report.Failed)
	assert.False(t, f.get(t, b.ID).PushSent)
}

func TestExecute_OptOutChannelsAreSkipped(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "10:00", false, false, false)

	f.tick(t, at(9, 50, 0))
	f.tick(t, at(9, 55, 0))
	f.tick(t, at(9, 59, 0))

	assert.Empty(t, f.gateway.sent())
}

func TestExecute_OverdueBookingCompletedWithoutReminders(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, "08:00", true, true, true)

	report := f.tick(t, at(12, 0, 0))

	assert.Equal(t, 1, report.Completed)
	assert.Empty(t, f.gateway.sent())
	assert.Equal(t, domain.StatusSuccessful, f.get(t, b.ID).Status)
}

func TestExecute_CancelledBookingIgnored(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, "10:00", true, true, true)
	_, err := f.repo.Transition(context.Background(), b.ID, domain.StatusQueued, domain.StatusCancelled)
	require.NoError(t, err)

	report := f.tick(t, at(9, 50, 0))
	assert.Zero(t, report.Scanned)
	assert.Empty(t, f.gateway.sent())
}

// flakyRepository отказывает в MarkSent для одного бронирования и, при заданной listErr, в ListUpcoming
type flakyRepository struct {
	*bookingRepo.MemoryRepository
	failMarkID string
	listErr    error
}

func (r *flakyRepository) ListUpcoming(ctx context.Context, until time.Time) ([]*domain.Booking, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.MemoryRepository.ListUpcoming(ctx, until)
}

func (r *flakyRepository) MarkSent(ctx context.Context, id string, channel domain.Channel) error {
	if id == r.failMarkID {
		return errors.New("connection reset by peer")
	}
	return r.MemoryRepository.MarkSent(ctx, id, channel)
}

func (f *fixture) useRepository(t *testing.T, repo BookingRepository) {
	t.Helper()
	uc, err := NewUseCase(repo, f.uc.completer, f.gateway, f.uc.metrics, f.uc.cfg, f.uc.logger)
	require.NoError(t, err)
	f.uc = uc.WithTimeProvider(f.clock)
}

func TestExecute_MarkSentFailureIsolatedToOneBooking(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, "10:00", true, false, false)
	b := f.seed(t, "09:55", false, true, false)
	f.useRepository(t, &flakyRepository{MemoryRepository: f.repo, failMarkID: a.ID})

	report := f.tick(t, at(9, 50, 0))

	assert.ElementsMatch(t, []string{domain.PatternEmail, domain.PatternSMS}, f.gateway.sent())
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 1, report.Failed)
	assert.False(t, f.get(t, a.ID).EmailSent)
	assert.True(t, f.get(t, b.ID).SMSSent)
}

func TestExecute_ListUpcomingError(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "10:00", true, true, true)
	f.useRepository(t, &flakyRepository{MemoryRepository: f.repo, listErr: errors.New("database is closed")})
	f.clock.set(at(9, 50, 0))

	report, err := f.uc.Execute(context.Background())

	assert.ErrorIs(t, err, ErrListUpcoming)
	assert.Contains(t, err.Error(), "database is closed")
	assert.Nil(t, report)
	assert.Empty(t, f.gateway.sent())
}

func TestConfig_Validate(t *testing.T) {
	assert.ErrorIs(t, Config{Lookahead: 5 * time.Minute, SendTimeout: time.Second}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{Lookahead: 15 * time.Minute}.Validate(), ErrInvalidConfig)
	assert.NoError(t, Config{Lookahead: 11 * time.Minute, SendTimeout: time.Second}.Validate())
}
