package create_booking

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CallBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CallBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CallBookingService/pkg/logger"
	"github.com/m04kA/SMC-CallBookingService/pkg/metrics"
	"github.com/m04kA/SMC-CallBookingService/pkg/txmanager"
	"github.com/m04kA/SMC-CallBookingService/pkg/types"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type recordingGateway struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (g *recordingGateway) Send(_ context.Context, _ string, n domain.Notification) <-chan domain.SendResult {
	g.mu.Lock()
	g.sent = append(g.sent, n)
	g.mu.Unlock()

	ch := make(chan domain.SendResult, 1)
	ch <- domain.SendResult{Success: true, Message: "ok"}
	close(ch)
	return ch
}

func (g *recordingGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	args := m.Called(ctx, booking)
	if b, ok := args.Get(0).(*domain.Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) GetActiveBySlot(ctx context.Context, date time.Time, start types.TimeString) (*domain.Booking, error) {
	args := m.Called(ctx, date, start)
	if b, ok := args.Get(0).(*domain.Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)

func newUseCase(repo BookingRepository, gateway NotificationGateway) *UseCase {
	return NewUseCase(
		repo,
		gateway,
		txmanager.NewPassthrough(),
		metrics.NewWithRegisterer("test", prometheus.NewRegistry()),
		logger.NewWithWriter(io.Discard, logger.LevelError),
	).WithTimeProvider(fixedTime{now: testNow})
}

func TestExecute_CreatesQueuedBookingForToday(t *testing.T) {
	gateway := &recordingGateway{}
	uc := newUseCase(bookingRepo.NewMemoryRepository(), gateway)

	res := uc.Execute(context.Background(), &Request{
		StartTime:    "13:15",
		Email:        "user@example.com",
		ReceiveEmail: true,
		ReceiveSMS:   true,
	})

	require.True(t, res.IsSuccess(), res.Message)
	b := res.Booking
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, domain.StatusQueued, b.Status)
	assert.Equal(t, types.TimeString("13:15"), b.StartTime)
	assert.Equal(t, types.TimeString("13:30"), b.EndTime)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local), b.BookingDate)
	assert.False(t, b.EmailSent)
	assert.False(t, b.SMSSent)
	assert.False(t, b.PushSent)

	assert.Eventually(t, func() bool { return gateway.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, domain.NotificationCreate, gateway.sent[0].Type)
	assert.Equal(t, "user@example.com", gateway.sent[0].To)
}

func TestExecute_ValidationErrorsAreReturnedAsResult(t *testing.T) {
	uc := newUseCase(bookingRepo.NewMemoryRepository(), &recordingGateway{})

	res := uc.Execute(context.Background(), &Request{StartTime: "10:07"})
	assert.Equal(t, ResultError, res.Status)
	assert.ErrorIs(t, res.Err, ErrInvalidMinuteAlignment)
	assert.NotEmpty(t, res.Message)
	assert.Nil(t, res.Booking)

	res = uc.Execute(context.Background(), &Request{StartTime: "25:00"})
	assert.Equal(t, ResultError, res.Status)
	assert.ErrorIs(t, res.Err, ErrInvalidFormat)
}

func TestExecute_SlotConflict(t *testing.T) {
	ctx := context.Background()
	repo := bookingRepo.NewMemoryRepository()
	uc := newUseCase(repo, &recordingGateway{})

	first := uc.Execute(ctx, &Request{StartTime: "09:00"})
	require.True(t, first.IsSuccess())

	second := uc.Execute(ctx, &Request{StartTime: "09:00"})
	assert.Equal(t, ResultError, second.Status)
	assert.ErrorIs(t, second.Err, ErrSlotConflict)

	_, err := repo.Transition(ctx, first.Booking.ID, domain.StatusQueued, domain.StatusCancelled)
	require.NoError(t, err)

	third := uc.Execute(ctx, &Request{StartTime: "09:00"})
	assert.True(t, third.IsSuccess(), third.Message)
}

func TestExecute_ConcurrentWriteLosesRace(t *testing.T) {
	repo := &mockRepository{}
	repo.On("GetActiveBySlot", mock.Anything, mock.Anything, types.TimeString("09:00")).
		Return(nil, bookingRepo.ErrBookingNotFound)
	repo.On("Create", mock.Anything, mock.Anything).
		Return(nil, bookingRepo.ErrSlotTaken)

	gateway := &recordingGateway{}
	res := newUseCase(repo, gateway).Execute(context.Background(), &Request{StartTime: "09:00"})

	assert.ErrorIs(t, res.Err, ErrSlotConflict)
	assert.Zero(t, gateway.count())
	repo.AssertExpectations(t)
}

func TestExecute_StorageFailureIsInternal(t *testing.T) {
	repo := &mockRepository{}
	repo.On("GetActiveBySlot", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	res := newUseCase(repo, &recordingGateway{}).Execute(context.Background(), &Request{StartTime: "09:00"})

	assert.Equal(t, ResultError, res.Status)
	assert.ErrorIs(t, res.Err, ErrInternal)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
