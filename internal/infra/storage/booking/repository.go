package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-CallBookingService/internal/domain"
	"github.com/m04kA/SMC-CallBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CallBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-CallBookingService/pkg/types"
)

const (
	tableBookings        = "bookings"
	pqUniqueViolation    = "23505"
	activeSlotConstraint = "bookings_active_slot_uidx"
)

var bookingColumns = []string{
	"id",
	"booking_date",
	"start_time",
	"end_time",
	"status",
	"email",
	"phone",
	"push_key",
	"receive_email",
	"receive_sms",
	"receive_push",
	"email_sent",
	"sms_sent",
	"push_sent",
	"created_at",
	"updated_at",
}

var sentColumns = map[domain.Channel]string{
	domain.ChannelEmail: "email_sent",
	domain.ChannelSMS:   "sms_sent",
	domain.ChannelPush:  "push_sent",
}

// Repository репозиторий для работы с бронированиями в PostgreSQL
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Уникальный частичный индекс по (booking_date, start_time) для неотмененных бронирований
// защищает от двойного бронирования даже вне транзакции: нарушение отдается как ErrSlotTaken
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}

	query, args, err := psqlbuilder.Insert(tableBookings).
		Columns(
			"id",
			"booking_date",
			"start_time",
			"end_time",
			"status",
			"email",
			"phone",
			"push_key",
			"receive_email",
			"receive_sms",
			"receive_push",
		).
		Values(
			booking.ID,
			booking.BookingDate.Format(domain.DateFormat),
			booking.StartTime,
			booking.EndTime,
			booking.Status,
			booking.Email,
			booking.Phone,
			booking.PushKey,
			booking.ReceiveEmail,
			booking.ReceiveSMS,
			booking.ReceivePush,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, wrapExecError("Create - execute insert", err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// List возвращает все бронирования, сначала новые
func (r *Repository) List(ctx context.Context) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListByDate возвращает неотмененные бронирования на дату, упорядоченные по времени начала
func (r *Repository) ListByDate(ctx context.Context, date time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"booking_date": date.Format(domain.DateFormat)}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetActiveBySlot возвращает неотмененное бронирование, занимающее слот
// В транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetActiveBySlot(ctx context.Context, date time.Time, start types.TimeString) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{
			"booking_date": date.Format(domain.DateFormat),
			"start_time":   start,
		}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveBySlot - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, wrapExecError("GetActiveBySlot - scan booking", err)
	}

	return booking, nil
}

// ListUpcoming возвращает бронирования в статусе QUEUED, чей слот начинается не позже until
// Сюда попадают и просроченные бронирования прошлых дней, чтобы диспетчер их завершил
func (r *Repository) ListUpcoming(ctx context.Context, until time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"status": domain.StatusQueued}).
		Where(squirrel.LtOrEq{"booking_date": until.Format(domain.DateFormat)}).
		OrderBy("booking_date ASC", "start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListUpcoming - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListUpcoming - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := scanBookings(rows)
	if err != nil {
		return nil, err
	}

	// Граница по дате грубая: момент слота уточняем уже по дате и времени вместе
	return filterUntil(bookings, until), nil
}

// Update применяет частичное обновление к бронированию в статусе QUEUED
// EndTime пересчитывается вместе со StartTime
func (r *Repository) Update(ctx context.Context, id string, patch domain.BookingPatch) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(tableBookings).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.StatusQueued})

	if patch.StartTime != nil {
		end, err := domain.SlotEnd(*patch.StartTime)
		if err != nil {
			return nil, err
		}
		updateBuilder = updateBuilder.
			Set("start_time", *patch.StartTime).
			Set("end_time", end)
	}
	if patch.Email != nil {
		updateBuilder = updateBuilder.Set("email", *patch.Email)
	}
	if patch.Phone != nil {
		updateBuilder = updateBuilder.Set("phone", *patch.Phone)
	}
	if patch.PushKey != nil {
		updateBuilder = updateBuilder.Set("push_key", *patch.PushKey)
	}
	if patch.ReceiveEmail != nil {
		updateBuilder = updateBuilder.Set("receive_email", *patch.ReceiveEmail)
	}
	if patch.ReceiveSMS != nil {
		updateBuilder = updateBuilder.Set("receive_sms", *patch.ReceiveSMS)
	}
	if patch.ReceivePush != nil {
		updateBuilder = updateBuilder.Set("receive_push", *patch.ReceivePush)
	}

	query, args, err := updateBuilder.
		Suffix(returningClause()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		current, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("%w: Update - booking %s is %s", ErrStatusConflict, id, current.Status)
	}
	if err != nil {
		return nil, wrapExecError("Update - execute update", err)
	}

	return booking, nil
}

// Transition переводит бронирование из статуса from в статус to
// Условие по текущему статусу делает переход атомарным: из двух конкурентов выигрывает один
func (r *Repository) Transition(ctx context.Context, id string, from, to domain.BookingStatus) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableBookings).
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		Suffix(returningClause()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Transition - build update query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("%w: Transition - booking %s is no longer %s", ErrStatusConflict, id, from)
	}
	if err != nil {
		return nil, wrapExecError("Transition - execute update", err)
	}

	return booking, nil
}

// MarkSent выставляет флаг отправленного напоминания. Флаг только поднимается
func (r *Repository) MarkSent(ctx context.Context, id string, channel domain.Channel) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	column, ok := sentColumns[channel]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChannel, channel)
	}

	query, args, err := psqlbuilder.Update(tableBookings).
		Set(column, true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkSent - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkSent - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkSent - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func returningClause() string {
	return "RETURNING " + strings.Join(bookingColumns, ", ")
}

// wrapExecError переводит нарушение уникальности слота в ErrSlotTaken
// Исходная ошибка драйвера сохраняется в цепочке, чтобы txmanager распознал serialization failure
func wrapExecError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation && pqErr.Constraint == activeSlotConstraint {
		return fmt.Errorf("%w: %s", ErrSlotTaken, op)
	}
	return fmt.Errorf("%w: %s: %w", ErrExecQuery, op, err)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var bookingDate time.Time
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&bookingDate,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Status,
		&booking.Email,
		&booking.Phone,
		&booking.PushKey,
		&booking.ReceiveEmail,
		&booking.ReceiveSMS,
		&booking.ReceivePush,
		&booking.EmailSent,
		&booking.SMSSent,
		&booking.PushSent,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	// DATE приходит полуночью UTC, календарный день переносим в зону процесса
	booking.BookingDate = domain.DateOnly(bookingDate)
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

func filterUntil(bookings []*domain.Booking, until time.Time) []*domain.Booking {
	result := make([]*domain.Booking, 0, len(bookings))
	for _, booking := range bookings {
		instant, err := booking.SlotInstant()
		if err != nil {
			continue
		}
		if !instant.After(until) {
			result = append(result, booking)
		}
	}
	return result
}
