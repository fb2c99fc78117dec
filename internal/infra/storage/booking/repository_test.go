package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CallBookingService/internal/domain"
	"github.com/m04kA/SMC-CallBookingService/pkg/types"
)

func TestWrapExecError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantIs    error
		wantNotIs error
	}{
		{
			name:   "active slot violation",
			err:    &pq.Error{Code: pqUniqueViolation, Constraint: activeSlotConstraint},
			wantIs: ErrSlotTaken,
		},
		{
			name:      "other unique violation",
			err:       &pq.Error{Code: pqUniqueViolation, Constraint: "bookings_pkey"},
			wantIs:    ErrExecQuery,
			wantNotIs: ErrSlotTaken,
		},
		{
			name:      "plain error",
			err:       errors.New("connection reset"),
			wantIs:    ErrExecQuery,
			wantNotIs: ErrSlotTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapExecError("Create", tt.err)
			assert.ErrorIs(t, err, tt.wantIs)
			if tt.wantNotIs != nil {
				assert.NotErrorIs(t, err, tt.wantNotIs)
			}
		})
	}
}

func TestWrapExecError_KeepsDriverError(t *testing.T) {
	err := wrapExecError("Update", &pq.Error{Code: "40001"})

	var pqErr *pq.Error
	require.True(t, errors.As(err, &pqErr))
	assert.Equal(t, pq.ErrorCode("40001"), pqErr.Code)
}

func TestFilterUntil(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)
	mk := func(start string) *domain.Booking {
		return &domain.Booking{ID: start, BookingDate: day, StartTime: types.TimeString(start)}
	}

	got := filterUntil([]*domain.Booking{mk("10:00"), mk("10:15"), mk("10:30")},
		time.Date(2025, 3, 10, 10, 15, 0, 0, time.Local))

	ids := make([]string, 0, len(got))
	for _, b := range got {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"10:00", "10:15"}, ids)
}

func TestReturningClause(t *testing.T) {
	clause := returningClause()
	assert.Contains(t, clause, "RETURNING id, booking_date")
	assert.Contains(t, clause, "updated_at")
}
