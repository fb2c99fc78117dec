package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CallBookingService/pkg/ptr"
	"github.com/m04kA/SMC-CallBookingService/pkg/types"
)

func TestBooking_CanTransitionTo(t *testing.T) {
	queued := &Booking{Status: StatusQueued}
	assert.True(t, queued.CanTransitionTo(StatusSuccessful))
	assert.True(t, queued.CanTransitionTo(StatusCancelled))
	assert.True(t, queued.CanTransitionTo(StatusRejected))
	assert.False(t, queued.CanTransitionTo(StatusQueued))

	for _, terminal := range []BookingStatus{StatusSuccessful, StatusCancelled, StatusRejected} {
		b := &Booking{Status: terminal}
		for _, next := range []BookingStatus{StatusQueued, StatusSuccessful, StatusCancelled, StatusRejected} {
			assert.False(t, b.CanTransitionTo(next), "%s -> %s", terminal, next)
		}
	}
}

func TestBooking_ChannelAccessors(t *testing.T) {
	b := &Booking{
		Email:        "a@b.c",
		Phone:        "+100",
		PushKey:      "key",
		ReceiveEmail: true,
		ReceivePush:  true,
		SMSSent:      true,
	}

	assert.True(t, b.Wants(ChannelEmail))
	assert.False(t, b.Wants(ChannelSMS))
	assert.True(t, b.Wants(ChannelPush))

	assert.False(t, b.Sent(ChannelEmail))
	assert.True(t, b.Sent(ChannelSMS))

	assert.Equal(t, "+100", b.Recipient(ChannelSMS))
	assert.Equal(t, "key", b.Recipient(ChannelPush))
	assert.Empty(t, b.Recipient(Channel("fax")))
}

func TestBookingPatch_Apply(t *testing.T) {
	original := Booking{StartTime: "10:00", EndTime: "10:15", Email: "old@example.com"}

	assert.True(t, BookingPatch{}.IsEmpty())

	patch := BookingPatch{
		StartTime:   ptr.Ptr(types.TimeString("23:45")),
		Email:       ptr.Ptr("new@example.com"),
		ReceivePush: ptr.Ptr(true),
	}
	assert.False(t, patch.IsEmpty())

	updated, err := patch.Apply(original)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("23:45"), updated.StartTime)
	assert.Equal(t, types.TimeString("00:00"), updated.EndTime)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.True(t, updated.ReceivePush)

	assert.Equal(t, "old@example.com", original.Email)
}

func TestCancelledNotification_DefaultReason(t *testing.T) {
	b := &Booking{ID: "id-1", Email: "a@b.c", StartTime: "10:00"}

	n := CancelledNotification(b, "")
	assert.Equal(t, NotificationCancel, n.Type)
	assert.Equal(t, "a@b.c", n.To)
	assert.Contains(t, n.Text, NoReasonProvided)

	n = CancelledNotification(b, "changed plans")
	assert.Contains(t, n.Text, "changed plans")
}

func TestReminderNotification(t *testing.T) {
	b := &Booking{ID: "id-1", Email: "a@b.c", Phone: "+100", PushKey: "key", StartTime: "13:15"}

	email := ReminderNotification(b, ChannelEmail)
	assert.Equal(t, "a@b.c", email.To)
	assert.Equal(t, reminderEmailSubject, email.Subject)
	assert.Contains(t, email.Text, "scheduled call in 10 minutes")

	sms := ReminderNotification(b, ChannelSMS)
	assert.Equal(t, "+100", sms.To)
	assert.Contains(t, sms.Text, "5 minutes at 13:15")

	push := ReminderNotification(b, ChannelPush)
	assert.Equal(t, "key", push.To)
	assert.Contains(t, push.Text, "1 minute at 13:15")
}
