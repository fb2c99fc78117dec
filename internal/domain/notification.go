package domain

import "fmt"

// NotificationType назначение уведомления
type NotificationType string

const (
	NotificationCreate   NotificationType = "create"
	NotificationUpdate   NotificationType = "update"
	NotificationCancel   NotificationType = "cancel"
	NotificationReject   NotificationType = "reject"
	NotificationReminder NotificationType = "reminder"
)

const reminderEmailSubject = "Upcoming Call Reservation Reminder"

// Notification сообщение для шлюза уведомлений
type Notification struct {
	Type      NotificationType
	To        string
	Subject   string
	Text      string
	BookingID string
}

// SendResult результат доставки одного сообщения
type SendResult struct {
	Success bool
	Message string
}

// CreatedNotification подтверждение создания бронирования
func CreatedNotification(b *Booking) Notification {
	return Notification{
		Type:      NotificationCreate,
		To:        b.Email,
		Subject:   "Reservation Created",
		Text:      fmt.Sprintf("Your reservation has been created for %s. Reservation ID: %s", b.StartTime, b.ID),
		BookingID: b.ID,
	}
}

// UpdatedNotification уведомление об изменении бронирования
func UpdatedNotification(b *Booking) Notification {
	return Notification{
		Type:      NotificationUpdate,
		To:        b.Email,
		Subject:   "Reservation Updated",
		Text:      fmt.Sprintf("Your reservation has been updated. New start time: %s", b.StartTime),
		BookingID: b.ID,
	}
}

// CancelledNotification уведомление об отмене. Пустая причина заменяется явной пометкой
func CancelledNotification(b *Booking, reason string) Notification {
	if reason == "" {
		reason = NoReasonProvided
	}
	return Notification{
		Type:      NotificationCancel,
		To:        b.Email,
		Subject:   "Reservation Cancelled",
		Text:      fmt.Sprintf("Your reservation has been cancelled. Reason: %s", reason),
		BookingID: b.ID,
	}
}

// RejectedNotification уведомление об отклонении
func RejectedNotification(b *Booking, reason string) Notification {
	return Notification{
		Type:      NotificationReject,
		To:        b.Email,
		Subject:   "Reservation Rejected",
		Text:      fmt.Sprintf("We're sorry, but your reservation for %s has been rejected. Reason: %s", b.StartTime, reason),
		BookingID: b.ID,
	}
}

// ReminderNotification напоминание по каналу
func ReminderNotification(b *Booking, c Channel) Notification {
	n := Notification{
		Type:      NotificationReminder,
		To:        b.Recipient(c),
		BookingID: b.ID,
	}

	switch c {
	case ChannelEmail:
		n.Subject = reminderEmailSubject
		n.Text = fmt.Sprintf(
			"Dear Customer,\n\nThis is a reminder that you have a scheduled call in 10 minutes.\n\n"+
				"Reservation Details:\n- Time: %s\n- Date: %s\n\nPlease be ready for the call.",
			b.StartTime, b.BookingDate.Format(DateFormat),
		)
	case ChannelSMS:
		n.Text = fmt.Sprintf("Reminder: Your call is scheduled in 5 minutes at %s. Be ready!", b.StartTime)
	case ChannelPush:
		n.Text = fmt.Sprintf("Your call starts in 1 minute at %s!", b.StartTime)
	}

	return n
}

// AdminCancelledText текст уведомления администратора об отмене
func AdminCancelledText(b *Booking, reason string) (subject, text string) {
	if reason == "" {
		reason = NoReasonProvided
	}
	return "Reservation Cancelled",
		fmt.Sprintf("Reservation %s for %s %s was cancelled. Reason: %s", b.ID, b.BookingDate.Format(DateFormat), b.StartTime, reason)
}

// AdminRejectedText текст уведомления администратора об отклонении
func AdminRejectedText(b *Booking, reason string) (subject, text string) {
	return "Reservation Rejected",
		fmt.Sprintf("Reservation %s for %s %s was rejected. Reason: %s", b.ID, b.BookingDate.Format(DateFormat), b.StartTime, reason)
}
