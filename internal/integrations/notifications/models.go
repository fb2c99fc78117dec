package notifications

import "github.com/m04kA/SMC-CallBookingService/internal/domain"

const adminMessageType = "admin"

// Message тело сообщения в очереди уведомлений
type Message struct {
	Type      string `json:"type"`
	To        string `json:"to"`
	Subject   string `json:"subject,omitempty"`
	Text      string `json:"text"`
	BookingID string `json:"bookingId,omitempty"`
}

// FromNotification конвертирует доменное уведомление в сообщение транспорта
func FromNotification(n domain.Notification) Message {
	return Message{
		Type:      string(n.Type),
		To:        n.To,
		Subject:   n.Subject,
		Text:      n.Text,
		BookingID: n.BookingID,
	}
}
