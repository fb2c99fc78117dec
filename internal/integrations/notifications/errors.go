package notifications

import "errors"

var (
	// ErrPublish возвращается, когда брокер не принял сообщение к публикации
	ErrPublish = errors.New("notifications client: failed to publish message")

	// ErrNotConfirmed возвращается, когда брокер ответил nack
	ErrNotConfirmed = errors.New("notifications client: message not confirmed by broker")

	// ErrConfirmTimeout возвращается, когда подтверждение не пришло вовремя
	ErrConfirmTimeout = errors.New("notifications client: confirmation timeout")
)
