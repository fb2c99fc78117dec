package notifier

import "errors"

var (
	// ErrUnknownRoutingKey возвращается для сообщения без зарегистрированного отправителя
	ErrUnknownRoutingKey = errors.New("notifier: no sender for routing key")

	// ErrDecode возвращается, когда тело сообщения не разбирается
	ErrDecode = errors.New("notifier: failed to decode message")

	// ErrEmptyRecipient возвращается, когда у сообщения нет получателя
	ErrEmptyRecipient = errors.New("notifier: empty recipient")
)
