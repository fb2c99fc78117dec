package mq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Confirmation подтверждение брокера об опубликованном сообщении
type Confirmation interface {
	// WaitContext блокируется до ack/nack брокера или отмены контекста
	WaitContext(ctx context.Context) (bool, error)
}

// Publisher публикует JSON-сообщения в topic exchange с publisher confirms
// Оборванное соединение восстанавливается при следующей публикации
type Publisher struct {
	session  *session
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	s, err := dialSession(url, func(ch *amqp.Channel) error {
		if err := declareExchange(ch, exchange); err != nil {
			return err
		}
		if err := ch.Confirm(false); err != nil {
			return fmt.Errorf("enable confirms: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Publisher{session: s, exchange: exchange}, nil
}

// PublishJSON публикует сообщение и возвращает отложенное подтверждение брокера
// Подтверждения от канала, закрытого до ack, приходят как nack
func (p *Publisher) PublishJSON(ctx context.Context, key string, v any) (Confirmation, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}

	var confirmation *amqp.DeferredConfirmation
	err = p.session.do(func(ch *amqp.Channel) error {
		var err error
		confirmation, err = ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, key, false, false, msg)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("publish %s: %w", key, err)
	}
	return confirmation, nil
}

func (p *Publisher) Close() error {
	return p.session.close()
}
