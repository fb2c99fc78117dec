package mq

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultResubscribeDelay = 2 * time.Second

// Consumer читает именованную очередь, привязанную к topic exchange по списку routing key
// После обрыва соединения очередь заново объявляется и подписка восстанавливается
type Consumer struct {
	session          *session
	queue            string
	resubscribeDelay time.Duration
	logger           Logger
}

func NewConsumer(url, exchange, queue string, keys []string, prefetch int) (*Consumer, error) {
	if queue == "" {
		return nil, errors.New("queue name is required")
	}

	s, err := dialSession(url, func(ch *amqp.Channel) error {
		if err := declareExchange(ch, exchange); err != nil {
			return err
		}
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}
		for _, key := range keys {
			if err := ch.QueueBind(queue, key, exchange, false, nil); err != nil {
				return fmt.Errorf("bind %s to %s: %w", queue, key, err)
			}
		}
		if prefetch > 0 {
			if err := ch.Qos(prefetch, 0, false); err != nil {
				return fmt.Errorf("set qos: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Consumer{
		session:          s,
		queue:            queue,
		resubscribeDelay: defaultResubscribeDelay,
		logger:           nopLogger{},
	}, nil
}

// WithLogger подключает логирование переподписки
func (c *Consumer) WithLogger(logger Logger) *Consumer {
	c.logger = logger
	return c
}

// Deliveries подписывается на очередь с ручным подтверждением
// Возвращаемый канал переживает обрывы соединения и закрывается при отмене ctx или Close.
// Сообщения, полученные до обрыва, уже нельзя подтвердить: брокер доставит их повторно
func (c *Consumer) Deliveries(ctx context.Context) (<-chan amqp.Delivery, error) {
	subscribe := func() (<-chan amqp.Delivery, error) {
		var deliveries <-chan amqp.Delivery
		err := c.session.do(func(ch *amqp.Channel) error {
			var err error
			deliveries, err = ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
			return err
		})
		return deliveries, err
	}

	first, err := subscribe()
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", c.queue, err)
	}

	out := make(chan amqp.Delivery)
	go resubscribe(ctx, first, subscribe, out, c.resubscribeDelay, c.logger)
	return out, nil
}

func (c *Consumer) Close() error {
	return c.session.close()
}

// resubscribe пересылает сообщения из текущей подписки в out, а после ее закрытия
// открывает новую с паузой между попытками. out закрывается при отмене ctx или ErrClosed
func resubscribe(
	ctx context.Context,
	current <-chan amqp.Delivery,
	subscribe func() (<-chan amqp.Delivery, error),
	out chan<- amqp.Delivery,
	delay time.Duration,
	logger Logger,
) {
	defer close(out)

	for {
		if !forward(ctx, current, out) {
			return
		}
		logger.Warn("MQ: subscription closed, resubscribing in %s", delay)

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}

			next, err := subscribe()
			if errors.Is(err, ErrClosed) {
				return
			}
			if err != nil {
				logger.Error("MQ: resubscribe failed: %v", err)
				continue
			}

			logger.Info("MQ: resubscribed")
			current = next
			break
		}
	}
}

// forward возвращает true, если подписка закрылась при живом ctx
func forward(ctx context.Context, in <-chan amqp.Delivery, out chan<- amqp.Delivery) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case d, ok := <-in:
			if !ok {
				return ctx.Err() == nil
			}
			select {
			case out <- d:
			case <-ctx.Done():
				return false
			}
		}
	}
}
