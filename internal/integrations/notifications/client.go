package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CallBookingService/internal/domain"
)

const defaultConfirmTimeout = 5 * time.Second

// Client шлюз уведомлений поверх RabbitMQ
// Сообщение считается доставленным, когда брокер подтвердил публикацию (publisher confirm)
type Client struct {
	publisher      Publisher
	adminEmail     string
	confirmTimeout time.Duration
	log            Logger
}

// NewClient создает новый экземпляр шлюза уведомлений
func NewClient(publisher Publisher, adminEmail string, confirmTimeout time.Duration, log Logger) *Client {
	if confirmTimeout <= 0 {
		confirmTimeout = defaultConfirmTimeout
	}
	return &Client{
		publisher:      publisher,
		adminEmail:     adminEmail,
		confirmTimeout: confirmTimeout,
		log:            log,
	}
}

// Send публикует уведомление по pattern и возвращает канал с единственным результатом
// Канал буферизован: результат можно не читать
func (c *Client) Send(ctx context.Context, pattern string, n domain.Notification) <-chan domain.SendResult {
	return c.publish(ctx, pattern, FromNotification(n))
}

// SendAdmin публикует уведомление администратору (send.admin)
func (c *Client) SendAdmin(ctx context.Context, subject, text string) <-chan domain.SendResult {
	return c.publish(ctx, domain.PatternAdmin, Message{
		Type:    adminMessageType,
		To:      c.adminEmail,
		Subject: subject,
		Text:    text,
	})
}

func (c *Client) publish(ctx context.Context, pattern string, msg Message) <-chan domain.SendResult {
	result := make(chan domain.SendResult, 1)

	confirmation, err := c.publisher.PublishJSON(ctx, pattern, msg)
	if err != nil {
		c.log.Error("Send: failed to publish %s to=%s: %v", pattern, msg.To, err)
		result <- failure(fmt.Errorf("%w: %s: %v", ErrPublish, pattern, err))
		close(result)
		return result
	}

	go func() {
		defer close(result)

		waitCtx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
		defer cancel()

		acked, err := confirmation.WaitContext(waitCtx)
		switch {
		case err != nil && errors.Is(err, context.DeadlineExceeded):
			c.log.Warn("Send: confirmation timeout for %s to=%s", pattern, msg.To)
			result <- failure(fmt.Errorf("%w: %s", ErrConfirmTimeout, pattern))
		case err != nil:
			c.log.Warn("Send: confirmation failed for %s to=%s: %v", pattern, msg.To, err)
			result <- failure(fmt.Errorf("%w: %s: %v", ErrNotConfirmed, pattern, err))
		case !acked:
			c.log.Warn("Send: broker nacked %s to=%s", pattern, msg.To)
			result <- failure(fmt.Errorf("%w: %s", ErrNotConfirmed, pattern))
		default:
			result <- domain.SendResult{Success: true, Message: fmt.Sprintf("%s accepted", pattern)}
		}
	}()

	return result
}

func failure(err error) domain.SendResult {
	return domain.SendResult{Success: false, Message: err.Error()}
}
