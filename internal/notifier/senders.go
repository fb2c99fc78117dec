package notifier

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-CallBookingService/internal/integrations/notifications"
)

// LogSender пишет сообщение в лог вместо реального провайдера
type LogSender struct {
	channel string
	logger  Logger
}

func NewLogSender(channel string, logger Logger) *LogSender {
	return &LogSender{channel: channel, logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg notifications.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("%w: %s message", ErrEmptyRecipient, s.channel)
	}

	if msg.Subject != "" {
		s.logger.Info("[%s] To: %s, Subject: %s, Content: %s", s.channel, msg.To, msg.Subject, msg.Text)
		return nil
	}
	s.logger.Info("[%s] To: %s, Content: %s", s.channel, msg.To, msg.Text)
	return nil
}
