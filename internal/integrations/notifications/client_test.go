package notifications

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CallBookingService/internal/domain"
	"github.com/m04kA/SMC-CallBookingService/pkg/logger"
	"github.com/m04kA/SMC-CallBookingService/pkg/mq"
)

type fakeConfirmation struct {
	acked bool
	err   error
	block bool
}

func (c fakeConfirmation) WaitContext(ctx context.Context) (bool, error) {
	if c.block {
		<-ctx.Done()
		return false, ctx.Err()
	}
	return c.acked, c.err
}

type published struct {
	key string
	msg Message
}

type fakePublisher struct {
	mu           sync.Mutex
	messages     []published
	confirmation fakeConfirmation
	err          error
}

func (p *fakePublisher) PublishJSON(_ context.Context, key string, v any) (mq.Confirmation, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, published{key: key, msg: v.(Message)})
	return p.confirmation, nil
}

func newTestClient(p *fakePublisher) *Client {
	return NewClient(p, "admin@example.com", 50*time.Millisecond, logger.NewWithWriter(io.Discard, logger.LevelError))
}

func TestClient_SendAcked(t *testing.T) {
	pub := &fakePublisher{confirmation: fakeConfirmation{acked: true}}
	client := newTestClient(pub)

	n := domain.Notification{Type: domain.NotificationReminder, To: "+100", Text: "hi", BookingID: "b-1"}
	res := <-client.Send(context.Background(), domain.PatternSMS, n)

	assert.True(t, res.Success)
	require.Len(t, pub.messages, 1)
	assert.Equal(t, domain.PatternSMS, pub.messages[0].key)
	assert.Equal(t, "reminder", pub.messages[0].msg.Type)
	assert.Equal(t, "+100", pub.messages[0].msg.To)
	assert.Equal(t, "b-1", pub.messages[0].msg.BookingID)
}

func TestClient_SendNacked(t *testing.T) {
	client := newTestClient(&fakePublisher{confirmation: fakeConfirmation{acked: false}})

	res := <-client.Send(context.Background(), domain.PatternEmail, domain.Notification{To: "a@b.c"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, ErrNotConfirmed.Error())
}

func TestClient_SendPublishError(t *testing.T) {
	client := newTestClient(&fakePublisher{err: errors.New("channel closed")})

	res := <-client.Send(context.Background(), domain.PatternPush, domain.Notification{To: "key"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, ErrPublish.Error())
}

func TestClient_SendConfirmTimeout(t *testing.T) {
	client := newTestClient(&fakePublisher{confirmation: fakeConfirmation{block: true}})

	res := <-client.Send(context.Background(), domain.PatternEmail, domain.Notification{To: "a@b.c"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, ErrConfirmTimeout.Error())
}

func TestClient_SendAdminUsesConfiguredAddress(t *testing.T) {
	pub := &fakePublisher{confirmation: fakeConfirmation{acked: true}}
	client := newTestClient(pub)

	res := <-client.SendAdmin(context.Background(), "Reservation Cancelled", "details")
	assert.True(t, res.Success)

	require.Len(t, pub.messages, 1)
	assert.Equal(t, domain.PatternAdmin, pub.messages[0].key)
	assert.Equal(t, "admin@example.com", pub.messages[0].msg.To)
	assert.Equal(t, "Reservation Cancelled", pub.messages[0].msg.Subject)
}
