package mq

import (
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrClosed возвращается после Close
var ErrClosed = errors.New("mq: session closed")

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// session соединение с брокером и один канал поверх него
// После обрыва соединение и канал открываются заново при следующем обращении,
// topology повторно объявляет exchange, очереди и режимы канала
type session struct {
	url      string
	topology func(ch *amqp.Channel) error

	mu         sync.Mutex
	conn       *amqp.Connection
	ch         *amqp.Channel
	connClosed chan *amqp.Error
	chClosed   chan *amqp.Error
	shut       bool
}

func dialSession(url string, topology func(ch *amqp.Channel) error) (*session, error) {
	s := &session{url: url, topology: topology}
	if err := s.openLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// do выполняет fn на живом канале под мьютексом сессии
// Если канал закрылся между проверкой и вызовом, сессия переоткрывается и fn повторяется один раз
func (s *session) do(fn func(ch *amqp.Channel) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shut {
		return ErrClosed
	}

	if !s.aliveLocked() {
		if err := s.reopenLocked(); err != nil {
			return err
		}
	}

	err := fn(s.ch)
	if !errors.Is(err, amqp.ErrClosed) {
		return err
	}

	if err := s.reopenLocked(); err != nil {
		return err
	}
	return fn(s.ch)
}

// aliveLocked проверяет уведомления о закрытии без блокировки
func (s *session) aliveLocked() bool {
	if s.conn == nil || s.ch == nil {
		return false
	}
	select {
	case <-s.connClosed:
		return false
	case <-s.chClosed:
		return false
	default:
		return !s.conn.IsClosed() && !s.ch.IsClosed()
	}
}

func (s *session) reopenLocked() error {
	s.closeLocked()
	if err := s.openLocked(); err != nil {
		return fmt.Errorf("reconnect rabbitmq: %w", err)
	}
	return nil
}

func (s *session) openLocked() error {
	conn, err := amqp.Dial(s.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := s.topology(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	// Буфер обязателен: библиотека блокируется на отправке в неразобранный канал уведомлений
	s.connClosed = conn.NotifyClose(make(chan *amqp.Error, 1))
	s.chClosed = ch.NotifyClose(make(chan *amqp.Error, 1))
	s.conn, s.ch = conn, ch
	return nil
}

func (s *session) closeLocked() error {
	var err error
	if s.ch != nil {
		_ = s.ch.Close()
		s.ch = nil
	}
	if s.conn != nil {
		if closeErr := s.conn.Close(); closeErr != nil && !errors.Is(closeErr, amqp.ErrClosed) {
			err = closeErr
		}
		s.conn = nil
	}
	return err
}

func (s *session) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shut = true
	return s.closeLocked()
}

func declareExchange(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return nil
}
