package messagequeue

import (
	"context"
	"errors"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// RabbitMQService implements the MessageQueue interface with fanout exchanges.
type RabbitMQService struct {
	conn   *amqp.Connection
	logger *zap.Logger

	mu      sync.Mutex
	channel *amqp.Channel
}

// NewRabbitMQServiceConfig contains options for creating a new RabbitMQService.
type NewRabbitMQServiceConfig struct {
	URL string
}

// NewRabbitMQService creates a new instance of RabbitMQService.
func NewRabbitMQService(cfg NewRabbitMQServiceConfig, logger *zap.Logger) (*RabbitMQService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", zap.Error(err))
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("Failed to open a channel", zap.Error(err))
		conn.Close()
		return nil, err
	}

	logger.Info("Successfully connected to RabbitMQ and opened a channel")
	return &RabbitMQService{conn: conn, channel: ch, logger: logger}, nil
}

func declareFanout(ch *amqp.Channel, exchange string) error {
	return ch.ExchangeDeclare(
		exchange, // name
		"fanout", // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
}

// Publish sends a message to every queue bound to exchange.
func (s *RabbitMQService) Publish(ctx context.Context, exchange string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := declareFanout(s.channel, exchange); err != nil {
		s.logger.Error("Failed to declare exchange", zap.String("exchange", exchange), zap.Error(err))
		return err
	}
	err := s.channel.Publish(
		exchange, // exchange
		"",       // routing key, ignored by fanout
		false,    // mandatory
		false,    // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
	if err != nil {
		s.logger.Error("Failed to publish a message", zap.String("exchange", exchange), zap.Error(err))
		return err
	}
	s.logger.Debug("Published message", zap.String("exchange", exchange), zap.Int("bytes", len(body)))
	return nil
}

// Consume binds an exclusive, auto-deleted queue to exchange and delivers messages to
// handler until ctx is cancelled or the channel closes.
func (s *RabbitMQService) Consume(ctx context.Context, exchange string, handler func(body []byte)) error {
	ch, err := s.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := declareFanout(ch, exchange); err != nil {
		return err
	}
	q, err := ch.QueueDeclare(
		"",    // name, server generated
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		s.logger.Error("Failed to declare a queue", zap.String("exchange", exchange), zap.Error(err))
		return err
	}
	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		s.logger.Error("Failed to bind queue", zap.String("queue", q.Name), zap.String("exchange", exchange), zap.Error(err))
		return err
	}

	msgs, err := ch.Consume(
		q.Name, // queue
		"",     // consumer
		true,   // auto-ack
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		s.logger.Error("Failed to register a consumer", zap.String("queue", q.Name), zap.Error(err))
		return err
	}

	s.logger.Info("Waiting for messages", zap.String("exchange", exchange), zap.String("queue", q.Name))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("rabbitmq: delivery channel closed")
			}
			handler(d.Body)
		}
	}
}

// Close closes the RabbitMQ channel and connection.
func (s *RabbitMQService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastErr error
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			s.logger.Error("Error closing RabbitMQ channel", zap.Error(err))
			lastErr = err
		}
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.logger.Error("Error closing RabbitMQ connection", zap.Error(err))
			lastErr = err
		}
	}
	if lastErr == nil {
		s.logger.Info("RabbitMQ channel and connection closed")
	}
	return lastErr
}
