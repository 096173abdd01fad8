package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mkravets/products-service/internal/rpc"
	amqp "github.com/streadway/amqp"
)

// Reply type tags. Callers inspect the reply's Type property to tell a
// success payload from a structured fault.
const (
	ReplyTypeResult = "rpc.result"
	ReplyTypeError  = "rpc.error"
)

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// Server consumes command requests from a durable queue, dispatches them
// through the router and publishes the reply to the request's ReplyTo queue.
type Server struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	router  *rpc.Router
}

// NewServer connects to RabbitMQ, opens a channel and declares the requests
// queue.
func NewServer(cfg Config, router *rpc.Router) (*Server, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		cfg.Queue, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	slog.Info("RabbitMQ RPC server connected", slog.String("queue", cfg.Queue))

	return &Server{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
		router:  router,
	}, nil
}

// Close closes the RabbitMQ channel and connection.
func (s *Server) Close() error {
	var errs []error
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Start consumes requests until the context is cancelled or the broker closes
// the delivery channel. Messages are acked manually after the reply has been
// published.
func (s *Server) Start(ctx context.Context) error {
	msgs, err := s.channel.Consume(
		s.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	slog.Info("Waiting for RPC commands", slog.String("queue", s.queue))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping RPC server")
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed by broker")
			}
			s.handle(ctx, msg)
		}
	}
}

func (s *Server) handle(ctx context.Context, msg amqp.Delivery) {
	resp := s.router.Dispatch(ctx, msg.Type, msg.Body)

	if msg.ReplyTo == "" {
		// Nothing to answer to. The request is consumed either way; leaving
		// it queued would just replay the same unanswerable message.
		slog.Warn("request without reply-to queue dropped",
			slog.String("command", msg.Type),
			slog.String("correlation_id", msg.CorrelationId),
		)
		s.ack(msg)
		return
	}

	replyType := ReplyTypeResult
	if resp.IsFault {
		replyType = ReplyTypeError
	}

	err := s.channel.Publish(
		"",          // exchange: default
		msg.ReplyTo, // routing key: the caller's reply queue
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			Type:          replyType,
			MessageId:     uuid.NewString(),
			CorrelationId: msg.CorrelationId,
			Timestamp:     time.Now(),
			Body:          resp.Body,
		})
	if err != nil {
		slog.Error("failed to publish reply, requeueing request",
			slog.Any("err", err),
			slog.String("command", msg.Type),
			slog.String("correlation_id", msg.CorrelationId),
		)
		if nackErr := msg.Nack(false, true); nackErr != nil {
			slog.Error("failed to nack request", slog.Any("err", nackErr), slog.Uint64("delivery_tag", msg.DeliveryTag))
		}
		return
	}

	s.ack(msg)
}

func (s *Server) ack(msg amqp.Delivery) {
	if err := msg.Ack(false); err != nil {
		slog.Error("failed to ack request", slog.Any("err", err), slog.Uint64("delivery_tag", msg.DeliveryTag))
	}
}
