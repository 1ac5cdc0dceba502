// Package nats implements the message queue port using NATS JetStream.
package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/Strob0t/TaskScheduler/internal/logger"
	"github.com/Strob0t/TaskScheduler/internal/port/messagequeue"
)

const (
	streamName      = "TASKSCHEDULER"
	streamMaxAge    = 7 * 24 * time.Hour
	headerRequestID = "X-Request-ID"
)

// Queue implements messagequeue.Queue using NATS JetStream.
type Queue struct {
	nc *nats.Conn
	js jetstream.JetStream
}

var _ messagequeue.Queue = (*Queue)(nil)

// Connect establishes a connection to NATS and ensures the JetStream stream exists.
func Connect(ctx context.Context, url string) (*Queue, error) {
	nc, err := nats.Connect(url, nats.Name("taskscheduler"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"tasks.>"},
		MaxAge:   streamMaxAge,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream stream create: %w", err)
	}

	slog.Info("nats connected", "url", url, "stream", streamName)
	return &Queue{nc: nc, js: js}, nil
}

// Publish validates data against the subject schema and sends it. The
// request ID from ctx travels in the message header.
func (q *Queue) Publish(ctx context.Context, subject string, data []byte) error {
	if err := messagequeue.Validate(subject, data); err != nil {
		return err
	}

	msg := nats.NewMsg(subject)
	msg.Data = data
	if id := logger.RequestID(ctx); id != "" {
		msg.Header.Set(headerRequestID, id)
	}

	if _, err := q.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

// Subscribe registers a handler for new messages on the given subject.
// Handler errors nak the message so JetStream redelivers it.
func (q *Queue) Subscribe(ctx context.Context, subject string, handler messagequeue.Handler) (func(), error) {
	consumer, err := q.js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("nats consumer create: %w", err)
	}

	cons, err := consumer.Consume(func(msg jetstream.Msg) {
		msgCtx := context.Background()
		if id := msg.Headers().Get(headerRequestID); id != "" {
			msgCtx = logger.WithRequestID(msgCtx, id)
		}

		if err := handler(msgCtx, msg.Subject(), msg.Data()); err != nil {
			slog.ErrorContext(msgCtx, "message handler failed", "subject", msg.Subject(), "error", err)
			if nakErr := msg.Nak(); nakErr != nil {
				slog.Error("nats nak failed", "error", nakErr)
			}
			return
		}
		if ackErr := msg.Ack(); ackErr != nil {
			slog.Error("nats ack failed", "error", ackErr)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("nats consume: %w", err)
	}

	return cons.Stop, nil
}

// JetStream returns the JetStream context, used for the shared KV cache.
func (q *Queue) JetStream() jetstream.JetStream {
	return q.js
}

// Drain processes pending messages, then closes the connection.
func (q *Queue) Drain() error {
	return q.nc.Drain()
}

// Close shuts down the NATS connection.
func (q *Queue) Close() error {
	q.nc.Close()
	return nil
}

// IsConnected reports whether the underlying connection is up.
func (q *Queue) IsConnected() bool {
	return q.nc.IsConnected()
}
