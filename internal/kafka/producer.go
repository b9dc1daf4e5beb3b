package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var ErrProducerClosed = errors.New("kafka producer closed")

type Producer struct {
	w         *kafka.Writer
	inbox     chan kafka.Message
	done      chan struct{} // closed by Close
	closeCh   chan struct{} // closed once the loop has exited
	closeOnce sync.Once
	log       *zap.Logger
}

func NewProducer(brokers []string, topic string, buf int, log *zap.Logger) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
		inbox:   make(chan kafka.Message, buf),
		done:    make(chan struct{}),
		closeCh: make(chan struct{}),
		log:     log.With(zap.String("topic", topic)),
	}
}

// Start runs the write loop until Close is called; messages already queued
// are flushed before the writer is closed.
func (p *Producer) Start(ctx context.Context) {
	// Writes outlive ctx so the inbox can still be flushed on shutdown.
	wctx := context.WithoutCancel(ctx)
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case m := <-p.inbox:
				p.write(wctx, m)
			case <-p.done:
				for {
					select {
					case m := <-p.inbox:
						p.write(wctx, m)
					default:
						if err := p.w.Close(); err != nil {
							p.log.Warn("kafka writer close", zap.Error(err))
						}
						return
					}
				}
			}
		}
	}()
}

func (p *Producer) write(ctx context.Context, m kafka.Message) {
	if err := p.w.WriteMessages(ctx, m); err != nil {
		p.log.Error("kafka write failed", zap.ByteString("key", m.Key), zap.Error(err))
	}
}

// Publish queues a message. It gives up when ctx ends before there is room
// in the inbox, so a stalled broker never holds a caller hostage.
func (p *Producer) Publish(ctx context.Context, key, value []byte, headers ...kafka.Header) error {
	m := kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
	select {
	case <-p.done:
		return ErrProducerClosed
	default:
	}
	select {
	case p.inbox <- m:
		return nil
	case <-p.done:
		return ErrProducerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting messages; the loop drains the inbox and exits.
func (p *Producer) Close() { p.closeOnce.Do(func() { close(p.done) }) }

// WaitClosed blocks until the loop has flushed and exited.
func (p *Producer) WaitClosed() { <-p.closeCh }
