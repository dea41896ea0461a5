package natsadapter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
// Each subscriber gets its own ephemeral consumer, so every API instance
// sees every event.
type Subscriber struct {
	js   nats.JetStreamContext
	mu   sync.Mutex
	subs []*nats.Subscription
}

func NewSubscriber(conn *nats.Conn) (*Subscriber, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{js: js}, nil
}

func (s *Subscriber) SubscribeMapRendered(ctx context.Context, handler func(ctx context.Context, evt *domain.MapRendered) error) error {
	sub, err := s.js.Subscribe(SubjectMapRendered, func(msg *nats.Msg) {
		evt, err := DecodeMapRendered(msg.Data)
		if err != nil {
			slog.Warn("dropping malformed event", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, evt); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.DeliverNew(),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectMapRendered, err)
	}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
	return nil
}

// Close removes every subscription.
func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	s.subs = nil
}
