package push

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/Inventario-dashboard/pkg/logger"
)

// subscription canal de salida de una suscripción. send y close se serializan para
// que nunca se escriba en un canal cerrado.
type subscription struct {
	topic string
	ch    chan entity.LiveUpdateEvent
	done  chan struct{}
	once  sync.Once

	mu     sync.Mutex
	closed bool
}

func newSubscription(topic string, buffer int) *subscription {
	return &subscription{
		topic: topic,
		ch:    make(chan entity.LiveUpdateEvent, buffer),
		done:  make(chan struct{}),
	}
}

func (s *subscription) send(ctx context.Context, ev entity.LiveUpdateEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	select {
	case s.ch <- ev:
		return nil
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// deliver decodifica un payload del broker y lo entrega. Los payloads malformados se
// registran y se descartan.
func (s *subscription) deliver(ctx context.Context, payload []byte, log *logger.Logger) error {
	ev, err := DecodeEvent(payload, time.Now)
	if err != nil {
		log.Warn().Err(err).Str("topic", s.topic).Bytes("payload", truncate(payload, 256)).Msg("evento descartado")
		return nil
	}
	return s.send(ctx, ev)
}

func (s *subscription) close() {
	s.once.Do(func() {
		close(s.done)
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
	})
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
