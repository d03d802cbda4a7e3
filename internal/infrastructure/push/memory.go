package push

import (
	"context"
	"sync"

	"github.com/jhoicas/Inventario-dashboard/internal/application/ports"
	"github.com/jhoicas/Inventario-dashboard/internal/domain"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/Inventario-dashboard/pkg/logger"
)

const defaultMemoryBuffer = 64

var _ ports.PushChannel = (*Memory)(nil)

// Memory bus en proceso. Publish bloquea mientras un suscriptor tenga el buffer lleno.
type Memory struct {
	tracker stateTracker
	buffer  int
	log     *logger.Logger

	mu     sync.Mutex
	subs   map[string]map[*subscription]struct{}
	closed bool
}

// NewMemory crea el bus. buffer <= 0 usa el valor por defecto.
func NewMemory(buffer int, log *logger.Logger) *Memory {
	if buffer <= 0 {
		buffer = defaultMemoryBuffer
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Memory{
		buffer: buffer,
		log:    log.Component("push.memory"),
		subs:   make(map[string]map[*subscription]struct{}),
	}
}

func (m *Memory) Connect(ctx context.Context) error {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return domain.ErrChannelClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.tracker.set(ports.StateConnecting)
	m.tracker.set(ports.StateConnected)
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, topic string) (<-chan entity.LiveUpdateEvent, error) {
	if !m.Connected() {
		return nil, domain.ErrNotConnected
	}
	sub := newSubscription(topic, m.buffer)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, domain.ErrChannelClosed
	}
	if m.subs[topic] == nil {
		m.subs[topic] = make(map[*subscription]struct{})
	}
	m.subs[topic][sub] = struct{}{}
	m.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			m.unsubscribe(topic, sub)
		case <-sub.done:
		}
	}()
	m.log.Debug().Str("topic", topic).Msg("suscrito")
	return sub.ch, nil
}

// Publish entrega el evento a cada suscriptor del tópico. Con el canal caído (Drop)
// devuelve ErrNotConnected, igual que un broker inalcanzable.
func (m *Memory) Publish(ctx context.Context, topic string, ev entity.LiveUpdateEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if !m.Connected() {
		return domain.ErrNotConnected
	}

	m.mu.Lock()
	targets := make([]*subscription, 0, len(m.subs[topic]))
	for s := range m.subs[topic] {
		targets = append(targets, s)
	}
	m.mu.Unlock()

	for _, s := range targets {
		if err := s.send(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) Connected() bool { return m.tracker.get() == ports.StateConnected }

func (m *Memory) State() ports.ChannelState { return m.tracker.get() }

func (m *Memory) OnStateChange(fn func(ports.ChannelState)) { m.tracker.onChange(fn) }

// Drop simula una caída de la conexión; las suscripciones se conservan.
func (m *Memory) Drop() { m.tracker.set(ports.StateDisconnected) }

// Restore simula la reconexión tras Drop.
func (m *Memory) Restore() {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return
	}
	m.tracker.set(ports.StateConnecting)
	m.tracker.set(ports.StateConnected)
}

// Close cierra todas las suscripciones. Es idempotente.
func (m *Memory) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	var all []*subscription
	for _, set := range m.subs {
		for s := range set {
			all = append(all, s)
		}
	}
	m.subs = make(map[string]map[*subscription]struct{})
	m.mu.Unlock()

	for _, s := range all {
		s.close()
	}
	m.tracker.set(ports.StateDisconnected)
	return nil
}

func (m *Memory) unsubscribe(topic string, sub *subscription) {
	m.mu.Lock()
	if set := m.subs[topic]; set != nil {
		delete(set, sub)
		if len(set) == 0 {
			delete(m.subs, topic)
		}
	}
	m.mu.Unlock()
	sub.close()
}
