// Package push adaptadores del canal de eventos en vivo del dashboard: Redis Pub/Sub,
// RabbitMQ (exchange topic) y un bus en memoria para desarrollo y pruebas.
package push

import (
	"sync"

	"github.com/jhoicas/Inventario-dashboard/internal/application/ports"
)

// stateTracker estado de conexión compartido por los adaptadores. Los listeners se
// invocan fuera del lock, en el orden de registro.
type stateTracker struct {
	mu        sync.Mutex
	state     ports.ChannelState
	listeners []func(ports.ChannelState)
}

func (t *stateTracker) get() ports.ChannelState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *stateTracker) onChange(fn func(ports.ChannelState)) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	t.listeners = append(t.listeners, fn)
	t.mu.Unlock()
}

// set cambia el estado; no notifica si no hubo transición.
func (t *stateTracker) set(s ports.ChannelState) {
	t.mu.Lock()
	if t.state == s {
		t.mu.Unlock()
		return
	}
	t.state = s
	ls := append(([]func(ports.ChannelState))(nil), t.listeners...)
	t.mu.Unlock()

	for _, fn := range ls {
		fn(s)
	}
}
