package ports

import (
	"context"

	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
)

// ChannelState estado de la conexión con el canal push.
// Disconnected --Connect--> Connecting --ok--> Connected --error/Close--> Disconnected.
type ChannelState int32

const (
	StateDisconnected ChannelState = iota
	StateConnecting
	StateConnected
)

func (s ChannelState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// PushChannel canal persistente de eventos de escaneo (suscripción por tópico).
// La reconexión, si existe, es responsabilidad de la implementación; quien consume
// solo observa Connected() y los cambios de estado.
type PushChannel interface {
	// Connect abre la conexión. Un fallo deja el canal en StateDisconnected.
	Connect(ctx context.Context) error

	// Subscribe entrega los eventos del tópico en orden de llegada. El canal devuelto
	// se cierra cuando ctx termina, se llama Close o la conexión se pierde sin remedio.
	Subscribe(ctx context.Context, topic string) (<-chan entity.LiveUpdateEvent, error)

	// Publish publica un evento en el tópico (herramientas de desarrollo y pruebas).
	Publish(ctx context.Context, topic string, ev entity.LiveUpdateEvent) error

	Connected() bool
	State() ChannelState

	// OnStateChange registra fn; se invoca en cada transición, desde la goroutine del adaptador.
	OnStateChange(fn func(ChannelState))

	Close() error
}
