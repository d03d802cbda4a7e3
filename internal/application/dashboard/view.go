package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-dashboard/internal/application/ports"
	"github.com/jhoicas/Inventario-dashboard/internal/domain"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/repository"
	"github.com/jhoicas/Inventario-dashboard/pkg/logger"
)

// ViewConfig parámetros de la vista.
type ViewConfig struct {
	ListCap         int
	Topic           string
	RefreshInterval time.Duration // 0 = solo la carga inicial
	DedupeWindow    int
}

// View ciclo de vida de un dashboard montado: carga inicial, recarga periódica opcional,
// suscripción push y resync tras cada reconexión del canal. Teardown lo detiene todo.
type View struct {
	id         string
	cfg        ViewConfig
	state      *State
	aggregator *Aggregator
	listener   *Listener
	push       ports.PushChannel
	log        *logger.Logger

	mu       sync.Mutex
	mounted  bool
	torndown bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	wasConnected atomic.Bool
	resync       chan struct{}
}

// NewView construye la vista. push puede ser nil (solo recargas).
func NewView(repo repository.StatsRepository, push ports.PushChannel, cfg ViewConfig, log *logger.Logger) *View {
	if log == nil {
		log = logger.Nop()
	}
	id := uuid.New().String()
	log = log.WithStr("view_id", id)

	state := NewState(cfg.ListCap)
	return &View{
		id:         id,
		cfg:        cfg,
		state:      state,
		aggregator: NewAggregator(repo, state, log),
		listener:   NewListener(state, cfg.DedupeWindow, log),
		push:       push,
		log:        log.Component("view"),
		resync:     make(chan struct{}, 1),
	}
}

// ID identificador de esta instancia de vista.
func (v *View) ID() string { return v.id }

// Mount arranca la vista. La carga inicial corre en segundo plano (el indicador de
// carga queda encendido mientras tanto); un fallo del canal push se registra pero no
// impide montar la vista.
func (v *View) Mount(ctx context.Context) error {
	v.mu.Lock()
	if v.torndown {
		v.mu.Unlock()
		return domain.ErrViewClosed
	}
	if v.mounted {
		v.mu.Unlock()
		return fmt.Errorf("dashboard: vista %s ya montada", v.id)
	}
	v.mounted = true

	ctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		v.refreshLoop(ctx)
	}()
	v.mu.Unlock()

	if v.push == nil {
		return nil
	}

	// Connect puede reintentar; se hace fuera del lock para que Teardown pueda cancelarlo.
	v.push.OnStateChange(v.onChannelState)
	if err := v.push.Connect(ctx); err != nil {
		v.log.Error().Err(err).Msg("no se pudo conectar el canal push; el dashboard solo se actualizará por recarga")
		return nil
	}
	events, err := v.push.Subscribe(ctx, v.cfg.Topic)
	if err != nil {
		v.log.Error().Err(err).Str("topic", v.cfg.Topic).Msg("suscripción push fallida")
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.torndown {
		return nil
	}
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		if err := v.listener.Run(ctx, events); err != nil && ctx.Err() == nil {
			v.log.Warn().Err(err).Msg("stream push terminado")
		}
	}()
	return nil
}

// Teardown desmonta la vista: ningún evento ni recarga posterior modifica el Snapshot.
// Es idempotente.
func (v *View) Teardown() {
	v.mu.Lock()
	if v.torndown {
		v.mu.Unlock()
		return
	}
	v.torndown = true
	cancel := v.cancel
	v.mu.Unlock()

	v.state.Seal()
	if cancel != nil {
		cancel()
	}
	if v.push != nil {
		if err := v.push.Close(); err != nil {
			v.log.Warn().Err(err).Msg("cerrar canal push")
		}
	}
	v.wg.Wait()
	v.log.Info().Msg("vista desmontada")
}

// Refresh recarga el Snapshot completo (también lo usa POST /api/dashboard/refresh).
func (v *View) Refresh(ctx context.Context) error {
	if v.state.Sealed() {
		return domain.ErrViewClosed
	}
	return v.aggregator.Refresh(ctx)
}

// Snapshot copia del estado actual.
func (v *View) Snapshot() Snapshot { return v.state.Snapshot() }

// Connected estado del canal push (false si no hay canal).
func (v *View) Connected() bool {
	return v.push != nil && v.push.Connected()
}

// refreshLoop: carga inicial, luego ticker y pedidos de resync hasta que ctx termine.
func (v *View) refreshLoop(ctx context.Context) {
	v.refreshAndLog(ctx, "mount")

	var tick <-chan time.Time
	if v.cfg.RefreshInterval > 0 {
		t := time.NewTicker(v.cfg.RefreshInterval)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			v.refreshAndLog(ctx, "interval")
		case <-v.resync:
			v.refreshAndLog(ctx, "reconnect")
		}
	}
}

func (v *View) refreshAndLog(ctx context.Context, reason string) {
	err := v.aggregator.Refresh(ctx)
	switch {
	case err == nil:
		v.log.Info().Str("reason", reason).Msg("dashboard actualizado")
	case ctx.Err() != nil, errors.Is(err, domain.ErrViewClosed):
		// vista desmontada durante la recarga
	default:
		v.log.Error().Err(err).Str("reason", reason).Msg("no se pudo actualizar el dashboard")
	}
}

// onChannelState pide un resync completo cada vez que el canal vuelve a Connected
// después de haber estado conectado (reconexión).
func (v *View) onChannelState(st ports.ChannelState) {
	v.log.Info().Str("state", st.String()).Msg("canal push")
	if st != ports.StateConnected {
		return
	}
	if !v.wasConnected.Swap(true) {
		return
	}
	select {
	case v.resync <- struct{}{}:
	default:
	}
}
