package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Inventario-dashboard/internal/domain"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/Inventario-dashboard/pkg/logger"
)

// Listener aplica cada evento push como parche incremental sobre el State.
// Un único consumidor por vista: los eventos se aplican en el orden de llegada.
type Listener struct {
	state  *State
	recent *recentIDs
	log    *logger.Logger
}

// NewListener construye el listener. dedupeWindow > 0 descarta eventos cuyo
// (tipo, record_id) ya se aplicó entre los últimos dedupeWindow eventos.
func NewListener(state *State, dedupeWindow int, log *logger.Logger) *Listener {
	if log == nil {
		log = logger.Nop()
	}
	return &Listener{
		state:  state,
		recent: newRecentIDs(dedupeWindow),
		log:    log.Component("listener"),
	}
}

// Run consume events hasta que ctx termine (devuelve nil) o el stream se cierre
// (devuelve domain.ErrChannelClosed). Los eventos inválidos se registran y se saltan.
func (l *Listener) Run(ctx context.Context, events <-chan entity.LiveUpdateEvent) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return domain.ErrChannelClosed
			}
			// select elige al azar si ambos casos están listos
			if ctx.Err() != nil {
				return nil
			}
			if err := l.Handle(ev); err != nil {
				if errors.Is(err, domain.ErrViewClosed) {
					return nil
				}
				l.log.Warn().Err(err).
					Str("kind", string(ev.Kind)).
					Int64("record_id", ev.RecordID).
					Msg("evento descartado")
			}
		}
	}
}

// Handle valida, deduplica y aplica un evento.
func (l *Listener) Handle(ev entity.LiveUpdateEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if l.recent.seen(ev.Kind, ev.RecordID) {
		l.log.Debug().Str("kind", string(ev.Kind)).Int64("record_id", ev.RecordID).Msg("evento duplicado ignorado")
		return nil
	}
	if err := l.state.Apply(ev); err != nil {
		return fmt.Errorf("aplicar evento: %w", err)
	}
	l.recent.add(ev.Kind, ev.RecordID)
	l.log.Debug().
		Str("kind", string(ev.Kind)).
		Str("barcode", ev.Barcode).
		Int64("quantity", ev.Quantity).
		Msg("evento aplicado")
	return nil
}

type recentKey struct {
	kind entity.EventKind
	id   int64
}

// recentIDs ventana FIFO de los últimos record_id aplicados. Solo la usa la goroutine del Listener.
type recentIDs struct {
	limit int
	order []recentKey
	set   map[recentKey]struct{}
}

func newRecentIDs(limit int) *recentIDs {
	if limit <= 0 {
		return &recentIDs{}
	}
	return &recentIDs{limit: limit, set: make(map[recentKey]struct{}, limit)}
}

// seen: un record_id 0 significa "sin id" y nunca se considera repetido.
func (r *recentIDs) seen(kind entity.EventKind, id int64) bool {
	if r.limit == 0 || id == 0 {
		return false
	}
	_, ok := r.set[recentKey{kind, id}]
	return ok
}

func (r *recentIDs) add(kind entity.EventKind, id int64) {
	if r.limit == 0 || id == 0 {
		return
	}
	k := recentKey{kind, id}
	if len(r.order) == r.limit {
		delete(r.set, r.order[0])
		r.order = r.order[1:]
	}
	r.order = append(r.order, k)
	r.set[k] = struct{}{}
}
