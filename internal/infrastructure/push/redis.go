package push

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Inventario-dashboard/internal/application/ports"
	"github.com/jhoicas/Inventario-dashboard/internal/domain"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/Inventario-dashboard/pkg/logger"
)

const (
	defaultHealthInterval = 5 * time.Second
	redisChannelSize      = 128
)

var _ ports.PushChannel = (*Redis)(nil)

// RedisOptions conexión a Redis. Connect reintenta el ping inicial ReconnectAttempts
// veces separadas por ReconnectDelay.
type RedisOptions struct {
	Addr              string
	Password          string
	DB                int
	HealthInterval    time.Duration
	ReconnectAttempts int
	ReconnectDelay    time.Duration
}

// Redis canal push sobre Redis Pub/Sub. go-redis reconecta y re-suscribe por su
// cuenta; aquí solo se observa la conexión para reportar el estado.
type Redis struct {
	client     *redis.Client
	ownsClient bool
	health     time.Duration
	attempts   int
	delay      time.Duration
	tracker    stateTracker
	log        *logger.Logger

	mu          sync.Mutex
	closed      bool
	stopMon     context.CancelFunc
	pubsubs     map[*redis.PubSub]*subscription
	recoveredAt time.Time // último ciclo Disconnected→Connected anunciado
	now         func() time.Time
}

// NewRedis crea el cliente con opts; Close también cierra el cliente.
func NewRedis(opts RedisOptions, log *logger.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	r := NewRedisWithClient(client, opts, log)
	r.ownsClient = true
	return r
}

// NewRedisWithClient reutiliza un cliente existente (por ejemplo el del almacén de
// sesión); de opts solo se usan los intervalos y reintentos. Close no cierra el cliente.
func NewRedisWithClient(client *redis.Client, opts RedisOptions, log *logger.Logger) *Redis {
	if opts.HealthInterval <= 0 {
		opts.HealthInterval = defaultHealthInterval
	}
	if opts.ReconnectAttempts <= 0 {
		opts.ReconnectAttempts = defaultReconnectAttempts
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = defaultReconnectDelay
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Redis{
		client:   client,
		health:   opts.HealthInterval,
		attempts: opts.ReconnectAttempts,
		delay:    opts.ReconnectDelay,
		now:      time.Now,
		log:      log.Component("push.redis"),
		pubsubs:  make(map[*redis.PubSub]*subscription),
	}
}

func (r *Redis) Connect(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return domain.ErrChannelClosed
	}
	r.mu.Unlock()

	r.tracker.set(ports.StateConnecting)
	if err := r.ping(ctx); err != nil {
		r.tracker.set(ports.StateDisconnected)
		return err
	}
	r.tracker.set(ports.StateConnected)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopMon == nil && !r.closed {
		monCtx, cancel := context.WithCancel(context.Background())
		r.stopMon = cancel
		go r.monitor(monCtx)
	}
	r.log.Info().Str("addr", r.client.Options().Addr).Msg("conectado")
	return nil
}

// ping espera a que Redis responda, con reintentos.
func (r *Redis) ping(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		err := r.client.Ping(ctx).Err()
		if err == nil {
			return nil
		}
		lastErr = err
		r.log.Warn().Err(err).Int("attempt", attempt).Msg("no se pudo conectar a Redis")

		if attempt == r.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.delay):
		}
	}
	return fmt.Errorf("push redis: %d intentos: %w", r.attempts, lastErr)
}

func (r *Redis) Subscribe(ctx context.Context, topic string) (<-chan entity.LiveUpdateEvent, error) {
	if !r.Connected() {
		return nil, domain.ErrNotConnected
	}

	ps := r.client.Subscribe(ctx, topic)
	// la primera respuesta confirma la suscripción
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("push redis: suscribir %s: %w", topic, err)
	}

	sub := newSubscription(topic, redisChannelSize)
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = ps.Close()
		return nil, domain.ErrChannelClosed
	}
	r.pubsubs[ps] = sub
	r.mu.Unlock()

	msgs := ps.ChannelWithSubscriptions(redis.WithChannelSize(redisChannelSize))
	go func() {
		defer r.release(ps)
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				switch m := m.(type) {
				case *redis.Subscription:
					if m.Kind == "subscribe" {
						r.resubscribed(m.Channel)
					}
				case *redis.Message:
					if err := sub.deliver(ctx, []byte(m.Payload), r.log); err != nil {
						return
					}
				}
			}
		}
	}()
	r.log.Debug().Str("topic", topic).Msg("suscrito")
	return sub.ch, nil
}

func (r *Redis) Publish(ctx context.Context, topic string, ev entity.LiveUpdateEvent) error {
	payload, err := EncodeEvent(ev)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("push redis: publicar en %s: %w", topic, err)
	}
	return nil
}

func (r *Redis) Connected() bool { return r.tracker.get() == ports.StateConnected }

func (r *Redis) State() ports.ChannelState { return r.tracker.get() }

func (r *Redis) OnStateChange(fn func(ports.ChannelState)) { r.tracker.onChange(fn) }

// Close cierra las suscripciones y, si es propio, el cliente. Es idempotente.
func (r *Redis) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	stop := r.stopMon
	pubsubs := r.pubsubs
	r.pubsubs = make(map[*redis.PubSub]*subscription)
	r.mu.Unlock()

	if stop != nil {
		stop()
	}
	for ps, sub := range pubsubs {
		_ = ps.Close()
		sub.close()
	}
	r.tracker.set(ports.StateDisconnected)

	if r.ownsClient {
		if err := r.client.Close(); err != nil {
			return fmt.Errorf("push redis: cerrar cliente: %w", err)
		}
	}
	return nil
}

func (r *Redis) release(ps *redis.PubSub) {
	r.mu.Lock()
	sub, ok := r.pubsubs[ps]
	delete(r.pubsubs, ps)
	r.mu.Unlock()
	if ok {
		_ = ps.Close()
		sub.close()
	}
}

// resubscribed: go-redis repite el "subscribe" tras reconectar la conexión Pub/Sub.
// Si el monitor (u otra suscripción) ya anunció la recuperación hace poco, no se
// repite el ciclo de estados.
func (r *Redis) resubscribed(topic string) {
	r.log.Info().Str("topic", topic).Msg("re-suscrito tras reconexión")
	if r.Connected() && r.recentlyRecovered() {
		return
	}
	r.recovered()
}

// recovered anuncia la reconexión: Disconnected → Connecting → Connected.
func (r *Redis) recovered() {
	r.mu.Lock()
	r.recoveredAt = r.now()
	r.mu.Unlock()

	r.tracker.set(ports.StateDisconnected)
	r.tracker.set(ports.StateConnecting)
	r.tracker.set(ports.StateConnected)
}

// recentlyRecovered: la ventana cubre el desfase entre el ping del monitor y la
// re-suscripción de go-redis.
func (r *Redis) recentlyRecovered() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.recoveredAt.IsZero() && r.now().Sub(r.recoveredAt) < 2*r.health
}

// monitor hace ping periódico para detectar caídas mientras no hay tráfico.
func (r *Redis) monitor(ctx context.Context) {
	t := time.NewTicker(r.health)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		pingCtx, cancel := context.WithTimeout(ctx, r.health)
		err := r.client.Ping(pingCtx).Err()
		cancel()
		if ctx.Err() != nil {
			return
		}
		switch {
		case err != nil && r.tracker.get() != ports.StateDisconnected:
			r.log.Warn().Err(err).Msg("conexión perdida")
			r.tracker.set(ports.StateDisconnected)
		case err == nil && r.tracker.get() == ports.StateDisconnected:
			r.recovered()
		}
	}
}
