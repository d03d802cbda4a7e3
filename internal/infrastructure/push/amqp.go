package push

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/Inventario-dashboard/internal/application/ports"
	"github.com/jhoicas/Inventario-dashboard/internal/domain"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/Inventario-dashboard/pkg/logger"
)

const (
	defaultReconnectAttempts = 5
	defaultReconnectDelay    = time.Second
	amqpChannelSize          = 128
)

var _ ports.PushChannel = (*AMQP)(nil)

// AMQPOptions conexión a RabbitMQ. Los eventos se publican en un exchange topic con
// el tópico como routing key.
type AMQPOptions struct {
	URL               string
	Exchange          string
	ReconnectAttempts int
	ReconnectDelay    time.Duration
}

// AMQP canal push sobre RabbitMQ. Cada suscripción declara una cola exclusiva
// auto-delete. Ante la caída de la conexión reintenta ReconnectAttempts veces; si
// se agotan, las suscripciones se cierran.
type AMQP struct {
	opts    AMQPOptions
	tracker stateTracker
	log     *logger.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	pubCh   *amqp.Channel
	subs    map[*subscription]context.Context
	closed  bool
	done    chan struct{}
	started bool
}

func NewAMQP(opts AMQPOptions, log *logger.Logger) *AMQP {
	if opts.ReconnectAttempts <= 0 {
		opts.ReconnectAttempts = defaultReconnectAttempts
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = defaultReconnectDelay
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AMQP{
		opts: opts,
		log:  log.Component("push.amqp"),
		subs: make(map[*subscription]context.Context),
		done: make(chan struct{}),
	}
}

func (a *AMQP) Connect(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return domain.ErrChannelClosed
	}
	a.mu.Unlock()

	a.tracker.set(ports.StateConnecting)
	if err := a.dial(ctx); err != nil {
		a.tracker.set(ports.StateDisconnected)
		return err
	}
	a.tracker.set(ports.StateConnected)
	a.log.Info().Str("exchange", a.opts.Exchange).Msg("conectado a RabbitMQ")
	return nil
}

// dial abre conexión y canal de publicación con reintentos, y declara el exchange.
func (a *AMQP) dial(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= a.opts.ReconnectAttempts; attempt++ {
		conn, err := amqp.Dial(a.opts.URL)
		if err == nil {
			ch, cerr := a.setup(conn)
			if cerr == nil {
				a.mu.Lock()
				if a.closed {
					a.mu.Unlock()
					_ = conn.Close()
					return domain.ErrChannelClosed
				}
				a.conn, a.pubCh = conn, ch
				watch := !a.started
				a.started = true
				a.mu.Unlock()

				if watch {
					go a.watch()
				}
				return nil
			}
			_ = conn.Close()
			err = cerr
		}
		lastErr = err
		a.log.Warn().Err(err).Int("attempt", attempt).Msg("no se pudo conectar a RabbitMQ")

		if attempt == a.opts.ReconnectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.done:
			return domain.ErrChannelClosed
		case <-time.After(a.opts.ReconnectDelay):
		}
	}
	return fmt.Errorf("push amqp: %d intentos: %w", a.opts.ReconnectAttempts, lastErr)
}

func (a *AMQP) setup(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("abrir canal: %w", err)
	}
	err = ch.ExchangeDeclare(
		a.opts.Exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declarar exchange %s: %w", a.opts.Exchange, err)
	}
	return ch, nil
}

// watch espera la caída de la conexión, reconecta y restablece los consumidores.
func (a *AMQP) watch() {
	for {
		a.mu.Lock()
		conn := a.conn
		a.mu.Unlock()
		if conn == nil {
			return
		}

		closed := conn.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-a.done:
			return
		case amqpErr := <-closed:
			if amqpErr != nil {
				a.log.Warn().Str("reason", amqpErr.Reason).Int("code", amqpErr.Code).Msg("conexión RabbitMQ perdida")
			}
		}

		select {
		case <-a.done:
			return
		default:
		}

		a.tracker.set(ports.StateDisconnected)
		a.tracker.set(ports.StateConnecting)
		if err := a.dial(context.Background()); err != nil {
			a.log.Error().Err(err).Msg("reconexión agotada; se cierran las suscripciones")
			a.tracker.set(ports.StateDisconnected)
			a.closeSubs()
			return
		}

		a.mu.Lock()
		subs := make(map[*subscription]context.Context, len(a.subs))
		for s, ctx := range a.subs {
			subs[s] = ctx
		}
		a.mu.Unlock()
		for sub, ctx := range subs {
			if err := a.consume(ctx, sub); err != nil {
				a.log.Error().Err(err).Str("topic", sub.topic).Msg("no se pudo restablecer la suscripción")
			}
		}
		a.tracker.set(ports.StateConnected)
	}
}

func (a *AMQP) Subscribe(ctx context.Context, topic string) (<-chan entity.LiveUpdateEvent, error) {
	if !a.Connected() {
		return nil, domain.ErrNotConnected
	}
	sub := newSubscription(topic, amqpChannelSize)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil, domain.ErrChannelClosed
	}
	a.subs[sub] = ctx
	a.mu.Unlock()

	if err := a.consume(ctx, sub); err != nil {
		a.drop(sub)
		return nil, err
	}

	go func() {
		select {
		case <-ctx.Done():
			a.drop(sub)
		case <-sub.done:
		}
	}()
	return sub.ch, nil
}

// consume declara la cola exclusiva de sub, la enlaza al tópico y bombea las entregas
// hasta que el canal AMQP se cierre.
func (a *AMQP) consume(ctx context.Context, sub *subscription) error {
	a.mu.Lock()
	conn := a.conn
	a.mu.Unlock()
	if conn == nil {
		return domain.ErrNotConnected
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("push amqp: abrir canal: %w", err)
	}
	q, err := ch.QueueDeclare(
		"",
		false,
		true,
		true,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("push amqp: declarar cola: %w", err)
	}
	if err := ch.QueueBind(q.Name, sub.topic, a.opts.Exchange, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("push amqp: enlazar %s: %w", sub.topic, err)
	}
	deliveries, err := ch.Consume(
		q.Name,
		"",
		true,
		true,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("push amqp: consumir %s: %w", q.Name, err)
	}

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.done:
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := sub.deliver(ctx, d.Body, a.log); err != nil {
					return
				}
			}
		}
	}()
	a.log.Debug().Str("topic", sub.topic).Str("queue", q.Name).Msg("suscrito")
	return nil
}

func (a *AMQP) Publish(ctx context.Context, topic string, ev entity.LiveUpdateEvent) error {
	payload, err := EncodeEvent(ev)
	if err != nil {
		return err
	}
	a.mu.Lock()
	ch := a.pubCh
	a.mu.Unlock()
	if ch == nil || !a.Connected() {
		return domain.ErrNotConnected
	}
	err = ch.PublishWithContext(ctx,
		a.opts.Exchange,
		topic,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        payload,
		},
	)
	if err != nil {
		return fmt.Errorf("push amqp: publicar en %s: %w", topic, err)
	}
	return nil
}

func (a *AMQP) Connected() bool { return a.tracker.get() == ports.StateConnected }

func (a *AMQP) State() ports.ChannelState { return a.tracker.get() }

func (a *AMQP) OnStateChange(fn func(ports.ChannelState)) { a.tracker.onChange(fn) }

// Close cierra suscripciones, canal y conexión. Es idempotente.
func (a *AMQP) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.done)
	conn, ch := a.conn, a.pubCh
	a.conn, a.pubCh = nil, nil
	a.mu.Unlock()

	a.closeSubs()
	a.tracker.set(ports.StateDisconnected)

	if ch != nil {
		_ = ch.Close()
	}
	if conn != nil && !conn.IsClosed() {
		if err := conn.Close(); err != nil {
			return fmt.Errorf("push amqp: cerrar conexión: %w", err)
		}
	}
	return nil
}

func (a *AMQP) drop(sub *subscription) {
	a.mu.Lock()
	delete(a.subs, sub)
	a.mu.Unlock()
	sub.close()
}

func (a *AMQP) closeSubs() {
	a.mu.Lock()
	subs := a.subs
	a.subs = make(map[*subscription]context.Context)
	a.mu.Unlock()
	for s := range subs {
		s.close()
	}
}
