package dashboard_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/Inventario-dashboard/internal/application/ports"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
)

var errBackend = errors.New("backend caído")

// fakeRepo StatsRepository en memoria. failOn indica qué lectura falla (por nombre de recurso).
type fakeRepo struct {
	mu        sync.Mutex
	stats     entity.WarehouseStats
	chart     []entity.ChartSeriesPoint
	shift     []entity.ShiftSummary
	items     []entity.ItemSummary
	receiving []entity.ScanListEntry
	shipping  []entity.ScanListEntry

	failOn    string
	failDelay time.Duration
	block     chan struct{} // si no es nil, GetWarehouseStats espera a que se cierre
	calls     atomic.Int32
}

func (f *fakeRepo) fail(ctx context.Context, resource string) error {
	if f.failOn != resource {
		return nil
	}
	if f.failDelay > 0 {
		select {
		case <-time.After(f.failDelay):
		case <-ctx.Done():
		}
	}
	return errBackend
}

func (f *fakeRepo) setStats(s entity.WarehouseStats) {
	f.mu.Lock()
	f.stats = s
	f.mu.Unlock()
}

func (f *fakeRepo) GetWarehouseStats(ctx context.Context) (entity.WarehouseStats, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return entity.WarehouseStats{}, ctx.Err()
		}
	}
	if err := f.fail(ctx, "warehouse-stats"); err != nil {
		return entity.WarehouseStats{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats, nil
}

func (f *fakeRepo) GetDailyChart(ctx context.Context) ([]entity.ChartSeriesPoint, error) {
	if err := f.fail(ctx, "daily-chart"); err != nil {
		return nil, err
	}
	return f.chart, nil
}

func (f *fakeRepo) GetShiftScan(ctx context.Context) ([]entity.ShiftSummary, error) {
	if err := f.fail(ctx, "shift-scan"); err != nil {
		return nil, err
	}
	return f.shift, nil
}

func (f *fakeRepo) GetWarehouseItems(ctx context.Context) ([]entity.ItemSummary, error) {
	if err := f.fail(ctx, "warehouse-items"); err != nil {
		return nil, err
	}
	return f.items, nil
}

func (f *fakeRepo) GetReceivingList(ctx context.Context) ([]entity.ScanListEntry, error) {
	if err := f.fail(ctx, "receiving-list"); err != nil {
		return nil, err
	}
	return f.receiving, nil
}

func (f *fakeRepo) GetShippingList(ctx context.Context) ([]entity.ScanListEntry, error) {
	if err := f.fail(ctx, "shipping-list"); err != nil {
		return nil, err
	}
	return f.shipping, nil
}

// fakePush PushChannel controlado por el test.
type fakePush struct {
	mu         sync.Mutex
	state      ports.ChannelState
	listeners  []func(ports.ChannelState)
	connectErr error
	out        chan entity.LiveUpdateEvent
	closed     atomic.Bool
}

var _ ports.PushChannel = (*fakePush)(nil)

func newFakePush() *fakePush {
	return &fakePush{out: make(chan entity.LiveUpdateEvent, 16)}
}

func (p *fakePush) emit(st ports.ChannelState) {
	p.mu.Lock()
	p.state = st
	ls := append(([]func(ports.ChannelState))(nil), p.listeners...)
	p.mu.Unlock()
	for _, fn := range ls {
		fn(st)
	}
}

func (p *fakePush) Connect(ctx context.Context) error {
	p.emit(ports.StateConnecting)
	if p.connectErr != nil {
		p.emit(ports.StateDisconnected)
		return p.connectErr
	}
	p.emit(ports.StateConnected)
	return nil
}

func (p *fakePush) Subscribe(ctx context.Context, topic string) (<-chan entity.LiveUpdateEvent, error) {
	return p.out, nil
}

func (p *fakePush) Publish(ctx context.Context, topic string, ev entity.LiveUpdateEvent) error {
	select {
	case p.out <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *fakePush) Connected() bool { return p.State() == ports.StateConnected }

func (p *fakePush) State() ports.ChannelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *fakePush) OnStateChange(fn func(ports.ChannelState)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

func (p *fakePush) Close() error {
	p.closed.Store(true)
	p.emit(ports.StateDisconnected)
	return nil
}
