package dashboard_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-dashboard/internal/application/dashboard"
	"github.com/jhoicas/Inventario-dashboard/internal/domain"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
)

func scanRows(n int) []entity.ScanListEntry {
	rows := make([]entity.ScanListEntry, 0, n)
	for i := n; i >= 1; i-- {
		rows = append(rows, entity.ScanListEntry{Barcode: fmt.Sprintf("BC%02d", i), Quantity: 1, SequenceID: int64(i)})
	}
	return rows
}

func fullRepo() *fakeRepo {
	return &fakeRepo{
		stats: entity.WarehouseStats{FirstStock: 50, Receiving: 20, Shipping: 0, WarehouseStock: 70},
		chart: []entity.ChartSeriesPoint{
			{Date: "2026-03-01", ReceivingTotal: 5, ShippingTotal: 2},
			{Date: "2026-03-02", ReceivingTotal: 7, ShippingTotal: 1},
		},
		shift:     []entity.ShiftSummary{{Username: "op1", Total: 12, Percent: decimal.NewFromInt(60), Status: 1}},
		items:     []entity.ItemSummary{{Item: "SHOES", Total: 70, Status: 2}},
		receiving: scanRows(3),
		shipping:  scanRows(1),
	}
}

func TestRefresh_ReemplazaSnapshotCompleto(t *testing.T) {
	repo := fullRepo()
	state := dashboard.NewState(10)
	agg := dashboard.NewAggregator(repo, state, nil)

	require.NoError(t, agg.Refresh(context.Background()))

	snap := state.Snapshot()
	assert.Equal(t, repo.stats, snap.Stats)
	assert.Equal(t, repo.chart, snap.ChartSeries)
	assert.Equal(t, repo.shift, snap.ShiftSummary)
	assert.Equal(t, repo.items, snap.ItemSummary)
	assert.Equal(t, repo.receiving, snap.ReceivingList.Entries())
	assert.Equal(t, repo.shipping, snap.ShippingList.Entries())
	assert.False(t, snap.Loading)
	assert.False(t, snap.LastRefresh.IsZero())
}

// Si una de las seis lecturas falla después de que las otras cinco respondieron,
// el Snapshot conserva el valor previo y el indicador de carga queda apagado.
func TestRefresh_FalloParcialNoModificaSnapshot(t *testing.T) {
	for _, resource := range []string{
		"warehouse-stats", "daily-chart", "shift-scan", "warehouse-items", "receiving-list", "shipping-list",
	} {
		t.Run(resource, func(t *testing.T) {
			state := dashboard.NewState(10)
			previo := dashboard.Snapshot{
				Stats:         entity.WarehouseStats{FirstStock: 1, Receiving: 2, Shipping: 3, WarehouseStock: 0},
				ChartSeries:   []entity.ChartSeriesPoint{{Date: "2026-01-01"}},
				ReceivingList: entity.ScanListFrom(10, scanRows(2)),
				ShippingList:  entity.NewScanList(10),
			}
			require.NoError(t, state.Replace(previo))
			antes := state.Snapshot()

			repo := fullRepo()
			repo.failOn = resource
			repo.failDelay = 20 * time.Millisecond

			err := dashboard.NewAggregator(repo, state, nil).Refresh(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, errBackend)
			assert.Contains(t, err.Error(), resource)

			assert.Equal(t, antes, state.Snapshot())
			assert.False(t, state.Loading())
		})
	}
}

func TestRefresh_RecortaListasAlTope(t *testing.T) {
	repo := fullRepo()
	repo.receiving = scanRows(14)
	state := dashboard.NewState(10)

	require.NoError(t, dashboard.NewAggregator(repo, state, nil).Refresh(context.Background()))

	got := state.Snapshot().ReceivingList.Entries()
	require.Len(t, got, 10)
	assert.Equal(t, int64(14), got[0].SequenceID)
	assert.Equal(t, int64(5), got[9].SequenceID)
}

func TestRefresh_IndicadorDeCarga(t *testing.T) {
	repo := fullRepo()
	repo.block = make(chan struct{})
	state := dashboard.NewState(10)
	agg := dashboard.NewAggregator(repo, state, nil)

	done := make(chan error, 1)
	go func() { done <- agg.Refresh(context.Background()) }()

	assert.Eventually(t, state.Loading, time.Second, 5*time.Millisecond, "debe estar cargando mientras espera")
	assert.True(t, state.Snapshot().Loading)

	close(repo.block)
	require.NoError(t, <-done)
	assert.False(t, state.Loading())
}

func TestRefresh_ContextoCanceladoLimpiaCarga(t *testing.T) {
	repo := fullRepo()
	repo.block = make(chan struct{})
	state := dashboard.NewState(10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := dashboard.NewAggregator(repo, state, nil).Refresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, state.Loading())
}

// gatedRepo: la primera lectura de stats espera a gate y devuelve datos viejos; las
// siguientes responden al instante con los nuevos.
type gatedRepo struct {
	*fakeRepo
	gate    chan struct{}
	started chan struct{}
	n       atomic.Int32
}

func (g *gatedRepo) GetWarehouseStats(ctx context.Context) (entity.WarehouseStats, error) {
	if g.n.Add(1) == 1 {
		close(g.started)
		select {
		case <-g.gate:
		case <-ctx.Done():
			return entity.WarehouseStats{}, ctx.Err()
		}
		return entity.WarehouseStats{Receiving: 1, WarehouseStock: 1}, nil
	}
	return entity.WarehouseStats{Receiving: 99, WarehouseStock: 99}, nil
}

func TestRefresh_ResultadoAntiguoNoPisaUnoNuevo(t *testing.T) {
	repo := &gatedRepo{fakeRepo: fullRepo(), gate: make(chan struct{}), started: make(chan struct{})}
	state := dashboard.NewState(10)
	agg := dashboard.NewAggregator(repo, state, nil)

	first := make(chan error, 1)
	go func() { first <- agg.Refresh(context.Background()) }()
	<-repo.started

	require.NoError(t, agg.Refresh(context.Background()))
	require.Equal(t, int64(99), state.Snapshot().Stats.Receiving)

	close(repo.gate)
	require.NoError(t, <-first)

	snap := state.Snapshot()
	assert.Equal(t, int64(99), snap.Stats.Receiving)
	assert.Equal(t, int64(99), snap.Stats.WarehouseStock)
	assert.False(t, snap.Loading)
}

func TestState_ReplaceNewerDescartaGeneracionesViejas(t *testing.T) {
	state := dashboard.NewState(10)
	g1, release1 := state.BeginLoading()
	g2, release2 := state.BeginLoading()
	defer release1()
	defer release2()
	require.Greater(t, g2, g1)

	ok, err := state.ReplaceNewer(g2, dashboard.Snapshot{Stats: entity.WarehouseStats{Receiving: 2}})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = state.ReplaceNewer(g1, dashboard.Snapshot{Stats: entity.WarehouseStats{Receiving: 1}})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(2), state.Snapshot().Stats.Receiving)

	state.Seal()
	_, err = state.ReplaceNewer(g2+1, dashboard.Snapshot{})
	assert.ErrorIs(t, err, domain.ErrViewClosed)
}
