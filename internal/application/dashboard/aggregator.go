// Package dashboard contiene la vista en tiempo real del dashboard de bodega:
// el Aggregator (carga completa), el Listener (parches push) y la View que los compone.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/repository"
	"github.com/jhoicas/Inventario-dashboard/pkg/logger"
)

// Aggregator recarga el Snapshot completo a partir de las seis lecturas del dashboard.
//
// Fuente de datos: StatsRepository (backend REST o PostgreSQL, read-only).
type Aggregator struct {
	repo  repository.StatsRepository
	state *State
	log   *logger.Logger
	now   func() time.Time
}

// NewAggregator construye el agregador sobre el estado de la vista.
func NewAggregator(repo repository.StatsRepository, state *State, log *logger.Logger) *Aggregator {
	if log == nil {
		log = logger.Nop()
	}
	return &Aggregator{repo: repo, state: state, log: log.Component("aggregator"), now: time.Now}
}

// Refresh lanza las seis consultas en paralelo y, solo si todas terminan bien,
// reemplaza el Snapshot de una vez.
//
//  1. GetWarehouseStats  → Stats
//  2. GetDailyChart      → ChartSeries
//  3. GetShiftScan       → ShiftSummary
//  4. GetWarehouseItems  → ItemSummary
//  5. GetReceivingList   → ReceivingList (≤ tope)
//  6. GetShippingList    → ShippingList (≤ tope)
//
// El primer error cancela las demás consultas y se devuelve tal cual (envuelto); el
// Snapshot queda intacto. El indicador de carga se apaga en cualquier caso. Si otra
// recarga iniciada después ya aplicó su resultado, este se descarta.
func (a *Aggregator) Refresh(ctx context.Context) error {
	gen, release := a.state.BeginLoading()
	defer release()

	start := a.now()

	var (
		stats     entity.WarehouseStats
		chart     []entity.ChartSeriesPoint
		shift     []entity.ShiftSummary
		items     []entity.ItemSummary
		receiving []entity.ScanListEntry
		shipping  []entity.ScanListEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = a.repo.GetWarehouseStats(gctx)
		return wrap("warehouse-stats", err)
	})
	g.Go(func() (err error) {
		chart, err = a.repo.GetDailyChart(gctx)
		return wrap("daily-chart", err)
	})
	g.Go(func() (err error) {
		shift, err = a.repo.GetShiftScan(gctx)
		return wrap("shift-scan", err)
	})
	g.Go(func() (err error) {
		items, err = a.repo.GetWarehouseItems(gctx)
		return wrap("warehouse-items", err)
	})
	g.Go(func() (err error) {
		receiving, err = a.repo.GetReceivingList(gctx)
		return wrap("receiving-list", err)
	})
	g.Go(func() (err error) {
		shipping, err = a.repo.GetShippingList(gctx)
		return wrap("shipping-list", err)
	})

	if err := g.Wait(); err != nil {
		a.log.Warn().Err(err).Dur("elapsed", a.now().Sub(start)).Msg("recarga del dashboard fallida")
		return fmt.Errorf("dashboard: recarga: %w", err)
	}

	listCap := a.state.ListCap()
	applied, err := a.state.ReplaceNewer(gen, Snapshot{
		Stats:         stats,
		ChartSeries:   chart,
		ShiftSummary:  shift,
		ItemSummary:   items,
		ReceivingList: entity.ScanListFrom(listCap, receiving),
		ShippingList:  entity.ScanListFrom(listCap, shipping),
		LastRefresh:   a.now(),
	})
	if err != nil {
		return fmt.Errorf("dashboard: recarga: %w", err)
	}
	if !applied {
		a.log.Debug().Uint64("generation", gen).Msg("resultado de recarga obsoleto descartado")
		return nil
	}

	a.log.Debug().
		Int64("warehouse_stock", stats.WarehouseStock).
		Int("chart_points", len(chart)).
		Dur("elapsed", a.now().Sub(start)).
		Msg("dashboard recargado")
	return nil
}

func wrap(resource string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", resource, err)
	}
	return nil
}
