package repository

import (
	"context"

	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
)

// StatsRepository define las seis lecturas del dashboard.
// Las implementaciones son read-only e idempotentes; cualquier fallo se reporta como error opaco.
type StatsRepository interface {
	// GetWarehouseStats contadores first_stock / receiving / shipping / warehouse_stock.
	GetWarehouseStats(ctx context.Context) (entity.WarehouseStats, error)

	// GetDailyChart un punto por día, del más antiguo al más reciente.
	GetDailyChart(ctx context.Context) ([]entity.ChartSeriesPoint, error)

	// GetShiftScan resumen de escaneos por operador en el turno.
	GetShiftScan(ctx context.Context) ([]entity.ShiftSummary, error)

	// GetWarehouseItems existencias por tipo de artículo.
	GetWarehouseItems(ctx context.Context) ([]entity.ItemSummary, error)

	// GetReceivingList últimos escaneos de receiving, el más reciente primero.
	GetReceivingList(ctx context.Context) ([]entity.ScanListEntry, error)

	// GetShippingList últimos escaneos de shipping, el más reciente primero.
	GetShippingList(ctx context.Context) ([]entity.ScanListEntry, error)
}
