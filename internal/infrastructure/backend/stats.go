package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/repository"
)

var _ repository.StatsRepository = (*Client)(nil)

// Endpoints de lectura del dashboard (relativos a BaseURL).
const (
	pathWarehouseStats = "/dashboard/warehouse-stats"
	pathDailyChart     = "/dashboard/daily-chart"
	pathShiftScan      = "/dashboard/shift-scan"
	pathWarehouseItems = "/dashboard/warehouse-items"
	pathReceivingList  = "/dashboard/receiving-list"
	pathShippingList   = "/dashboard/shipping-list"
)

// GetWarehouseStats GET /dashboard/warehouse-stats.
func (c *Client) GetWarehouseStats(ctx context.Context) (entity.WarehouseStats, error) {
	var out warehouseStatsDTO
	if err := c.do(ctx, http.MethodGet, pathWarehouseStats, nil, &out, true); err != nil {
		return entity.WarehouseStats{}, err
	}
	return out.toEntity(), nil
}

// GetDailyChart GET /dashboard/daily-chart.
func (c *Client) GetDailyChart(ctx context.Context) ([]entity.ChartSeriesPoint, error) {
	var rows []dailyChartDTO
	if err := c.do(ctx, http.MethodGet, pathDailyChart, nil, &rows, true); err != nil {
		return nil, err
	}
	out := make([]entity.ChartSeriesPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, entity.ChartSeriesPoint{
			Date:           r.Date,
			ReceivingTotal: int64(r.Receiving),
			ShippingTotal:  int64(r.Shipping),
		})
	}
	return out, nil
}

// GetShiftScan GET /dashboard/shift-scan.
func (c *Client) GetShiftScan(ctx context.Context) ([]entity.ShiftSummary, error) {
	var rows []shiftScanDTO
	if err := c.do(ctx, http.MethodGet, pathShiftScan, nil, &rows, true); err != nil {
		return nil, err
	}
	out := make([]entity.ShiftSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, entity.ShiftSummary{
			Username: r.Username,
			Total:    int64(r.Total),
			Percent:  r.Percent,
			Status:   int(r.Status),
		})
	}
	return out, nil
}

// GetWarehouseItems GET /dashboard/warehouse-items.
func (c *Client) GetWarehouseItems(ctx context.Context) ([]entity.ItemSummary, error) {
	var rows []warehouseItemDTO
	if err := c.do(ctx, http.MethodGet, pathWarehouseItems, nil, &rows, true); err != nil {
		return nil, err
	}
	out := make([]entity.ItemSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, entity.ItemSummary{Item: r.Item, Total: int64(r.Total), Status: int(r.Status)})
	}
	return out, nil
}

// GetReceivingList GET /dashboard/receiving-list.
func (c *Client) GetReceivingList(ctx context.Context) ([]entity.ScanListEntry, error) {
	return c.scanList(ctx, pathReceivingList)
}

// GetShippingList GET /dashboard/shipping-list.
func (c *Client) GetShippingList(ctx context.Context) ([]entity.ScanListEntry, error) {
	return c.scanList(ctx, pathShippingList)
}

func (c *Client) scanList(ctx context.Context, path string) ([]entity.ScanListEntry, error) {
	var rows []scanRecordDTO
	if err := c.do(ctx, http.MethodGet, path, nil, &rows, true); err != nil {
		return nil, err
	}
	out := make([]entity.ScanListEntry, 0, len(rows))
	for i, r := range rows {
		e, err := r.toEntity()
		if err != nil {
			return nil, fmt.Errorf("backend %s: fila %d: %w", path, i, err)
		}
		out = append(out, e)
	}
	return out, nil
}
