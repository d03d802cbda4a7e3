package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/repository"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema crea las tablas de escaneo si no existen.
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres.EnsureSchema: %w", err)
	}
	return nil
}

// Estados de ítem: sin stock, bajo el mínimo, normal.
const (
	ItemStatusOut = 0
	ItemStatusLow = 1
	ItemStatusOK  = 2
)

const chartDays = 7

var _ repository.StatsRepository = (*StatsRepo)(nil)

// StatsRepo las seis lecturas del dashboard directo sobre las tablas de escaneo.
// "Hoy" se calcula con la zona horaria de la sesión de PostgreSQL.
type StatsRepo struct {
	q       Querier
	listCap int
}

func NewStatsRepository(q Querier, listCap int) *StatsRepo {
	if listCap <= 0 {
		listCap = entity.DefaultScanListCap
	}
	return &StatsRepo{q: q, listCap: listCap}
}

// GetWarehouseStats stock inicial, movimientos del día y stock resultante.
func (r *StatsRepo) GetWarehouseStats(ctx context.Context) (entity.WarehouseStats, error) {
	const query = `
	SELECT
	    (SELECT COALESCE(SUM(first_stock), 0) FROM stock)                                  AS first_stock,
	    (SELECT COALESCE(SUM(quantity), 0) FROM scan_receiving WHERE scan_date >= CURRENT_DATE) AS receiving,
	    (SELECT COALESCE(SUM(quantity), 0) FROM scan_shipping  WHERE scan_date >= CURRENT_DATE) AS shipping`

	var s entity.WarehouseStats
	if err := r.q.QueryRow(ctx, query).Scan(&s.FirstStock, &s.Receiving, &s.Shipping); err != nil {
		return entity.WarehouseStats{}, fmt.Errorf("stats.GetWarehouseStats: %w", err)
	}
	s.WarehouseStock = s.FirstStock + s.Receiving - s.Shipping
	return s, nil
}

// GetDailyChart totales por día de los últimos siete días, incluidos los días sin escaneos.
func (r *StatsRepo) GetDailyChart(ctx context.Context) ([]entity.ChartSeriesPoint, error) {
	const query = `
	WITH days AS (
	    SELECT generate_series(CURRENT_DATE - ($1::int - 1), CURRENT_DATE, INTERVAL '1 day')::date AS day
	)
	SELECT
	    d.day,
	    COALESCE((SELECT SUM(quantity) FROM scan_receiving r WHERE r.scan_date::date = d.day), 0) AS receiving,
	    COALESCE((SELECT SUM(quantity) FROM scan_shipping  s WHERE s.scan_date::date = d.day), 0) AS shipping
	FROM days d
	ORDER BY d.day`

	rows, err := r.q.Query(ctx, query, chartDays)
	if err != nil {
		return nil, fmt.Errorf("stats.GetDailyChart: %w", err)
	}
	defer rows.Close()

	var out []entity.ChartSeriesPoint
	for rows.Next() {
		var (
			day time.Time
			p   entity.ChartSeriesPoint
		)
		if err := rows.Scan(&day, &p.ReceivingTotal, &p.ShippingTotal); err != nil {
			return nil, fmt.Errorf("stats.GetDailyChart scan: %w", err)
		}
		p.Date = day.Format("2006-01-02")
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetShiftScan cantidad escaneada hoy por operador y su porcentaje del total.
// Status 1 si el operador escaneó en la última hora.
func (r *StatsRepo) GetShiftScan(ctx context.Context) ([]entity.ShiftSummary, error) {
	const query = `
	WITH scans AS (
	    SELECT username, quantity, scan_date FROM scan_receiving WHERE scan_date >= CURRENT_DATE
	    UNION ALL
	    SELECT username, quantity, scan_date FROM scan_shipping  WHERE scan_date >= CURRENT_DATE
	)
	SELECT
	    username,
	    SUM(quantity)                                                        AS total,
	    ROUND(SUM(quantity) * 100.0 / NULLIF(SUM(SUM(quantity)) OVER (), 0), 2) AS percent,
	    CASE WHEN MAX(scan_date) >= now() - INTERVAL '1 hour' THEN 1 ELSE 0 END AS status
	FROM scans
	GROUP BY username
	ORDER BY total DESC, username`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("stats.GetShiftScan: %w", err)
	}
	defer rows.Close()

	var out []entity.ShiftSummary
	for rows.Next() {
		var (
			s       entity.ShiftSummary
			percent decimal.NullDecimal
		)
		if err := rows.Scan(&s.Username, &s.Total, &percent, &s.Status); err != nil {
			return nil, fmt.Errorf("stats.GetShiftScan scan: %w", err)
		}
		s.Percent = decimal.Zero
		if percent.Valid {
			s.Percent = percent.Decimal
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetWarehouseItems stock actual por modelo con su estado frente al mínimo.
func (r *StatsRepo) GetWarehouseItems(ctx context.Context) ([]entity.ItemSummary, error) {
	const query = `
	SELECT
	    st.model,
	    st.first_stock
	        + COALESCE((SELECT SUM(quantity) FROM scan_receiving r WHERE r.model = st.model AND r.scan_date >= CURRENT_DATE), 0)
	        - COALESCE((SELECT SUM(quantity) FROM scan_shipping  s WHERE s.model = st.model AND s.scan_date >= CURRENT_DATE), 0) AS total,
	    st.min_stock
	FROM stock st
	ORDER BY st.model`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("stats.GetWarehouseItems: %w", err)
	}
	defer rows.Close()

	var out []entity.ItemSummary
	for rows.Next() {
		var (
			it       entity.ItemSummary
			minStock int64
		)
		if err := rows.Scan(&it.Item, &it.Total, &minStock); err != nil {
			return nil, fmt.Errorf("stats.GetWarehouseItems scan: %w", err)
		}
		it.Status = ItemStatus(it.Total, minStock)
		out = append(out, it)
	}
	return out, rows.Err()
}

// ItemStatus estado de un ítem según su stock y el mínimo configurado.
func ItemStatus(total, minStock int64) int {
	switch {
	case total <= 0:
		return ItemStatusOut
	case total < minStock:
		return ItemStatusLow
	default:
		return ItemStatusOK
	}
}

func (r *StatsRepo) GetReceivingList(ctx context.Context) ([]entity.ScanListEntry, error) {
	return r.scanList(ctx, "scan_receiving")
}

func (r *StatsRepo) GetShippingList(ctx context.Context) ([]entity.ScanListEntry, error) {
	return r.scanList(ctx, "scan_shipping")
}

// scanList últimos escaneos, el más reciente primero. table es siempre una constante.
func (r *StatsRepo) scanList(ctx context.Context, table string) ([]entity.ScanListEntry, error) {
	query := `
	SELECT id, scan_date, original_barcode, model, color, size, quantity, username
	FROM ` + table + `
	ORDER BY scan_date DESC, id DESC
	LIMIT $1`

	rows, err := r.q.Query(ctx, query, r.listCap)
	if err != nil {
		return nil, fmt.Errorf("stats.%s: %w", table, err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.ScanListEntry, error) {
		var e entity.ScanListEntry
		err := row.Scan(&e.SequenceID, &e.Timestamp, &e.Barcode, &e.Model, &e.Color, &e.Size, &e.Quantity, &e.Username)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("stats.%s scan: %w", table, err)
	}
	return entries, nil
}
