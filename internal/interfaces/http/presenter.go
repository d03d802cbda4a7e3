package http

import (
	"time"

	"github.com/jhoicas/Inventario-dashboard/internal/application/dashboard"
	"github.com/jhoicas/Inventario-dashboard/internal/application/dto"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
)

const scanTimeLayout = "2006-01-02 15:04:05"

// Colores de la gráfica diaria.
const (
	receivingColor   = "#28a745"
	receivingFill    = "rgba(40, 167, 69, 0.1)"
	shippingColor    = "#ffc107"
	shippingFill     = "rgba(255, 193, 7, 0.1)"
	chartLineTension = 0.4
)

func toDashboardDTO(snap dashboard.Snapshot, connected bool) dto.DashboardDTO {
	out := dto.DashboardDTO{
		Stats:          toStatsDTO(snap.Stats),
		Chart:          toChartDTO(snap.ChartSeries),
		ShiftScan:      make([]dto.ShiftScanDTO, 0, len(snap.ShiftSummary)),
		WarehouseItems: make([]dto.WarehouseItemDTO, 0, len(snap.ItemSummary)),
		ReceivingList:  toScanRecords(snap.ReceivingList),
		ShippingList:   toScanRecords(snap.ShippingList),
		Loading:        snap.Loading,
		Connected:      connected,
	}
	for _, s := range snap.ShiftSummary {
		out.ShiftScan = append(out.ShiftScan, dto.ShiftScanDTO{
			Username:    s.Username,
			Total:       s.Total,
			Percent:     s.Percent,
			Status:      s.Status,
			StatusClass: shiftStatusClass(s.Status),
		})
	}
	for _, it := range snap.ItemSummary {
		out.WarehouseItems = append(out.WarehouseItems, dto.WarehouseItemDTO{
			Item:        it.Item,
			Total:       it.Total,
			Status:      it.Status,
			StatusClass: itemStatusClass(it.Status),
		})
	}
	if !snap.LastRefresh.IsZero() {
		t := snap.LastRefresh
		out.LastRefresh = &t
	}
	return out
}

func toStatsDTO(s entity.WarehouseStats) dto.WarehouseStatsDTO {
	return dto.WarehouseStatsDTO{
		FirstStock:     s.FirstStock,
		Receiving:      s.Receiving,
		Shipping:       s.Shipping,
		WarehouseStock: s.WarehouseStock,
	}
}

// toChartDTO arma labels y las dos series (Receiving, Shipping) en el orden recibido.
func toChartDTO(points []entity.ChartSeriesPoint) dto.ChartDTO {
	labels := make([]string, len(points))
	receiving := make([]int64, len(points))
	shipping := make([]int64, len(points))
	for i, p := range points {
		labels[i] = p.Date
		receiving[i] = p.ReceivingTotal
		shipping[i] = p.ShippingTotal
	}
	return dto.ChartDTO{
		Labels: labels,
		Datasets: []dto.ChartDatasetDTO{
			{Label: "Receiving", Data: receiving, BorderColor: receivingColor, BackgroundColor: receivingFill, Tension: chartLineTension, Fill: true},
			{Label: "Shipping", Data: shipping, BorderColor: shippingColor, BackgroundColor: shippingFill, Tension: chartLineTension, Fill: true},
		},
	}
}

func toScanRecords(list entity.ScanList) []dto.ScanRecordDTO {
	entries := list.Entries()
	out := make([]dto.ScanRecordDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ScanRecordDTO{
			DateTime:        formatScanTime(e.Timestamp),
			OriginalBarcode: e.Barcode,
			Model:           e.Model,
			Color:           e.Color,
			Size:            e.Size,
			Quantity:        e.Quantity,
			Username:        e.Username,
			ScanNo:          e.SequenceID,
		})
	}
	return out
}

func formatScanTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(scanTimeLayout)
}

func shiftStatusClass(status int) string {
	if status == 1 {
		return "status-active"
	}
	return "status-idle"
}

func itemStatusClass(status int) string {
	switch status {
	case 0:
		return "status-out"
	case 1:
		return "status-low"
	case 2:
		return "status-ok"
	default:
		return "status-unknown"
	}
}

func toUserDTO(u *entity.User) *dto.UserDTO {
	if u == nil {
		return nil
	}
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &dto.UserDTO{
		ID:          u.ID,
		Username:    u.Username,
		Position:    u.Position,
		Description: u.Description,
		Permissions: perms,
	}
}
