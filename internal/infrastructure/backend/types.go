package backend

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/Inventario-dashboard/pkg/jsonx"
)

type warehouseStatsDTO struct {
	FirstStock     jsonx.Int `json:"first_stock"`
	Receiving      jsonx.Int `json:"receiving"`
	Shipping       jsonx.Int `json:"shipping"`
	WarehouseStock jsonx.Int `json:"warehouse_stock"`
}

func (d warehouseStatsDTO) toEntity() entity.WarehouseStats {
	return entity.WarehouseStats{
		FirstStock:     int64(d.FirstStock),
		Receiving:      int64(d.Receiving),
		Shipping:       int64(d.Shipping),
		WarehouseStock: int64(d.WarehouseStock),
	}
}

type dailyChartDTO struct {
	Date      string    `json:"date"`
	Receiving jsonx.Int `json:"receiving"`
	Shipping  jsonx.Int `json:"shipping"`
}

type shiftScanDTO struct {
	Username string          `json:"username"`
	Total    jsonx.Int       `json:"total"`
	Percent  decimal.Decimal `json:"percent"`
	Status   jsonx.Int       `json:"status"`
}

type warehouseItemDTO struct {
	Item   string    `json:"item"`
	Total  jsonx.Int `json:"total"`
	Status jsonx.Int `json:"status"`
}

type scanRecordDTO struct {
	DateTime        string    `json:"date_time"`
	OriginalBarcode string    `json:"original_barcode"`
	Model           string    `json:"model"`
	Color           string    `json:"color"`
	Size            string    `json:"size"`
	Quantity        jsonx.Int `json:"quantity"`
	Username        string    `json:"username"`
	ScanNo          jsonx.Int `json:"scan_no"`
}

func (d scanRecordDTO) toEntity() (entity.ScanListEntry, error) {
	var ts time.Time
	if d.DateTime != "" {
		t, err := jsonx.ParseTime(d.DateTime)
		if err != nil {
			return entity.ScanListEntry{}, err
		}
		ts = t
	}
	return entity.ScanListEntry{
		Timestamp:  ts,
		Barcode:    d.OriginalBarcode,
		Model:      d.Model,
		Color:      d.Color,
		Size:       d.Size,
		Quantity:   int64(d.Quantity),
		Username:   d.Username,
		SequenceID: int64(d.ScanNo),
	}, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    entity.User `json:"user"`
}
