package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardDTO respuesta de GET /api/dashboard: el Snapshot completo de la vista.
type DashboardDTO struct {
	Stats          WarehouseStatsDTO  `json:"stats"`
	Chart          ChartDTO           `json:"chart"`
	ShiftScan      []ShiftScanDTO     `json:"shift_scan"`
	WarehouseItems []WarehouseItemDTO `json:"warehouse_items"`
	ReceivingList  []ScanRecordDTO    `json:"receiving_list"`
	ShippingList   []ScanRecordDTO    `json:"shipping_list"`
	Loading        bool               `json:"loading"`
	Connected      bool               `json:"connected"`
	LastRefresh    *time.Time         `json:"last_refresh,omitempty"`
}

// WarehouseStatsDTO contadores de la cabecera.
type WarehouseStatsDTO struct {
	FirstStock     int64 `json:"first_stock"`
	Receiving      int64 `json:"receiving"`
	Shipping       int64 `json:"shipping"`
	WarehouseStock int64 `json:"warehouse_stock"`
}

// ChartDTO gráfica diaria en el formato que consume Chart.js (labels + datasets).
type ChartDTO struct {
	Labels   []string          `json:"labels"`
	Datasets []ChartDatasetDTO `json:"datasets"`
}

type ChartDatasetDTO struct {
	Label           string  `json:"label"`
	Data            []int64 `json:"data"`
	BorderColor     string  `json:"borderColor"`
	BackgroundColor string  `json:"backgroundColor"`
	Tension         float64 `json:"tension"`
	Fill            bool    `json:"fill"`
}

type ShiftScanDTO struct {
	Username    string          `json:"username"`
	Total       int64           `json:"total"`
	Percent     decimal.Decimal `json:"percent"`
	Status      int             `json:"status"`
	StatusClass string          `json:"status_class"`
}

type WarehouseItemDTO struct {
	Item        string `json:"item"`
	Total       int64  `json:"total"`
	Status      int    `json:"status"`
	StatusClass string `json:"status_class"`
}

// ScanRecordDTO fila de las listas de recepción y despacho (mismos nombres que el backend).
type ScanRecordDTO struct {
	DateTime        string `json:"date_time"`
	OriginalBarcode string `json:"original_barcode"`
	Model           string `json:"model"`
	Color           string `json:"color"`
	Size            string `json:"size"`
	Quantity        int64  `json:"quantity"`
	Username        string `json:"username"`
	ScanNo          int64  `json:"scan_no"`
}
