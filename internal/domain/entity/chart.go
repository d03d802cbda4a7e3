package entity

import "github.com/shopspring/decimal"

// ChartSeriesPoint totales de un día para la gráfica (la serie va del más antiguo al más reciente).
type ChartSeriesPoint struct {
	Date           string `json:"date"`
	ReceivingTotal int64  `json:"receiving"`
	ShippingTotal  int64  `json:"shipping"`
}

// ShiftSummary escaneos por operador en el turno actual.
type ShiftSummary struct {
	Username string          `json:"username"`
	Total    int64           `json:"total"`
	Percent  decimal.Decimal `json:"percent"`
	Status   int             `json:"status"`
}

// ItemSummary existencias agrupadas por tipo de artículo.
type ItemSummary struct {
	Item   string `json:"item"`
	Total  int64  `json:"total"`
	Status int    `json:"status"`
}
