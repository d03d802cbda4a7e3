package entity

// WarehouseStats contadores de la bodega que muestra el dashboard.
//
// Se asume WarehouseStock == FirstStock + Receiving - Shipping, pero el valor nunca se
// recalcula en este servicio: solo se suma o resta sobre lo que entregó el backend.
type WarehouseStats struct {
	FirstStock     int64 `json:"first_stock"`
	Receiving      int64 `json:"receiving"`
	Shipping       int64 `json:"shipping"`
	WarehouseStock int64 `json:"warehouse_stock"`
}

// ApplyReceiving suma una entrada de mercancía.
func (s *WarehouseStats) ApplyReceiving(qty int64) {
	s.Receiving += qty
	s.WarehouseStock += qty
}

// ApplyShipping descuenta una salida de mercancía.
func (s *WarehouseStats) ApplyShipping(qty int64) {
	s.Shipping += qty
	s.WarehouseStock -= qty
}

// Apply aplica el delta que corresponde al tipo de evento.
func (s *WarehouseStats) Apply(kind EventKind, qty int64) {
	switch kind {
	case EventReceiving:
		s.ApplyReceiving(qty)
	case EventShipping:
		s.ApplyShipping(qty)
	}
}
