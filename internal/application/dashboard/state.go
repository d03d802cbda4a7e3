package dashboard

import (
	"sync"
	"time"

	"github.com/jhoicas/Inventario-dashboard/internal/domain"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
)

// Snapshot estado completo de la vista del dashboard.
type Snapshot struct {
	Stats         entity.WarehouseStats
	ChartSeries   []entity.ChartSeriesPoint
	ShiftSummary  []entity.ShiftSummary
	ItemSummary   []entity.ItemSummary
	ReceivingList entity.ScanList
	ShippingList  entity.ScanList
	Loading       bool
	LastRefresh   time.Time
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.ChartSeries = append([]entity.ChartSeriesPoint(nil), s.ChartSeries...)
	out.ShiftSummary = append([]entity.ShiftSummary(nil), s.ShiftSummary...)
	out.ItemSummary = append([]entity.ItemSummary(nil), s.ItemSummary...)
	out.ReceivingList = s.ReceivingList.Clone()
	out.ShippingList = s.ShippingList.Clone()
	return out
}

// State contenedor del Snapshot compartido por el Aggregator y el Listener.
//
// Cada Replace/Apply es una sección crítica completa: un lector nunca ve un reemplazo a
// medias ni un parche intercalado con otro. Después de Seal no se acepta ninguna escritura.
type State struct {
	mu       sync.Mutex
	snap     Snapshot
	listCap  int
	inflight int
	sealed   bool

	issued  uint64 // última generación de recarga entregada por BeginLoading
	applied uint64 // generación del último ReplaceNewer aplicado
}

// NewState crea el estado vacío con listas de tope listCap.
func NewState(listCap int) *State {
	if listCap <= 0 {
		listCap = entity.DefaultScanListCap
	}
	return &State{
		listCap: listCap,
		snap: Snapshot{
			ReceivingList: entity.NewScanList(listCap),
			ShippingList:  entity.NewScanList(listCap),
		},
	}
}

// ListCap tope de las listas.
func (s *State) ListCap() int { return s.listCap }

// Snapshot devuelve una copia profunda del estado actual.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.snap.clone()
	out.Loading = s.inflight > 0
	return out
}

// Replace sustituye todos los campos de datos de una sola vez.
func (s *State) Replace(next Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return domain.ErrViewClosed
	}
	next = next.clone()
	next.Loading = false
	s.snap = next
	return nil
}

// Apply aplica un evento push: delta en los contadores y prepend en la lista que corresponda.
func (s *State) Apply(ev entity.LiveUpdateEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return domain.ErrViewClosed
	}
	var list *entity.ScanList
	switch ev.Kind {
	case entity.EventReceiving:
		list = &s.snap.ReceivingList
	case entity.EventShipping:
		list = &s.snap.ShippingList
	default:
		return domain.ErrMalformedEvent
	}
	s.snap.Stats.Apply(ev.Kind, ev.Quantity)
	list.Prepend(ev.ScanEntry())
	return nil
}

// ReplaceNewer aplica next solo si gen es posterior a la última recarga aplicada.
// Devuelve false cuando el resultado es obsoleto: una recarga iniciada después ya
// dejó datos más recientes.
func (s *State) ReplaceNewer(gen uint64, next Snapshot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return false, domain.ErrViewClosed
	}
	if gen <= s.applied {
		return false, nil
	}
	s.applied = gen
	next = next.clone()
	next.Loading = false
	s.snap = next
	return true, nil
}

// BeginLoading enciende el indicador de carga y devuelve la generación de la recarga.
// El release devuelto lo apaga y es idempotente; debe llamarse siempre (defer) para
// que la vista no quede "cargando".
func (s *State) BeginLoading() (gen uint64, release func()) {
	s.mu.Lock()
	s.inflight++
	s.issued++
	gen = s.issued
	s.mu.Unlock()

	var once sync.Once
	return gen, func() {
		once.Do(func() {
			s.mu.Lock()
			s.inflight--
			s.mu.Unlock()
		})
	}
}

// Loading indica si hay alguna recarga en curso.
func (s *State) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Seal cierra el estado: a partir de aquí Replace y Apply devuelven ErrViewClosed.
func (s *State) Seal() {
	s.mu.Lock()
	s.sealed = true
	s.mu.Unlock()
}

// Sealed indica si la vista ya fue desmontada.
func (s *State) Sealed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sealed
}
