package entity

import "time"

// DefaultScanListCap cantidad de escaneos recientes que muestra cada lista.
const DefaultScanListCap = 10

// ScanListEntry fila de las listas de receiving/shipping recientes.
type ScanListEntry struct {
	Timestamp  time.Time `json:"date_time"`
	Barcode    string    `json:"original_barcode"`
	Model      string    `json:"model"`
	Color      string    `json:"color"`
	Size       string    `json:"size"`
	Quantity   int64     `json:"quantity"`
	Username   string    `json:"username"`
	SequenceID int64     `json:"scan_no"`
}

// ScanList lista acotada, el más reciente primero. El valor cero no es usable; usar NewScanList.
type ScanList struct {
	limit   int
	entries []ScanListEntry
}

// NewScanList crea una lista vacía con el tope indicado (<= 0 usa DefaultScanListCap).
func NewScanList(limit int) ScanList {
	if limit <= 0 {
		limit = DefaultScanListCap
	}
	return ScanList{limit: limit, entries: make([]ScanListEntry, 0, limit)}
}

// ScanListFrom construye la lista a partir de filas ya ordenadas (más reciente primero),
// descartando las que excedan el tope.
func ScanListFrom(limit int, rows []ScanListEntry) ScanList {
	l := NewScanList(limit)
	if len(rows) > l.limit {
		rows = rows[:l.limit]
	}
	l.entries = append(l.entries, rows...)
	return l
}

// Prepend inserta al inicio y descarta las entradas más antiguas que excedan el tope.
func (l *ScanList) Prepend(e ScanListEntry) {
	if l.limit <= 0 {
		l.limit = DefaultScanListCap
	}
	if len(l.entries) < l.limit {
		l.entries = append(l.entries, ScanListEntry{})
	}
	copy(l.entries[1:], l.entries)
	l.entries[0] = e
}

// Len número de entradas.
func (l ScanList) Len() int { return len(l.entries) }

// Cap tope de la lista.
func (l ScanList) Cap() int { return l.limit }

// Entries copia de las entradas (más reciente primero).
func (l ScanList) Entries() []ScanListEntry {
	out := make([]ScanListEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clone copia profunda, para entregar snapshots sin compartir el slice.
func (l ScanList) Clone() ScanList {
	return ScanList{limit: l.limit, entries: l.Entries()}
}
