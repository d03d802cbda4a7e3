package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Inventario-dashboard/internal/domain"
)

// EventKind tipo de escaneo recibido por el canal push.
type EventKind string

const (
	EventReceiving EventKind = "receiving"
	EventShipping  EventKind = "shipping"
)

// ParseEventKind normaliza el tipo ("RECEIVING", "receiving", "scan:shipping"...).
func ParseEventKind(s string) (EventKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "scan:")
	switch EventKind(s) {
	case EventReceiving, EventShipping:
		return EventKind(s), nil
	}
	return "", fmt.Errorf("%w: tipo de evento desconocido %q", domain.ErrMalformedEvent, s)
}

// LiveUpdateEvent escaneo publicado por el backend en el canal "dashboard updates".
type LiveUpdateEvent struct {
	Kind      EventKind
	Barcode   string
	Model     string
	Color     string
	Size      string
	Quantity  int64
	Username  string
	Timestamp time.Time
	RecordID  int64
}

// Validate rechaza eventos que no se pueden aplicar sin corromper los contadores.
func (e LiveUpdateEvent) Validate() error {
	if e.Kind != EventReceiving && e.Kind != EventShipping {
		return fmt.Errorf("%w: kind %q", domain.ErrMalformedEvent, e.Kind)
	}
	if e.Barcode == "" {
		return fmt.Errorf("%w: original_barcode vacío", domain.ErrMalformedEvent)
	}
	if e.Quantity <= 0 {
		return fmt.Errorf("%w: quantity %d", domain.ErrMalformedEvent, e.Quantity)
	}
	return nil
}

// ScanEntry fila de lista construida con los campos del evento.
func (e LiveUpdateEvent) ScanEntry() ScanListEntry {
	return ScanListEntry{
		Timestamp:  e.Timestamp,
		Barcode:    e.Barcode,
		Model:      e.Model,
		Color:      e.Color,
		Size:       e.Size,
		Quantity:   e.Quantity,
		Username:   e.Username,
		SequenceID: e.RecordID,
	}
}
