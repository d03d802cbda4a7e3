package push

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Inventario-dashboard/internal/domain"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/Inventario-dashboard/pkg/jsonx"
)

// wireEvent payload JSON que publica el backend en cada escaneo.
type wireEvent struct {
	Type            string    `json:"type"`
	OriginalBarcode string    `json:"original_barcode"`
	Model           string    `json:"model"`
	Color           string    `json:"color"`
	Size            string    `json:"size"`
	Quantity        jsonx.Int `json:"quantity"`
	Username        string    `json:"username"`
	DateTime        string    `json:"date_time,omitempty"`
	RecordID        jsonx.Int `json:"record_id,omitempty"`
	ScanNo          jsonx.Int `json:"scan_no,omitempty"`
}

// DecodeEvent convierte un payload en evento validado. Sin date_time se usa now;
// record_id tiene prioridad sobre scan_no.
func DecodeEvent(payload []byte, now func() time.Time) (entity.LiveUpdateEvent, error) {
	var w wireEvent
	if err := json.Unmarshal(payload, &w); err != nil {
		return entity.LiveUpdateEvent{}, fmt.Errorf("%w: %v", domain.ErrMalformedEvent, err)
	}

	kind, err := entity.ParseEventKind(w.Type)
	if err != nil {
		return entity.LiveUpdateEvent{}, err
	}

	var ts time.Time
	if strings.TrimSpace(w.DateTime) == "" {
		if now == nil {
			now = time.Now
		}
		ts = now()
	} else {
		ts, err = jsonx.ParseTime(w.DateTime)
		if err != nil {
			return entity.LiveUpdateEvent{}, fmt.Errorf("%w: %v", domain.ErrMalformedEvent, err)
		}
	}

	id := int64(w.RecordID)
	if id == 0 {
		id = int64(w.ScanNo)
	}

	ev := entity.LiveUpdateEvent{
		Kind:      kind,
		Barcode:   strings.TrimSpace(w.OriginalBarcode),
		Model:     w.Model,
		Color:     w.Color,
		Size:      w.Size,
		Quantity:  int64(w.Quantity),
		Username:  w.Username,
		Timestamp: ts,
		RecordID:  id,
	}
	if err := ev.Validate(); err != nil {
		return entity.LiveUpdateEvent{}, err
	}
	return ev, nil
}

// EncodeEvent serializa el evento con el mismo formato que publica el backend.
func EncodeEvent(ev entity.LiveUpdateEvent) ([]byte, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	w := wireEvent{
		Type:            string(ev.Kind),
		OriginalBarcode: ev.Barcode,
		Model:           ev.Model,
		Color:           ev.Color,
		Size:            ev.Size,
		Quantity:        jsonx.Int(ev.Quantity),
		Username:        ev.Username,
		RecordID:        jsonx.Int(ev.RecordID),
	}
	if !ev.Timestamp.IsZero() {
		w.DateTime = ev.Timestamp.Format(time.RFC3339Nano)
	}
	return json.Marshal(w)
}
