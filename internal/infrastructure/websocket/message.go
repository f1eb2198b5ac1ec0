package websocket

import (
	"encoding/json"
	"time"

	"civicalert/internal/domain/entity"
)

// Inbound message types, sent by the browser.
const (
	MessageTypeMapReady      = "map.ready"
	MessageTypeMapClick      = "map.click"
	MessageTypeAnimationDone = "map.animation_done"
	MessageTypeFilterSet     = "filter.set"
	MessageTypeReportStart   = "report.start"
	MessageTypeReportCancel  = "report.cancel"
	MessageTypeReportForm    = "report.form"
	MessageTypeReportSubmit  = "report.submit"
	MessageTypeOnboardName   = "onboarding.name"
	MessageTypePing          = "ping"
)

// Outbound message types.
const (
	MessageTypeMapInit      = "map.init"
	MessageTypeMapGoTo      = "map.go_to"
	MessageTypeMapMarker    = "map.marker"
	MessageTypeClearMarkers = "map.clear_markers"
	MessageTypeMapCursor    = "map.cursor"
	MessageTypeMapDestroy   = "map.destroy"
	MessageTypePong         = "pong"
	MessageTypeRoleChanged  = "role.changed"
	MessageTypeError        = "error"
)

// WSMessage is the envelope of every frame in both directions.
type WSMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp"`
}

func NewMessage(msgType string, data interface{}) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(WSMessage{
		Type:      msgType,
		Data:      raw,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func DecodeMessage(b []byte) (*WSMessage, error) {
	var msg WSMessage
	if err := json.Unmarshal(b, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

type MapInitData struct {
	Center entity.Coordinate `json:"center"`
	Zoom   float64           `json:"zoom"`
	APIKey string            `json:"api_key"`
}

type GoToData struct {
	ID     uint64            `json:"id"`
	Center entity.Coordinate `json:"center"`
	Zoom   float64           `json:"zoom"`
}

type AnimationDoneData struct {
	ID          uint64 `json:"id"`
	Interrupted bool   `json:"interrupted"`
}

type MarkerData struct {
	Position entity.Coordinate `json:"position"`
}

type CursorData struct {
	Crosshair bool `json:"crosshair"`
}

type ClickData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type FilterData struct {
	Tab      string `json:"tab"`
	Category string `json:"category"`
}

// ReportFormData carries the report form; the photo travels base64-encoded.
type ReportFormData struct {
	Title            string `json:"title"`
	Category         string `json:"category"`
	Description      string `json:"description"`
	PhotoBase64      string `json:"photo_base64,omitempty"`
	PhotoContentType string `json:"photo_content_type,omitempty"`
	PhotoFilename    string `json:"photo_filename,omitempty"`
}

type OnboardingNameData struct {
	Name string `json:"name"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoleChangedData struct {
	Role         entity.Role `json:"role"`
	RefreshToken bool        `json:"refresh_token"`
}
