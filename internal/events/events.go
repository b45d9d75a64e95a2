package events

import (
	"encoding/json"
	"time"
)

const (
	PostingCreated = "posting_created"
	RunStarted     = "run_started"
	RunFinished    = "run_finished"
	ConfigUpdated  = "config_updated"
)

// Event is the SSE payload. Data is already encoded so subscribers never re-marshal.
type Event struct {
	Type    string          `json:"type"`
	Version int             `json:"v"`
	At      time.Time       `json:"at"`
	RunID   string          `json:"run_id,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(runID, typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			raw = b
		}
	}
	b, _ := json.Marshal(Event{
		Type:    typ,
		Version: 1,
		At:      time.Now().UTC(),
		RunID:   runID,
		Data:    raw,
	})
	return string(b)
}
