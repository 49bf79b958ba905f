package events

import (
	"encoding/json"
	"time"
)

// Event types published over the hub.
const (
	TypeStageStarted  = "stage.started"
	TypeStageFinished = "stage.finished"
	TypeStageFailed   = "stage.failed"
	TypeLeadChanged   = "lead.changed"
)

type Event struct {
	Type    string          `json:"type"`
	Version int             `json:"v"`
	At      time.Time       `json:"at"`
	RunID   string          `json:"run_id,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(runID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:    typ,
		Version: v,
		At:      time.Now().UTC(),
		RunID:   runID,
		Data:    raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
