package ingest

import (
	"encoding/json"
	"time"
)

// Record is the self-describing shape of one session log line. All fields
// are optional; ingestion falls back to defaults for anything missing.
type Record struct {
	Timestamp string         `json:"timestamp"`
	Type      string         `json:"type"`
	Model     string         `json:"model"`
	Status    string         `json:"status"`
	Message   *RecordMessage `json:"message"`
}

// RecordMessage is the nested message payload of a "message" record.
type RecordMessage struct {
	Role  string `json:"role"`
	Model string `json:"model"`
}

// parseRecord decodes one log line.
func parseRecord(line string) (*Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// DerivedTimestamp returns the record's own timestamp in epoch
// milliseconds, or fallback (the file's modification time) when the record
// carries none or it does not parse.
func (r *Record) DerivedTimestamp(fallback time.Time) int64 {
	if r.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339Nano, r.Timestamp); err == nil {
			return t.UnixMilli()
		}
	}
	return fallback.UnixMilli()
}

// EventModel returns the record's model name, preferring the top-level
// field over the nested message model.
func (r *Record) EventModel() string {
	if r.Model != "" {
		return r.Model
	}
	if r.Message != nil && r.Message.Model != "" {
		return r.Message.Model
	}
	return "unknown"
}

// EventType returns the record's type or "unknown".
func (r *Record) EventType() string {
	if r.Type != "" {
		return r.Type
	}
	return "unknown"
}

// EventStatus returns the record's status or "ok".
func (r *Record) EventStatus() string {
	if r.Status != "" {
		return r.Status
	}
	return "ok"
}
