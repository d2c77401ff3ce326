package models

import "encoding/json"

// Direction is the check-in/check-out flag reported by the fingerprint reader.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// LogEntry is one biometric attendance event as returned by GET /api/logs.
type LogEntry struct {
	Index     int       `json:"index"`
	UserID    int       `json:"userId"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Direction Direction `json:"direction"`
	Lab       string    `json:"lab"`
	RecordID  string    `json:"_id"`
}

// UnmarshalJSON accepts the record identifier as either "_id" or "id".
func (e *LogEntry) UnmarshalJSON(data []byte) error {
	type plain LogEntry
	var raw struct {
		plain
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = LogEntry(raw.plain)
	if e.RecordID == "" {
		e.RecordID = raw.ID
	}
	return nil
}
