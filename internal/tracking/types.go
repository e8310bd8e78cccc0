package tracking

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClickEvent is one recorded click on a wrapped link.
type ClickEvent struct {
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
	UserAgent string    `json:"userAgent"`
	IPAddress string    `json:"ipAddress"`
}

// EmailRecord holds the engagement state of one outbound message. The
// tracking id is the primary key; opened/clicked state lives in the
// dedicated fields, not in Status.
type EmailRecord struct {
	ID        string       `json:"id"`
	Template  string       `json:"template"`
	Recipient string       `json:"recipient"`
	Timestamp time.Time    `json:"timestamp"`
	Subject   string       `json:"subject"`
	Status    string       `json:"status"`
	Opened    bool         `json:"opened"`
	OpenedAt  *time.Time   `json:"openedAt"`
	Clicks    []ClickEvent `json:"clicks"`
	UserAgent string       `json:"userAgent,omitempty"`
	IPAddress string       `json:"ipAddress,omitempty"`
}

// StatusSent is the only status a record is ever created with.
const StatusSent = "sent"

// clone returns a deep copy so callers can never mutate store state
// behind the lock.
func (r *EmailRecord) clone() *EmailRecord {
	cp := *r
	if r.OpenedAt != nil {
		t := *r.OpenedAt
		cp.OpenedAt = &t
	}
	cp.Clicks = make([]ClickEvent, len(r.Clicks))
	copy(cp.Clicks, r.Clicks)
	return &cp
}

// TrackingPair mirrors the by-id map in the persisted snapshot: a
// two-element JSON array of [trackingId, record].
type TrackingPair struct {
	ID     string
	Record *EmailRecord
}

// MarshalJSON encodes the pair as ["id", {record}].
func (p TrackingPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.ID, p.Record})
}

// UnmarshalJSON decodes ["id", {record}].
func (p *TrackingPair) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &p.ID); err != nil {
		return fmt.Errorf("tracking pair id: %w", err)
	}
	p.Record = &EmailRecord{}
	if err := json.Unmarshal(raw[1], p.Record); err != nil {
		return fmt.Errorf("tracking pair record: %w", err)
	}
	return nil
}

// Snapshot is the whole-store persisted document: the time-ordered view
// plus the by-id view, kept in lockstep.
type Snapshot struct {
	EmailData    []*EmailRecord `json:"emailData"`
	TrackingData []TrackingPair `json:"trackingData"`
}

// ExportPayload is the full dump produced by Export and accepted by Import.
type ExportPayload struct {
	EmailData    []*EmailRecord `json:"emailData"`
	TrackingData []TrackingPair `json:"trackingData"`
	ExportDate   time.Time      `json:"exportDate"`
	Version      string         `json:"version"`
}
