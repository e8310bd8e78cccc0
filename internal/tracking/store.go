package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/ignite/engage/internal/pkg/logger"
	"github.com/ignite/engage/internal/pkg/metrics"
)

// Store is the event store for engagement telemetry. It keeps two
// synchronized views over the same records (a by-id map for lookups and
// a time-ordered slice for aggregation) and pushes every mutation to a
// Backend. Persistence is best-effort: a failed save is logged and
// counted, never raised to the caller, because the send/click path must
// stay available even when the telemetry substrate is down.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	byID    map[string]*EmailRecord
	ordered []*EmailRecord
}

// SendFields carries everything RecordSend needs to mint a record.
// Timestamp is optional; the zero value means "now".
type SendFields struct {
	TrackingID string
	Template   string
	Recipient  string
	Subject    string
	Timestamp  time.Time
}

// NewStore creates an empty store over the given backend. Call Load to
// hydrate it from the persisted state.
func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		byID:    make(map[string]*EmailRecord),
	}
}

// Load hydrates the store from the backend. Missing or unparsable data
// initializes an empty store instead of failing the caller: tracking is
// best-effort telemetry, not a system of record.
func (s *Store) Load(ctx context.Context) {
	recs, err := s.backend.Load(ctx)
	if err != nil {
		logger.Warn("event store load failed, starting empty", "error", err)
		recs = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[string]*EmailRecord, len(recs))
	s.ordered = s.ordered[:0]
	for _, r := range recs {
		if r == nil || r.ID == "" {
			continue
		}
		if r.Clicks == nil {
			r.Clicks = []ClickEvent{}
		}
		s.byID[r.ID] = r
		s.ordered = append(s.ordered, r)
	}
}

// RecordSend inserts a fresh EmailRecord into both views and persists it.
func (s *Store) RecordSend(ctx context.Context, f SendFields) {
	ts := f.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	rec := &EmailRecord{
		ID:        f.TrackingID,
		Template:  f.Template,
		Recipient: f.Recipient,
		Timestamp: ts,
		Subject:   f.Subject,
		Status:    StatusSent,
		Clicks:    []ClickEvent{},
	}

	s.mu.Lock()
	s.byID[rec.ID] = rec
	s.ordered = append(s.ordered, rec)
	saved := rec.clone()
	s.mu.Unlock()

	s.persist(ctx, saved)
}

// RecordOpen marks a record opened. Unknown ids are a no-op returning
// false. Re-opening is idempotent: opened stays true and openedAt keeps
// the first-open instant, while userAgent/ipAddress track the latest
// observed values.
func (s *Store) RecordOpen(ctx context.Context, trackingID, userAgent, ipAddress string) bool {
	s.mu.Lock()
	rec, ok := s.byID[trackingID]
	if !ok {
		s.mu.Unlock()
		return false
	}

	rec.Opened = true
	if rec.OpenedAt == nil {
		now := time.Now().UTC()
		rec.OpenedAt = &now
	}
	rec.UserAgent = userAgent
	rec.IPAddress = ipAddress
	saved := rec.clone()
	s.mu.Unlock()

	s.persist(ctx, saved)
	return true
}

// RecordClick appends a ClickEvent to a record. Unknown ids are a no-op
// returning false. Clicks never set opened.
func (s *Store) RecordClick(ctx context.Context, trackingID, url, userAgent, ipAddress string) bool {
	s.mu.Lock()
	rec, ok := s.byID[trackingID]
	if !ok {
		s.mu.Unlock()
		return false
	}

	rec.Clicks = append(rec.Clicks, ClickEvent{
		URL:       url,
		Timestamp: time.Now().UTC(),
		UserAgent: userAgent,
		IPAddress: ipAddress,
	})
	rec.UserAgent = userAgent
	rec.IPAddress = ipAddress
	saved := rec.clone()
	s.mu.Unlock()

	s.persist(ctx, saved)
	return true
}

// Get returns a copy of the record for trackingID, or nil if unknown.
func (s *Store) Get(trackingID string) *EmailRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[trackingID]
	if !ok {
		return nil
	}
	return rec.clone()
}

// Records returns a copy of the time-ordered view for aggregation.
func (s *Store) Records() []*EmailRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*EmailRecord, 0, len(s.ordered))
	for _, r := range s.ordered {
		out = append(out, r.clone())
	}
	return out
}

// Len reports the number of records in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ordered)
}

// Cleanup removes every record strictly older than retentionDays from
// both views and the backend. Returns the number of purged records.
// Repeated calls with nothing newly expired are no-ops.
func (s *Store) Cleanup(ctx context.Context, retentionDays int) int {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	s.mu.Lock()
	var purged []string
	kept := s.ordered[:0]
	for _, r := range s.ordered {
		if r.Timestamp.Before(cutoff) {
			purged = append(purged, r.ID)
			delete(s.byID, r.ID)
			continue
		}
		kept = append(kept, r)
	}
	s.ordered = kept
	s.mu.Unlock()

	if len(purged) == 0 {
		return 0
	}

	if err := s.backend.Delete(ctx, purged); err != nil {
		logger.Error("retention delete failed", "error", err, "count", len(purged))
		metrics.PersistFailures.Inc()
	}
	logger.Info("retention cleanup", "purged", len(purged), "retention_days", retentionDays)
	return len(purged)
}

// DefaultRetentionDays is the age horizon past which records are purged.
const DefaultRetentionDays = 90

// ExportVersion tags export payloads for forward compatibility.
const ExportVersion = "1.0"

// Export dumps the full store state, both views included.
func (s *Store) Export() *ExportPayload {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload := &ExportPayload{
		EmailData:    make([]*EmailRecord, 0, len(s.ordered)),
		TrackingData: make([]TrackingPair, 0, len(s.ordered)),
		ExportDate:   time.Now().UTC(),
		Version:      ExportVersion,
	}
	for _, r := range s.ordered {
		cp := r.clone()
		payload.EmailData = append(payload.EmailData, cp)
		payload.TrackingData = append(payload.TrackingData, TrackingPair{ID: cp.ID, Record: cp})
	}
	return payload
}

// Import replaces the in-memory state wholesale with the payload's
// records if present and well-formed; otherwise the store is left
// untouched and false is returned. The replacement is then persisted.
func (s *Store) Import(ctx context.Context, payload *ExportPayload) bool {
	if payload == nil {
		return false
	}

	recs := payload.EmailData
	if len(recs) == 0 && len(payload.TrackingData) > 0 {
		for _, p := range payload.TrackingData {
			recs = append(recs, p.Record)
		}
	}
	if recs == nil {
		return false
	}
	for _, r := range recs {
		if r == nil || r.ID == "" {
			return false
		}
	}

	clean := make([]*EmailRecord, 0, len(recs))
	for _, r := range recs {
		cp := r.clone()
		if cp.Clicks == nil {
			cp.Clicks = []ClickEvent{}
		}
		clean = append(clean, cp)
	}
	clean = sortByTimestamp(clean)

	s.mu.Lock()
	s.byID = make(map[string]*EmailRecord, len(clean))
	s.ordered = clean
	for _, r := range clean {
		s.byID[r.ID] = r
	}
	s.mu.Unlock()

	if err := s.backend.Replace(ctx, clean); err != nil {
		logger.Error("import persist failed", "error", err)
		metrics.PersistFailures.Inc()
	}
	return true
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// persist saves one record. Failures are logged and counted, never
// returned: the send/click path must not fail on a telemetry write.
func (s *Store) persist(ctx context.Context, rec *EmailRecord) {
	if err := s.backend.Put(ctx, rec); err != nil {
		logger.Error("event store persist failed", "error", err, "tracking_id", rec.ID)
		metrics.PersistFailures.Inc()
	}
}
