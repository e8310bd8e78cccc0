package tracking

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileBackend persists the store as a single JSON document holding both
// views (emailData array plus trackingData pairs). Every mutation rewrites
// the whole document, so concurrent processes racing on the same file can
// lose updates. Acceptable for best-effort telemetry, not for a system
// of record.
type FileBackend struct {
	mu   sync.Mutex
	path string
	// full mirror of the persisted state, needed because Put/Delete
	// rewrite the entire document
	records map[string]*EmailRecord
}

// NewFileBackend creates a file-backed snapshot store at path. The parent
// directory is created on first save, not here.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{
		path:    path,
		records: make(map[string]*EmailRecord),
	}
}

func (f *FileBackend) Load(ctx context.Context) ([]*EmailRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	recs := snap.EmailData
	if len(recs) == 0 {
		// fall back to the by-id pairs if the array view is absent
		for _, p := range snap.TrackingData {
			recs = append(recs, p.Record)
		}
	}

	f.records = make(map[string]*EmailRecord, len(recs))
	for _, r := range recs {
		f.records[r.ID] = r
	}
	return sortByTimestamp(recs), nil
}

func (f *FileBackend) Put(ctx context.Context, rec *EmailRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[rec.ID] = rec
	return f.flush()
}

func (f *FileBackend) Delete(ctx context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.records, id)
	}
	return f.flush()
}

func (f *FileBackend) Replace(ctx context.Context, recs []*EmailRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = make(map[string]*EmailRecord, len(recs))
	for _, r := range recs {
		f.records[r.ID] = r
	}
	return f.flush()
}

func (f *FileBackend) Close() error { return nil }

// flush rewrites the whole document. Caller holds the lock.
func (f *FileBackend) flush() error {
	ordered := make([]*EmailRecord, 0, len(f.records))
	for _, r := range f.records {
		ordered = append(ordered, r)
	}
	ordered = sortByTimestamp(ordered)

	snap := Snapshot{
		EmailData:    ordered,
		TrackingData: make([]TrackingPair, 0, len(ordered)),
	}
	for _, r := range ordered {
		snap.TrackingData = append(snap.TrackingData, TrackingPair{ID: r.ID, Record: r})
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}

	file, err := os.Create(f.path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func sortByTimestamp(recs []*EmailRecord) []*EmailRecord {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Timestamp.Before(recs[j].Timestamp)
	})
	return recs
}
