package tracking

import "context"

// Backend is the durable substrate under the event store. The in-memory
// views in Store are authoritative between loads; a Backend only has to
// make mutations durable. Implementations with per-key writes (Redis,
// Postgres) avoid the lost-update hazard of whole-document rewrite; the
// file backend accepts it as a documented property.
type Backend interface {
	// Load reads every persisted record. A missing substrate (no file,
	// empty hash, empty table) is not an error; return an empty slice.
	Load(ctx context.Context) ([]*EmailRecord, error)

	// Put makes a single record durable, inserting or overwriting.
	Put(ctx context.Context, rec *EmailRecord) error

	// Delete removes the given tracking ids. Unknown ids are ignored.
	Delete(ctx context.Context, ids []string) error

	// Replace swaps the entire persisted state for the given records.
	Replace(ctx context.Context, recs []*EmailRecord) error

	Close() error
}
