package store

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/notice-watcher/internal/types"
)

// FingerprintField is the document field holding the content fingerprint.
const FingerprintField = "file_hash"

// Records layers the notice-specific operations over a DocStore: the two
// dedup lookup modes and validated, idempotent record writes.
type Records struct {
	store      DocStore
	collection string
	validate   *validator.Validate
}

// NewRecords creates a Records view over the given collection.
func NewRecords(store DocStore, collection string) *Records {
	return &Records{
		store:      store,
		collection: collection,
		validate:   validator.New(),
	}
}

// ExistsFingerprint reports whether any record carries this content
// fingerprint. Used when attachment bytes were fetched and byte-identical
// comparison is meaningful.
func (r *Records) ExistsFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	exists, err := r.store.FindByField(ctx, r.collection, FingerprintField, fingerprint)
	if err != nil {
		return false, &Error{Message: "fingerprint lookup failed", Cause: err}
	}
	return exists, nil
}

// ExistsID reports whether the document with this notice id exists. The
// cheaper check used when only text is available.
func (r *Records) ExistsID(ctx context.Context, id string) (bool, error) {
	_, exists, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		return false, &Error{Message: "id lookup failed", Cause: err}
	}
	return exists, nil
}

// Put validates and upserts a record with merge semantics, so partial
// re-ingestion cannot destroy previously stored fields.
func (r *Records) Put(ctx context.Context, record *types.StructuredRecord) error {
	if err := r.validate.Struct(record); err != nil {
		return &Error{Message: "record failed validation", Cause: err}
	}

	data, err := RecordData(record)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.collection, record.ID, data, true); err != nil {
		return &Error{Message: "record write failed", Cause: err}
	}
	return nil
}

// RecordData converts a record to the document field map, keyed by the
// record's JSON field names.
func RecordData(record *types.StructuredRecord) (map[string]any, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, &Error{Message: "failed to encode record", Cause: err}
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &Error{Message: "failed to decode record fields", Cause: err}
	}
	return data, nil
}
