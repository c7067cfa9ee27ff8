// Package index maintains the compact search index document the
// subscriber app queries instead of scanning the full notice collection.
package index

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jonathan/notice-watcher/internal/store"
	"github.com/jonathan/notice-watcher/internal/types"
)

// Collection and document holding the index.
const (
	Collection = "search_index"
	DocumentID = "notices_index"
)

// Entry is one searchable summary of an ingested notice.
type Entry struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Category   string   `json:"category"`
	Keywords   []string `json:"keywords"`
	Summary    string   `json:"summary"`
	Date       string   `json:"date"`
	Importance bool     `json:"importance"`
}

// EntryFor derives an index entry from a persisted record.
func EntryFor(record *types.StructuredRecord) Entry {
	return Entry{
		ID:         record.ID,
		Title:      record.Meta.Title,
		Category:   string(record.Analysis.Category),
		Keywords:   record.Analysis.Keywords,
		Summary:    record.Analysis.Summary,
		Date:       record.Meta.Date,
		Importance: record.Analysis.IsImportant,
	}
}

// Index reads and writes the index document.
type Index struct {
	store store.DocStore
}

// New creates an Index over the given store.
func New(docStore store.DocStore) *Index {
	return &Index{store: docStore}
}

// Rebuild replaces the index with entries for the given records.
func (ix *Index) Rebuild(ctx context.Context, records []*types.StructuredRecord) error {
	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, EntryFor(record))
	}
	return ix.write(ctx, entries)
}

// Append adds entries for newly ingested records to the existing index.
// A missing index document is created.
func (ix *Index) Append(ctx context.Context, records []*types.StructuredRecord) error {
	if len(records) == 0 {
		return nil
	}

	existing, err := ix.load(ctx)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(existing))
	for _, entry := range existing {
		seen[entry.ID] = true
	}
	for _, record := range records {
		if seen[record.ID] {
			continue
		}
		existing = append(existing, EntryFor(record))
		seen[record.ID] = true
	}

	return ix.write(ctx, existing)
}

func (ix *Index) load(ctx context.Context) ([]Entry, error) {
	data, exists, err := ix.store.Get(ctx, Collection, DocumentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	// Round-trip through JSON: store implementations return loosely typed
	// field maps.
	raw, err := json.Marshal(data["entries"])
	if err != nil {
		return nil, &store.Error{Message: "failed to encode index entries", Cause: err}
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, &store.Error{Message: "failed to decode index entries", Cause: err}
	}
	return entries, nil
}

func (ix *Index) write(ctx context.Context, entries []Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return &store.Error{Message: "failed to encode index entries", Cause: err}
	}
	var generic []any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return &store.Error{Message: "failed to decode index entries", Cause: err}
	}

	return ix.store.Set(ctx, Collection, DocumentID, map[string]any{
		"entries":     generic,
		"total_count": len(entries),
		"updated_at":  time.Now().UTC().Format(time.RFC3339),
	}, false)
}
