package store

import (
	"context"
	"sync"
)

// Memory is an in-process DocStore and BatchCommitter used by tests and
// dry runs. Reads are strongly consistent with writes from the same
// process, matching the consistency the pipeline assumes of the real store.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string]map[string]any)}
}

// Get returns a copy of the document's data and whether it exists.
func (m *Memory) Get(_ context.Context, collection, id string) (map[string]any, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, false, nil
	}
	return copyData(doc), true, nil
}

// Set writes a document, merging fields when merge is set.
func (m *Memory) Set(_ context.Context, collection, id string, data map[string]any, merge bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setLocked(collection, id, data, merge)
	return nil
}

// FindByField reports whether any document in the collection has
// field == value.
func (m *Memory) FindByField(_ context.Context, collection, field string, value any) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, doc := range m.collections[collection] {
		if doc[field] == value {
			return true, nil
		}
	}
	return false, nil
}

// CommitBatch applies every document in the batch with merge semantics.
func (m *Memory) CommitBatch(_ context.Context, collection string, docs []Doc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range docs {
		m.setLocked(collection, doc.ID, doc.Data, true)
	}
	return nil
}

// Count returns the number of documents in a collection.
func (m *Memory) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}

func (m *Memory) setLocked(collection, id string, data map[string]any, merge bool) {
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]map[string]any)
	}

	existing, ok := m.collections[collection][id]
	if !merge || !ok {
		m.collections[collection][id] = copyData(data)
		return
	}
	for k, v := range data {
		existing[k] = v
	}
}

func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
