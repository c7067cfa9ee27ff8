// Package knowledge seeds the campus knowledge-base document consumed by
// the subscriber app's assistant features.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/notice-watcher/internal/store"
)

// Collection and document holding the knowledge base.
const (
	Collection = "knowledge_base"
	DocumentID = "campus_info"
)

// Load reads a knowledge-base JSON file into a field map.
func Load(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base file %s: %w", path, err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base JSON: %w", err)
	}
	return data, nil
}

// Upload upserts the knowledge base document with merge semantics, plus a
// per-section document for cheaper targeted reads.
func Upload(ctx context.Context, docStore store.DocStore, data map[string]any) error {
	stamped := make(map[string]any, len(data)+1)
	for k, v := range data {
		stamped[k] = v
	}
	stamped["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	if err := docStore.Set(ctx, Collection, DocumentID, stamped, true); err != nil {
		return err
	}

	for section, value := range data {
		sectionDoc := map[string]any{
			"data":       value,
			"updated_at": stamped["updated_at"],
		}
		if err := docStore.Set(ctx, Collection, section, sectionDoc, true); err != nil {
			return err
		}
	}
	return nil
}
