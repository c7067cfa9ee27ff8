// Package store provides the document-store boundary: a narrow interface
// over (collection, id) addressed documents with merge-set semantics, a
// chunked batch uploader, and the record-level dedup checks the pipeline
// relies on. Implementations: Firestore for production, Memory for tests.
package store

import (
	"context"
	"fmt"
)

// MaxBatchSize is the documented commit ceiling of the backing store;
// larger uploads are committed in chunks.
const MaxBatchSize = 400

// Error represents a persistence failure (store unreachable or rejected
// write).
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("store error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("store error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Doc is a single document destined for a batch commit.
type Doc struct {
	ID   string
	Data map[string]any
}

// DocStore is the minimal document database surface the pipeline needs.
type DocStore interface {
	// Get returns a document's data and whether it exists.
	Get(ctx context.Context, collection, id string) (map[string]any, bool, error)
	// Set writes a document. With merge, fields are merged into an
	// existing document without discarding unspecified fields.
	Set(ctx context.Context, collection, id string, data map[string]any, merge bool) error
	// FindByField reports whether any document has field == value.
	FindByField(ctx context.Context, collection, field string, value any) (bool, error)
}

// BatchCommitter commits one batch of documents atomically.
type BatchCommitter interface {
	CommitBatch(ctx context.Context, collection string, docs []Doc) error
}

// Uploader splits large document sets into commits of at most MaxBatchSize.
type Uploader struct {
	committer BatchCommitter
	batchSize int
}

// NewUploader creates an Uploader with the default batch size.
func NewUploader(committer BatchCommitter) *Uploader {
	return &Uploader{committer: committer, batchSize: MaxBatchSize}
}

// UploadAll commits docs in chunks, returning the number of commits issued.
func (u *Uploader) UploadAll(ctx context.Context, collection string, docs []Doc) (int, error) {
	chunks := Chunk(docs, u.batchSize)
	for i, chunk := range chunks {
		if err := u.committer.CommitBatch(ctx, collection, chunk); err != nil {
			return i, &Error{Message: fmt.Sprintf("batch commit %d/%d failed", i+1, len(chunks)), Cause: err}
		}
	}
	return len(chunks), nil
}

// Chunk splits docs into slices of at most size documents.
func Chunk(docs []Doc, size int) [][]Doc {
	if size <= 0 || len(docs) == 0 {
		return nil
	}
	var chunks [][]Doc
	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		chunks = append(chunks, docs[start:end])
	}
	return chunks
}
