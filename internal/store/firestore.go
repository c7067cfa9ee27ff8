package store

import (
	"context"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Firestore implements DocStore and BatchCommitter over the Firebase
// Admin SDK.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore connects to the project's Firestore database. With an empty
// credentialsFile the SDK falls back to application default credentials.
func NewFirestore(ctx context.Context, projectID, credentialsFile string) (*Firestore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, &Error{Message: "failed to initialize Firebase app", Cause: err}
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, &Error{Message: "failed to create Firestore client", Cause: err}
	}

	return &Firestore{client: client}, nil
}

// Get returns a document's data and whether it exists.
func (f *Firestore) Get(ctx context.Context, collection, id string) (map[string]any, bool, error) {
	snap, err := f.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if snap != nil && !snap.Exists() {
			return nil, false, nil
		}
		return nil, false, &Error{Message: "document read failed", Cause: err}
	}
	return snap.Data(), true, nil
}

// Set writes a document, merging fields when merge is set.
func (f *Firestore) Set(ctx context.Context, collection, id string, data map[string]any, merge bool) error {
	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}
	if _, err := f.client.Collection(collection).Doc(id).Set(ctx, data, opts...); err != nil {
		return &Error{Message: "document write failed", Cause: err}
	}
	return nil
}

// FindByField reports whether any document has field == value.
func (f *Firestore) FindByField(ctx context.Context, collection, field string, value any) (bool, error) {
	iter := f.client.Collection(collection).Where(field, "==", value).Limit(1).Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, &Error{Message: "field query failed", Cause: err}
	}
	return true, nil
}

// CommitBatch writes one batch of documents with merge semantics. Callers
// must respect MaxBatchSize; the Uploader handles chunking.
func (f *Firestore) CommitBatch(ctx context.Context, collection string, docs []Doc) error {
	batch := f.client.Batch()
	for _, doc := range docs {
		batch.Set(f.client.Collection(collection).Doc(doc.ID), doc.Data, firestore.MergeAll)
	}
	if _, err := batch.Commit(ctx); err != nil {
		return &Error{Message: "batch commit failed", Cause: err}
	}
	return nil
}

// Close releases the Firestore client.
func (f *Firestore) Close() error {
	return f.client.Close()
}
