package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/notice-watcher/internal/config"
	"github.com/jonathan/notice-watcher/internal/index"
	"github.com/jonathan/notice-watcher/internal/store"
	"github.com/jonathan/notice-watcher/internal/types"
)

var uploadCommand = &cobra.Command{
	Use:   "upload <records.json>",
	Short: "Bulk-upload previously exported notice records",
	Long:  "Reads a JSON array of structured notice records, commits them in batches and rebuilds the search index. Used for backfills and migrations between projects.",
	Args:  cobra.ExactArgs(1),
	RunE:  runUploadCmd,
}

var (
	uploadConfigPath  string
	uploadProjectID   string
	uploadCredentials string
	uploadCollection  string
)

func init() {
	uploadCommand.Flags().StringVar(&uploadConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	uploadCommand.Flags().StringVar(&uploadProjectID, "project-id", "", "Firebase project ID (optional, defaults to FIREBASE_PROJECT_ID env var)")
	uploadCommand.Flags().StringVar(&uploadCredentials, "credentials", "", "Service account key file (optional, defaults to application default credentials)")
	uploadCommand.Flags().StringVar(&uploadCollection, "collection", "", "Collection for structured records")

	rootCmd.AddCommand(uploadCommand)
}

func runUploadCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var cfg config.Config
	if uploadConfigPath != "" {
		loadedCfg, err := config.LoadConfig(uploadConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
	}

	if cmd.Flags().Changed("project-id") {
		cfg.ProjectID = uploadProjectID
	}
	if cmd.Flags().Changed("credentials") {
		cfg.CredentialsFile = uploadCredentials
	}
	if cmd.Flags().Changed("collection") {
		cfg.NoticesCollection = uploadCollection
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = os.Getenv("FIREBASE_PROJECT_ID")
	}
	if cfg.CredentialsFile == "" {
		cfg.CredentialsFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if cfg.ProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID environment variable or --project-id flag is required")
	}
	if cfg.NoticesCollection == "" {
		cfg.NoticesCollection = config.DefaultNoticesCollection
	}

	records, err := loadRecords(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d records from %s\n", len(records), args[0])

	docStore, err := store.NewFirestore(ctx, cfg.ProjectID, cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("failed to connect to document store: %w", err)
	}
	defer func() { _ = docStore.Close() }()

	docs := make([]store.Doc, 0, len(records))
	for _, record := range records {
		data, err := store.RecordData(record)
		if err != nil {
			return err
		}
		docs = append(docs, store.Doc{ID: record.ID, Data: data})
	}

	// Records and index land in different collections, so both writes can
	// proceed concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		commits, err := store.NewUploader(docStore).UploadAll(gctx, cfg.NoticesCollection, docs)
		if err != nil {
			return err
		}
		fmt.Printf("Committed %d records in %d batch(es)\n", len(docs), commits)
		return nil
	})
	g.Go(func() error {
		if err := index.New(docStore).Rebuild(gctx, records); err != nil {
			return fmt.Errorf("search index rebuild failed: %w", err)
		}
		fmt.Println("Search index rebuilt")
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Println("Upload complete.")
	return nil
}

// loadRecords reads and validates the export file. A single malformed
// record aborts the upload before anything is written.
func loadRecords(path string) ([]*types.StructuredRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file %s: %w", path, err)
	}

	var records []*types.StructuredRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to parse records JSON: %w", err)
	}

	validate := validator.New()
	for i, record := range records {
		if err := validate.Struct(record); err != nil {
			return nil, fmt.Errorf("record %d (%s) failed validation: %w", i, record.ID, err)
		}
	}
	return records, nil
}
