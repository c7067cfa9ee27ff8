package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/notice-watcher/internal/config"
	"github.com/jonathan/notice-watcher/internal/index"
	"github.com/jonathan/notice-watcher/internal/knowledge"
	"github.com/jonathan/notice-watcher/internal/store"
	"github.com/jonathan/notice-watcher/internal/types"
)

var setupCommand = &cobra.Command{
	Use:   "setup",
	Short: "Seed the backend: knowledge base and empty search index",
	Long:  "One-time initialization: uploads the campus knowledge base JSON and creates an empty search index document so the subscriber app has something to query before the first ingestion run.",
	RunE:  runSetupCmd,
}

var (
	setupConfigPath    string
	setupProjectID     string
	setupCredentials   string
	setupKnowledgeFile string
)

func init() {
	setupCommand.Flags().StringVar(&setupConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	setupCommand.Flags().StringVar(&setupProjectID, "project-id", "", "Firebase project ID (optional, defaults to FIREBASE_PROJECT_ID env var)")
	setupCommand.Flags().StringVar(&setupCredentials, "credentials", "", "Service account key file (optional, defaults to application default credentials)")
	setupCommand.Flags().StringVarP(&setupKnowledgeFile, "knowledge", "k", "", "Path to knowledge base JSON file")

	rootCmd.AddCommand(setupCommand)
}

func runSetupCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	var cfg config.Config
	if setupConfigPath != "" {
		loadedCfg, err := config.LoadConfig(setupConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
	}

	if cmd.Flags().Changed("project-id") {
		cfg.ProjectID = setupProjectID
	}
	if cmd.Flags().Changed("credentials") {
		cfg.CredentialsFile = setupCredentials
	}
	if cmd.Flags().Changed("knowledge") {
		cfg.KnowledgeFile = setupKnowledgeFile
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
	if cfg.KnowledgeFile == "" {
		return fmt.Errorf("--knowledge is required (via flag or config)")
	}

	docStore, err := store.NewFirestore(ctx, cfg.ProjectID, cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("failed to connect to document store: %w", err)
	}
	defer func() { _ = docStore.Close() }()

	data, err := knowledge.Load(cfg.KnowledgeFile)
	if err != nil {
		return err
	}
	fmt.Printf("Uploading knowledge base (%d sections)...\n", len(data))
	if err := knowledge.Upload(ctx, docStore, data); err != nil {
		return fmt.Errorf("knowledge base upload failed: %w", err)
	}

	fmt.Println("Creating empty search index...")
	if err := index.New(docStore).Rebuild(ctx, []*types.StructuredRecord{}); err != nil {
		return fmt.Errorf("search index creation failed: %w", err)
	}

	fmt.Println("Setup complete.")
	return nil
}
