package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/notice-watcher/internal/attach"
	"github.com/jonathan/notice-watcher/internal/config"
	"github.com/jonathan/notice-watcher/internal/extraction"
	"github.com/jonathan/notice-watcher/internal/fetch"
	"github.com/jonathan/notice-watcher/internal/index"
	"github.com/jonathan/notice-watcher/internal/listing"
	"github.com/jonathan/notice-watcher/internal/llm"
	"github.com/jonathan/notice-watcher/internal/notify"
	"github.com/jonathan/notice-watcher/internal/pipeline"
	"github.com/jonathan/notice-watcher/internal/store"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run one ingestion pass over the notice board",
	Long: `Fetches the notice board listing, resolves attachments, skips notices already ingested, extracts structured fields via Gemini (with a deterministic fallback) and persists new records.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runIngestCmd,
}

var (
	runConfigPath  string
	runListingURL  string
	runMaxRows     int
	runTitleCell   int
	runDateCell    int
	runProjectID   string
	runCredentials string
	runCollection  string
	runAPIKey      string
	runModel       string
	runVerbose     bool
	runNoNotify    bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runListingURL, "listing-url", "u", "", "Notice board listing page URL")
	runCommand.Flags().IntVar(&runMaxRows, "max-rows", 0, "Maximum listing rows to scan per run")
	runCommand.Flags().IntVar(&runTitleCell, "title-cell", 0, "Zero-based index of the title cell in a listing row")
	runCommand.Flags().IntVar(&runDateCell, "date-cell", 0, "Zero-based index of the date cell in a listing row")
	runCommand.Flags().StringVar(&runProjectID, "project-id", "", "Firebase project ID (optional, defaults to FIREBASE_PROJECT_ID env var)")
	runCommand.Flags().StringVar(&runCredentials, "credentials", "", "Service account key file (optional, defaults to application default credentials)")
	runCommand.Flags().StringVar(&runCollection, "collection", "", "Collection for structured records")
	runCommand.Flags().StringVar(&runModel, "model", "", "Gemini model name")
	runCommand.Flags().BoolVar(&runNoNotify, "no-notify", false, "Skip topic alerts for newly ingested notices")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	rootCmd.AddCommand(runCommand)
}

func runIngestCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadMergedConfig(cmd)
	if err != nil {
		return err
	}

	// Validate required fields
	if cfg.ListingURL == "" {
		return fmt.Errorf("--listing-url is required (via flag or config)")
	}
	if cfg.ProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID environment variable or --project-id flag is required")
	}

	// API key handling. A missing key is not fatal: the pipeline degrades
	// to fallback extraction for every notice.
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	docStore, err := store.NewFirestore(ctx, cfg.ProjectID, cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("failed to connect to document store: %w", err)
	}
	defer func() { _ = docStore.Close() }()

	var llmClient llm.Client
	if cfg.APIKey != "" {
		llmConfig := llm.DefaultConfig()
		if cfg.Model != "" {
			llmConfig.Model = cfg.Model
		}
		gemini, err := llm.NewGeminiClient(ctx, llmConfig, cfg.APIKey)
		if err != nil {
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		defer func() { _ = gemini.Close() }()
		llmClient = gemini
	} else {
		fmt.Println("Warning: no Gemini API key configured, using fallback extraction only")
	}

	var publisher notify.Publisher
	if !cfg.DisableNotifications {
		fcm, err := notify.NewFCM(ctx, cfg.ProjectID, cfg.CredentialsFile)
		if err != nil {
			return fmt.Errorf("failed to create messaging client: %w", err)
		}
		publisher = fcm
	} else {
		publisher = noopPublisher{}
	}

	fetcher := fetch.NewClient(nil)
	p := pipeline.New(
		fetcher,
		attach.NewResolver(fetcher),
		store.NewRecords(docStore, cfg.NoticesCollection),
		extraction.NewEngine(llmClient),
		notify.NewDispatcher(publisher, os.Stdout),
		index.New(docStore),
	)

	schema := listing.DefaultRowSchema()
	if cfg.TitleCell != 0 {
		schema.TitleCell = cfg.TitleCell
	}
	if cfg.DateCell != 0 {
		schema.DateCell = cfg.DateCell
	}

	result, err := p.Run(ctx, pipeline.Options{
		ListingURL: cfg.ListingURL,
		MaxRows:    cfg.MaxRows,
		RowSchema:  schema,
		Verbose:    cfg.Verbose,
	})
	if err != nil {
		return err
	}

	// Item-local failures were already reported; the run itself succeeded.
	if result.Failed > 0 {
		fmt.Printf("Completed with %d item failure(s).\n", result.Failed)
	}
	return nil
}

// loadMergedConfig loads the optional config file, applies explicit CLI
// overrides and fills remaining gaps with defaults.
func loadMergedConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("listing-url") {
		cfg.ListingURL = runListingURL
	}
	if cmd.Flags().Changed("max-rows") {
		cfg.MaxRows = runMaxRows
	}
	if cmd.Flags().Changed("title-cell") {
		cfg.TitleCell = runTitleCell
	}
	if cmd.Flags().Changed("date-cell") {
		cfg.DateCell = runDateCell
	}
	if cmd.Flags().Changed("project-id") {
		cfg.ProjectID = runProjectID
	}
	if cmd.Flags().Changed("credentials") {
		cfg.CredentialsFile = runCredentials
	}
	if cmd.Flags().Changed("collection") {
		cfg.NoticesCollection = runCollection
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = runModel
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("no-notify") {
		cfg.DisableNotifications = runNoNotify
	}

	defaults := config.Config{
		MaxRows:           listing.DefaultMaxRows,
		NoticesCollection: config.DefaultNoticesCollection,
	}
	cfg = cfg.MergeWithDefaults(defaults)

	if cfg.ProjectID == "" {
		cfg.ProjectID = os.Getenv("FIREBASE_PROJECT_ID")
	}
	if cfg.CredentialsFile == "" {
		cfg.CredentialsFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}

	return cfg, nil
}

// noopPublisher satisfies notify.Publisher when alerts are disabled.
type noopPublisher struct{}

func (noopPublisher) Publish(_ context.Context, _, _, _ string, _ map[string]string) error {
	return nil
}
