// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Default collection names.
const (
	DefaultNoticesCollection = "notices"
	DefaultTopicPrefix       = ""
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Source
	ListingURL string `json:"listing_url,omitempty"` // Notice board listing page URL
	MaxRows    int    `json:"max_rows,omitempty"`    // Maximum listing rows to scan per run
	TitleCell  int    `json:"title_cell,omitempty"`  // Zero-based index of the title cell in a listing row
	DateCell   int    `json:"date_cell,omitempty"`   // Zero-based index of the date cell in a listing row

	// Backend
	ProjectID         string `json:"project_id,omitempty"`         // Firebase project ID
	CredentialsFile   string `json:"credentials_file,omitempty"`   // Service account key file path
	NoticesCollection string `json:"notices_collection,omitempty"` // Collection for structured records
	KnowledgeFile     string `json:"knowledge_file,omitempty"`     // Knowledge base JSON file for setup

	// Behavior
	APIKey               string `json:"api_key,omitempty"`               // Gemini API key
	Model                string `json:"model,omitempty"`                 // Gemini model name
	Verbose              bool   `json:"verbose,omitempty"`               // Print detailed debug information
	DisableNotifications bool   `json:"disable_notifications,omitempty"` // Skip topic alerts for new notices
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.MaxRows < 0 {
		return fmt.Errorf("config error: 'max_rows' must be non-negative")
	}
	if c.TitleCell < 0 || c.DateCell < 0 {
		return fmt.Errorf("config error: cell indexes must be non-negative")
	}
	if c.TitleCell != 0 && c.TitleCell == c.DateCell {
		return fmt.Errorf("config error: 'title_cell' and 'date_cell' must differ")
	}

	if c.KnowledgeFile != "" {
		if _, err := os.Stat(c.KnowledgeFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: knowledge base file not found: %s", c.KnowledgeFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty string fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.ListingURL == "" {
		result.ListingURL = defaults.ListingURL
	}
	if result.ProjectID == "" {
		result.ProjectID = defaults.ProjectID
	}
	if result.CredentialsFile == "" {
		result.CredentialsFile = defaults.CredentialsFile
	}
	if result.KnowledgeFile == "" {
		result.KnowledgeFile = defaults.KnowledgeFile
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.NoticesCollection == "" {
		if defaults.NoticesCollection != "" {
			result.NoticesCollection = defaults.NoticesCollection
		} else {
			result.NoticesCollection = DefaultNoticesCollection
		}
	}

	// Int fields: use default if zero
	if result.MaxRows == 0 {
		result.MaxRows = defaults.MaxRows
	}
	if result.TitleCell == 0 {
		result.TitleCell = defaults.TitleCell
	}
	if result.DateCell == 0 {
		result.DateCell = defaults.DateCell
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
