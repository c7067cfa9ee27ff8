package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Success(t *testing.T) {
	path := writeConfig(t, `{
		"listing_url": "https://campus.example.edu/notices",
		"max_rows": 10,
		"project_id": "campus-notices",
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://campus.example.edu/notices", cfg.ListingURL)
	assert.Equal(t, 10, cfg.MaxRows)
	assert.Equal(t, "campus-notices", cfg.ProjectID)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, "{not json")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestValidate(t *testing.T) {
	valid := Config{MaxRows: 5, TitleCell: 1, DateCell: 2}
	require.NoError(t, valid.Validate())

	negative := Config{MaxRows: -1}
	require.Error(t, negative.Validate())

	sameCells := Config{TitleCell: 2, DateCell: 2}
	require.Error(t, sameCells.Validate())

	missingKnowledge := Config{KnowledgeFile: filepath.Join(t.TempDir(), "kb.json")}
	require.Error(t, missingKnowledge.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{ListingURL: "https://campus.example.edu/notices"}
	merged := cfg.MergeWithDefaults(Config{
		ListingURL:      "https://ignored.example.edu",
		ProjectID:       "default-project",
		MaxRows:         5,
		CredentialsFile: "key.json",
	})

	assert.Equal(t, "https://campus.example.edu/notices", merged.ListingURL)
	assert.Equal(t, "default-project", merged.ProjectID)
	assert.Equal(t, 5, merged.MaxRows)
	assert.Equal(t, "key.json", merged.CredentialsFile)
	assert.Equal(t, DefaultNoticesCollection, merged.NoticesCollection)
}

func TestMergeWithDefaults_ExplicitCollectionKept(t *testing.T) {
	cfg := Config{NoticesCollection: "archive_notices"}
	merged := cfg.MergeWithDefaults(Config{})
	assert.Equal(t, "archive_notices", merged.NoticesCollection)
}
