package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/notice-watcher/internal/types"
)

func sampleRecord() *types.StructuredRecord {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	return &types.StructuredRecord{
		ID:          strings.Repeat("a", 32),
		Fingerprint: strings.Repeat("b", 32),
		Meta: types.Meta{
			Title:     "Mid-semester exam schedule",
			Date:      "2026-02-10",
			URL:       "https://campus.example.edu/uploads/exam.pdf",
			CreatedAt: now,
		},
		Excerpt: "Mid-semester exam schedule",
		Analysis: types.Analysis{
			IsImportant:    true,
			Category:       types.CategoryExam,
			TargetAudience: []string{"All Students"},
			Summary:        "Exams start March 2.",
			Entities:       map[string]*string{},
			Keywords:       []string{"exam"},
		},
		IngestedAt: now,
	}
}

func TestRecords_PutAndLookups(t *testing.T) {
	ctx := context.Background()
	records := NewRecords(NewMemory(), "notices")
	record := sampleRecord()

	exists, err := records.ExistsID(ctx, record.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, records.Put(ctx, record))

	exists, err = records.ExistsID(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = records.ExistsFingerprint(ctx, record.Fingerprint)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = records.ExistsFingerprint(ctx, strings.Repeat("c", 32))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRecords_PutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	records := NewRecords(mem, "notices")
	record := sampleRecord()

	require.NoError(t, records.Put(ctx, record))
	require.NoError(t, records.Put(ctx, record))
	assert.Equal(t, 1, mem.Count("notices"))
}

func TestRecords_PutRejectsInvalidRecord(t *testing.T) {
	records := NewRecords(NewMemory(), "notices")

	record := sampleRecord()
	record.ID = "not-a-hash"
	err := records.Put(context.Background(), record)
	require.Error(t, err)

	var storeErr *Error
	assert.ErrorAs(t, err, &storeErr)
}

func TestRecords_PutRejectsMissingTitle(t *testing.T) {
	records := NewRecords(NewMemory(), "notices")

	record := sampleRecord()
	record.Meta.Title = ""
	require.Error(t, records.Put(context.Background(), record))
}

func TestRecordData_UsesJSONFieldNames(t *testing.T) {
	data, err := RecordData(sampleRecord())
	require.NoError(t, err)

	assert.Contains(t, data, "id")
	assert.Contains(t, data, "file_hash")
	assert.Contains(t, data, "meta")
	assert.Contains(t, data, "content")
	assert.Contains(t, data, "ai_analysis")
	assert.Contains(t, data, "ingested_at")

	analysis, ok := data["ai_analysis"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, analysis["is_important"])
	assert.Equal(t, "Exam", analysis["category"])
}
