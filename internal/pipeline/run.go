// Package pipeline provides the high-level orchestration for one ingestion
// run: discovery → attachment resolution → dedup check → extraction →
// persistence → notification. Items are processed sequentially; one item's
// failure never aborts the run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/notice-watcher/internal/attach"
	"github.com/jonathan/notice-watcher/internal/extraction"
	"github.com/jonathan/notice-watcher/internal/fetch"
	"github.com/jonathan/notice-watcher/internal/fingerprint"
	"github.com/jonathan/notice-watcher/internal/index"
	"github.com/jonathan/notice-watcher/internal/listing"
	"github.com/jonathan/notice-watcher/internal/notify"
	"github.com/jonathan/notice-watcher/internal/observability"
	"github.com/jonathan/notice-watcher/internal/store"
	"github.com/jonathan/notice-watcher/internal/types"
)

// Stage identifies where in the per-item flow an event occurred.
type Stage string

// Per-item stages.
const (
	StageResolve Stage = "attachment-resolve"
	StageFetch   Stage = "attachment-fetch"
	StageDedup   Stage = "dedup-check"
	StageExtract Stage = "extract"
	StagePersist Stage = "persist"
	StageNotify  Stage = "notify"
)

// Outcome is the terminal state of one candidate.
type Outcome string

// Terminal outcomes. Skipped is a success: the notice was already known.
const (
	OutcomeNotified Outcome = "notified"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeFailed   Outcome = "failed"
)

// ItemResult records how one candidate ended.
type ItemResult struct {
	Notice  types.CandidateNotice
	Outcome Outcome
	Stage   Stage // stage reached (the failing stage for OutcomeFailed)
	Tier    extraction.Tier
	Err     error

	record *types.StructuredRecord
}

// RunResult summarizes one pipeline run.
type RunResult struct {
	RunID      uuid.UUID
	Ingested   int
	Skipped    int
	Failed     int
	Items      []ItemResult
	NewRecords []*types.StructuredRecord
}

// ProgressEvent reports pipeline progress to an optional callback.
type ProgressEvent struct {
	RunID   string `json:"run_id"`
	Title   string `json:"title"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// ProgressCallback is called when pipeline progress occurs.
type ProgressCallback func(event ProgressEvent)

// Options holds the per-run configuration.
type Options struct {
	ListingURL string
	MaxRows    int
	RowSchema  listing.RowSchema
	Verbose    bool
	Out        io.Writer // defaults to os.Stdout
	OnProgress ProgressCallback
}

// Pipeline wires the collaborating components. All dependencies are
// explicit constructor arguments; there is no ambient global state.
type Pipeline struct {
	fetcher    *fetch.Client
	resolver   *attach.Resolver
	records    *store.Records
	engine     *extraction.Engine
	dispatcher *notify.Dispatcher
	searchIdx  *index.Index
}

// New creates a Pipeline from its collaborators. searchIdx may be nil to
// disable index maintenance.
func New(
	fetcher *fetch.Client,
	resolver *attach.Resolver,
	records *store.Records,
	engine *extraction.Engine,
	dispatcher *notify.Dispatcher,
	searchIdx *index.Index,
) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		resolver:   resolver,
		records:    records,
		engine:     engine,
		dispatcher: dispatcher,
		searchIdx:  searchIdx,
	}
}

// Run executes one ingestion run. Only a failure to fetch the listing
// itself is run-fatal; every other error is item-local.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*RunResult, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	result := &RunResult{RunID: uuid.New()}

	fmt.Fprintf(out, "Scanning listing: %s\n", opts.ListingURL)
	html, err := p.fetcher.Listing(ctx, opts.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("listing fetch failed: %w", err)
	}

	schema := opts.RowSchema
	if schema.MinCells == 0 {
		schema = listing.DefaultRowSchema()
	}
	candidates, err := listing.ParseRows(html, opts.ListingURL, schema, opts.MaxRows)
	if err != nil {
		return nil, fmt.Errorf("listing parse failed: %w", err)
	}
	fmt.Fprintf(out, "Found %d candidate notices\n", len(candidates))

	printer := observability.NewPrinter(out)

	for i, candidate := range candidates {
		fmt.Fprintf(out, "Processing %d/%d: %q...\n", i+1, len(candidates), titlePrefix(candidate.Title))

		item := p.processItem(ctx, result.RunID, candidate, out, opts.OnProgress)
		result.Items = append(result.Items, item)

		switch item.Outcome {
		case OutcomeNotified:
			result.Ingested++
		case OutcomeSkipped:
			result.Skipped++
			fmt.Fprintf(out, "  Already ingested, skipping.\n")
		case OutcomeFailed:
			result.Failed++
			fmt.Fprintf(out, "Warning: %s failed for %q: %v\n", item.Stage, titlePrefix(candidate.Title), item.Err)
		}
	}

	for _, item := range result.Items {
		if item.Outcome == OutcomeNotified && item.record != nil {
			result.NewRecords = append(result.NewRecords, item.record)
		}
	}

	if p.searchIdx != nil && len(result.NewRecords) > 0 {
		if err := p.searchIdx.Append(ctx, result.NewRecords); err != nil {
			fmt.Fprintf(out, "Warning: search index update failed: %v\n", err)
		}
	}

	if opts.Verbose {
		for _, record := range result.NewRecords {
			printer.PrintRecord(record)
		}
		printer.PrintRunSummary(result.RunID.String(), result.Ingested, result.Skipped, result.Failed)
	} else {
		fmt.Fprintf(out, "Run complete: %d ingested, %d skipped, %d failed\n", result.Ingested, result.Skipped, result.Failed)
	}

	return result, nil
}

// processItem runs the per-item state machine. Any temporary artifact
// created for the item is removed on every exit path.
func (p *Pipeline) processItem(ctx context.Context, runID uuid.UUID, candidate types.CandidateNotice, out io.Writer, onProgress ProgressCallback) (item ItemResult) {
	item = ItemResult{Notice: candidate}
	emit := func(stage Stage, message string) {
		item.Stage = stage
		if onProgress != nil {
			onProgress(ProgressEvent{
				RunID:   runID.String(),
				Title:   titlePrefix(candidate.Title),
				Stage:   string(stage),
				Message: message,
			})
		}
	}
	fail := func(stage Stage, err error) ItemResult {
		item.Outcome = OutcomeFailed
		item.Stage = stage
		item.Err = err
		return item
	}

	noticeID := fingerprint.NoticeID(candidate.Title, candidate.PublishedDate)
	sourceURL := candidate.DetailLink

	// Attachment resolution. Absent is a valid outcome, not an error.
	attachmentURL, found := p.resolver.Resolve(ctx, candidate.DetailLink)
	if found {
		emit(StageResolve, "attachment resolved")
	} else {
		emit(StageResolve, "no attachment, using row text")
	}

	var content extraction.Content
	var contentFingerprint string
	var known bool

	if found {
		data, mediaType, err := p.fetcher.Bytes(ctx, attachmentURL)
		if err != nil {
			return fail(StageFetch, err)
		}
		attachment := types.ResolvedAttachment{SourceURL: attachmentURL, Bytes: data, MediaType: mediaType}
		emit(StageFetch, fmt.Sprintf("fetched %d bytes", len(attachment.Bytes)))

		tmpPath, err := writeTempArtifact(attachment.Bytes, attachment.MediaType)
		if err != nil {
			return fail(StageFetch, err)
		}
		defer func() { _ = os.Remove(tmpPath) }()

		sourceURL = attachment.SourceURL
		contentFingerprint = fingerprint.Content(attachment.Bytes)
		content = extraction.Content{Kind: extraction.KindDocument, DocumentPath: tmpPath, MediaType: attachment.MediaType}

		known, err = p.records.ExistsFingerprint(ctx, contentFingerprint)
		if err != nil {
			return fail(StageDedup, err)
		}
	} else {
		// Fingerprint stays on the title so reposts with cosmetic page
		// edits still dedup; the richer page text only feeds extraction.
		text := candidate.Title
		if html, err := p.fetcher.Listing(ctx, candidate.DetailLink); err == nil {
			if pageText, err := fetch.PageText(html); err == nil && pageText != "" {
				text = pageText
			}
		}

		contentFingerprint = fingerprint.Content([]byte(candidate.Title))
		content = extraction.Content{Kind: extraction.KindText, Text: text}

		var err error
		known, err = p.records.ExistsID(ctx, noticeID)
		if err != nil {
			return fail(StageDedup, err)
		}
	}

	if known {
		item.Outcome = OutcomeSkipped
		item.Stage = StageDedup
		return item
	}
	emit(StageDedup, "new content")

	meta := extraction.Meta{Title: candidate.Title, Date: candidate.PublishedDate, URL: sourceURL}
	analysis, tier, analysisErr := p.engine.Analyze(ctx, content, meta)
	item.Tier = tier
	if analysisErr != nil {
		fmt.Fprintf(out, "Warning: AI analysis failed for %q, using fallback: %v\n", titlePrefix(candidate.Title), analysisErr)
	}
	emit(StageExtract, fmt.Sprintf("analyzed via %s tier", tier))

	now := time.Now().UTC()
	record := &types.StructuredRecord{
		ID:          noticeID,
		Fingerprint: contentFingerprint,
		Meta: types.Meta{
			Title:     candidate.Title,
			Date:      candidate.PublishedDate,
			URL:       sourceURL,
			CreatedAt: now,
		},
		Excerpt:    types.Excerpt(content.Text),
		Analysis:   analysis,
		IngestedAt: now,
	}

	if err := p.records.Put(ctx, record); err != nil {
		return fail(StagePersist, err)
	}
	emit(StagePersist, "record persisted")

	// Soft-fail: the record is ingested regardless of delivery.
	p.dispatcher.Dispatch(ctx, record)
	emit(StageNotify, "notification dispatched")

	item.Outcome = OutcomeNotified
	item.record = record
	return item
}

// titlePrefix bounds titles in log lines.
func titlePrefix(title string) string {
	const limit = 40
	if len(title) > limit {
		return title[:limit] + "..."
	}
	return title
}

// writeTempArtifact stores attachment bytes in a temp file for the
// document upload flow. The caller removes it.
func writeTempArtifact(data []byte, mediaType string) (string, error) {
	pattern := "notice-*" + extensionFor(mediaType)
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp artifact: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write temp artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to close temp artifact: %w", err)
	}
	return f.Name(), nil
}

func extensionFor(mediaType string) string {
	switch mediaType {
	case "application/pdf":
		return ".pdf"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	return ".bin"
}
