// Package extraction converts raw notice content into a structured
// analysis. Tier 1 asks the AI service for a JSON object matching the
// analysis schema; tier 2 is a deterministic rule-based fallback. Tier-1
// failure never propagates: extraction quality is best-effort, extraction
// availability is guaranteed.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/notice-watcher/internal/llm"
	"github.com/jonathan/notice-watcher/internal/types"
)

// promptContentLimit bounds how much notice text is sent inline to the
// analysis service.
const promptContentLimit = 3000

// fallbackSummaryLimit bounds the tier-2 summary length.
const fallbackSummaryLimit = 150

// Kind distinguishes the two content shapes the engine accepts.
type Kind string

// Content kinds.
const (
	KindText     Kind = "text"
	KindDocument Kind = "document"
)

// Tier identifies which extraction tier produced an analysis.
type Tier string

// Extraction tiers.
const (
	TierAI       Tier = "ai"
	TierFallback Tier = "fallback"
)

// Content is the raw material to analyze: inline text, or a binary
// document on disk that must go through the upload flow.
type Content struct {
	Kind         Kind
	Text         string // KindText: the notice text
	DocumentPath string // KindDocument: local path of the downloaded bytes
	MediaType    string // KindDocument: best-guess media type
}

// Meta carries notice context included in the analysis prompt.
type Meta struct {
	Title string
	Date  string
	URL   string
}

// Error represents a tier-1 extraction failure. It is inspected by the
// caller, never raised past the engine.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Engine runs the two-tier extraction strategy.
type Engine struct {
	client llm.Client
}

// NewEngine creates an Engine backed by the given analysis client.
func NewEngine(client llm.Client) *Engine {
	return &Engine{client: client}
}

// Analyze runs tier 1, inspects the result, and only on failure invokes
// the deterministic fallback. It never fails; the returned Tier reports
// which strategy produced the analysis.
func (e *Engine) Analyze(ctx context.Context, content Content, meta Meta) (types.Analysis, Tier, error) {
	analysis, err := e.AnalyzePrimary(ctx, content, meta)
	if err != nil {
		return Fallback(fallbackText(content, meta)), TierFallback, err
	}
	return *analysis, TierAI, nil
}

// AnalyzePrimary submits the content to the AI service and decodes the
// response into a normalized analysis. Any failure (network, malformed
// JSON, schema mismatch, processing timeout) is returned for the caller
// to inspect before falling back.
func (e *Engine) AnalyzePrimary(ctx context.Context, content Content, meta Meta) (*types.Analysis, error) {
	if e.client == nil {
		return nil, &Error{Message: "no analysis client configured"}
	}

	prompt := BuildAnalysisPrompt(meta, content)

	var raw string
	var err error
	switch content.Kind {
	case KindDocument:
		raw, err = e.client.AnalyzeDocument(ctx, content.DocumentPath, content.MediaType, prompt)
	default:
		raw, err = e.client.GenerateJSON(ctx, prompt)
	}
	if err != nil {
		return nil, &Error{Message: "analysis service call failed", Cause: err}
	}

	raw = llm.CleanJSONBlock(raw)
	if err := validateAnalysisJSON(raw); err != nil {
		return nil, &Error{Message: "analysis response failed schema validation", Cause: err}
	}

	var analysis types.Analysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, &Error{Message: "failed to decode analysis JSON", Cause: err}
	}

	analysis.Normalize()
	return &analysis, nil
}

// Fallback produces the conservative deterministic analysis used whenever
// tier 1 fails for any reason.
func Fallback(text string) types.Analysis {
	lower := strings.ToLower(text)

	summary := text
	if len(summary) > fallbackSummaryLimit {
		summary = summary[:fallbackSummaryLimit] + "..."
	}

	return types.Analysis{
		IsImportant:    strings.Contains(lower, "exam") || strings.Contains(lower, "important"),
		Category:       types.CategoryGeneral,
		TargetAudience: []string{types.DefaultAudience},
		Summary:        summary,
		Entities:       map[string]*string{},
		Keywords:       []string{},
	}
}

// fallbackText picks the raw text the fallback heuristics run over. Binary
// documents have no local text, so the notice title stands in.
func fallbackText(content Content, meta Meta) string {
	if content.Kind == KindText && content.Text != "" {
		return content.Text
	}
	return meta.Title
}

// BuildAnalysisPrompt constructs the fixed instruction template requesting
// a JSON object with exactly the analysis shape.
func BuildAnalysisPrompt(meta Meta, content Content) string {
	var sb strings.Builder

	sb.WriteString("Analyze this institutional notice and extract structured information.\n\n")
	sb.WriteString(fmt.Sprintf("Title: %s\nDate: %s\nURL: %s\n", meta.Title, meta.Date, meta.URL))

	if content.Kind == KindText {
		text := content.Text
		if len(text) > promptContentLimit {
			text = text[:promptContentLimit]
		}
		sb.WriteString("\nNotice text:\n\"\"\"\n")
		sb.WriteString(text)
		sb.WriteString("\n\"\"\"\n")
	} else {
		sb.WriteString("\nThe notice document is attached.\n")
	}

	categories := make([]string, 0, len(types.AllCategories()))
	for _, c := range types.AllCategories() {
		categories = append(categories, string(c))
	}

	sb.WriteString("\nRespond in JSON format with:\n")
	sb.WriteString("{\n")
	sb.WriteString("  \"is_important\": true/false,\n")
	sb.WriteString(fmt.Sprintf("  \"category\": \"%s\",\n", strings.Join(categories, "/")))
	sb.WriteString("  \"target_audience\": [\"B. Tech\", \"M. Tech\", \"PhD\", \"Faculty\", \"All Students\"],\n")
	sb.WriteString("  \"summary\": \"Brief 1-2 sentence summary\",\n")
	sb.WriteString("  \"entities\": {\n")
	sb.WriteString("    \"event_date\": \"YYYY-MM-DD or null\",\n")
	sb.WriteString("    \"deadline\": \"YYYY-MM-DD or null\",\n")
	sb.WriteString("    \"semester\": \"Which semester(s) affected or null\",\n")
	sb.WriteString("    \"department\": \"Which department(s) or null\",\n")
	sb.WriteString("    \"location\": \"Where if mentioned or null\"\n")
	sb.WriteString("  },\n")
	sb.WriteString("  \"keywords\": [\"key\", \"words\", \"for\", \"search\"]\n")
	sb.WriteString("}\n\n")
	sb.WriteString("Only return valid JSON, nothing else.\n")

	return sb.String()
}
