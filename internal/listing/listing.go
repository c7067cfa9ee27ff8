// Package listing discovers candidate notices from the institutional
// listing page. The page is plain server-rendered HTML, not an API, so the
// row/column heuristics here are a best-effort adapter kept behind a
// configurable RowSchema.
package listing

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/notice-watcher/internal/types"
)

// DefaultMaxRows bounds how many listing rows are considered per run. The
// listing is newest-first, so a small bound favors freshness over
// completeness.
const DefaultMaxRows = 5

// minTitleLength excludes serial numbers and empty cells.
const minTitleLength = 5

// headerLabel is the table header text that must never become a candidate.
const headerLabel = "Title"

// ParseError represents an unexpected listing page shape.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("listing parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("listing parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// RowSchema maps table columns to notice attributes. Column positions vary
// between site revisions, so they stay configurable.
type RowSchema struct {
	TitleCell int // cell index holding the notice title
	DateCell  int // cell index holding the published date
	MinCells  int // rows with fewer cells are not candidates
}

// DefaultRowSchema matches the current listing layout: serial number,
// title, date, attachment link.
func DefaultRowSchema() RowSchema {
	return RowSchema{
		TitleCell: 1,
		DateCell:  2,
		MinCells:  3,
	}
}

// ParseRows extracts candidate notices from listing HTML. Relative detail
// links are resolved against baseURL. At most maxRows candidates are
// returned (DefaultMaxRows when maxRows <= 0).
func ParseRows(html, baseURL string, schema RowSchema, maxRows int) ([]types.CandidateNotice, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &ParseError{Message: fmt.Sprintf("invalid base URL: %s", baseURL), Cause: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ParseError{Message: "failed to parse HTML", Cause: err}
	}

	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	var candidates []types.CandidateNotice
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if len(candidates) >= maxRows {
			return false
		}

		candidate, ok := parseRow(row, base, schema)
		if ok {
			candidates = append(candidates, candidate)
		}
		return true
	})

	return candidates, nil
}

// parseRow applies the row qualification policy: enough cells, a real
// title, not the header row, and a resolvable detail link.
func parseRow(row *goquery.Selection, base *url.URL, schema RowSchema) (types.CandidateNotice, bool) {
	cells := row.Find("td")
	if cells.Length() < schema.MinCells {
		return types.CandidateNotice{}, false
	}

	title := strings.TrimSpace(cells.Eq(schema.TitleCell).Text())
	if len(title) <= minTitleLength {
		return types.CandidateNotice{}, false
	}
	if strings.EqualFold(title, headerLabel) {
		return types.CandidateNotice{}, false
	}

	date := strings.TrimSpace(cells.Eq(schema.DateCell).Text())

	href, exists := row.Find("a[href]").First().Attr("href")
	if !exists || href == "" {
		return types.CandidateNotice{}, false
	}
	link, err := url.Parse(href)
	if err != nil {
		return types.CandidateNotice{}, false
	}

	return types.CandidateNotice{
		Title:         title,
		PublishedDate: date,
		DetailLink:    base.ResolveReference(link).String(),
	}, true
}
