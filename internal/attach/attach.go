// Package attach locates the primary document link on a notice detail page.
package attach

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/notice-watcher/internal/fetch"
)

// documentExtensions identify hrefs that plausibly point at notice documents.
var documentExtensions = []string{".pdf", ".jpg", ".jpeg", ".png"}

// uploadsSegment marks the site's document upload path.
const uploadsSegment = "uploads/"

// junkTerms identify decorative or navigational files that are never the
// notice's primary attachment.
var junkTerms = []string{"logo", "banner", "footer", "brochure"}

// Resolver finds the most likely primary attachment among a detail page's
// anchors.
type Resolver struct {
	client *fetch.Client
}

// NewResolver creates a Resolver using the given fetch client.
func NewResolver(client *fetch.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve fetches the detail page and returns the absolute URL of the most
// likely primary attachment. An unreachable page or no surviving candidate
// is a valid "no attachment" outcome, not an error: the pipeline falls back
// to the page's own text.
func (r *Resolver) Resolve(ctx context.Context, detailURL string) (string, bool) {
	html, err := r.client.Listing(ctx, detailURL)
	if err != nil {
		return "", false
	}
	return SelectAttachment(html, detailURL)
}

// SelectAttachment applies the candidate filter to a detail page's anchors.
// When several candidates survive, the last one in document order wins:
// primary attachments are listed after navigational and decorative links.
func SelectAttachment(html, baseURL string) (string, bool) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	var selected string
	doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href, exists := anchor.Attr("href")
		if !exists || !isDocumentLink(href) {
			return
		}

		link, err := url.Parse(href)
		if err != nil {
			return
		}
		selected = base.ResolveReference(link).String()
	})

	return selected, selected != ""
}

// isDocumentLink reports whether an href carries a document marker and no
// junk term.
func isDocumentLink(href string) bool {
	lower := strings.ToLower(href)

	for _, term := range junkTerms {
		if strings.Contains(lower, term) {
			return false
		}
	}

	if strings.Contains(lower, uploadsSegment) {
		return true
	}
	for _, ext := range documentExtensions {
		if strings.HasSuffix(strippedQuery(lower), ext) {
			return true
		}
	}
	return false
}

func strippedQuery(href string) string {
	if idx := strings.IndexAny(href, "?#"); idx >= 0 {
		return href[:idx]
	}
	return href
}
