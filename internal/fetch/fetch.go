// Package fetch provides HTTP retrieval for the notice pipeline: the
// listing page, detail pages, and attachment bytes. This package performs
// outbound network I/O only; retry policy belongs to the orchestrator.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests. Institutional
// sites block clients that do not present a realistic identity.
const DefaultUserAgent = "Mozilla/5.0 (compatible; NoticeWatcher/1.0)"

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client retrieves pages and attachment bytes with a bounded per-request
// timeout. No retries at this layer.
type Client struct {
	httpClient *http.Client
	opts       *Options
}

// NewClient creates a Client with the given options (nil for defaults).
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
	}
}

// Listing retrieves the raw HTML of a page (the notice listing or a detail
// page). Network failure, non-2xx status and invalid URLs return *Error.
func (c *Client) Listing(ctx context.Context, urlStr string) (string, error) {
	body, _, err := c.get(ctx, urlStr)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Bytes retrieves raw content from a URL along with a best-guess media type
// hint derived from the Content-Type header or the URL extension.
func (c *Client) Bytes(ctx context.Context, urlStr string) ([]byte, string, error) {
	body, contentType, err := c.get(ctx, urlStr)
	if err != nil {
		return nil, "", err
	}
	return body, MediaTypeHint(contentType, urlStr), nil
}

func (c *Client) get(ctx context.Context, urlStr string) ([]byte, string, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, "", &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, "", &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}

	req.Header.Set("User-Agent", c.opts.UserAgent)
	for key, value := range c.opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &Error{URL: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &Error{URL: urlStr, Message: "failed to read response body", Cause: err}
	}

	return body, resp.Header.Get("Content-Type"), nil
}

// MediaTypeHint derives a media type from a Content-Type header value,
// falling back to the URL's file extension.
func MediaTypeHint(contentType, urlStr string) string {
	if contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType != "application/octet-stream" {
			return mediaType
		}
	}

	ext := strings.ToLower(path.Ext(strippedPath(urlStr)))
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	return "application/octet-stream"
}

func strippedPath(urlStr string) string {
	if parsed, err := url.Parse(urlStr); err == nil {
		return parsed.Path
	}
	return urlStr
}

// PageText parses HTML and returns the page's visible text with common
// noise elements removed. Used as fallback content when a notice has no
// resolvable attachment.
func PageText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, .sidebar, .cookie-banner, .popup").Remove()

	text := doc.Find("body").Text()
	return cleanWhitespace(text), nil
}

// cleanWhitespace normalizes whitespace in text.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
