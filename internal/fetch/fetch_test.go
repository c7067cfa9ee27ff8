package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListing_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Notice Board</h1></body></html>"))
	}))
	defer server.Close()

	html, err := NewClient(nil).Listing(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Notice Board</h1>")
}

func TestListing_InvalidURL(t *testing.T) {
	_, err := NewClient(nil).Listing(context.Background(), "not-a-valid-url")
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestListing_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewClient(nil).Listing(context.Background(), server.URL)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestListing_SendsUserAgent(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := NewClient(nil).Listing(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, gotAgent)
}

func TestBytes_ContentTypeHint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer server.Close()

	data, mediaType, err := NewClient(nil).Bytes(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mediaType)
	assert.Equal(t, []byte("%PDF-1.4 fake"), data)
}

func TestBytes_ExtensionHint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/uploads/notice.pdf", func(w http.ResponseWriter, _ *http.Request) {
		// Deliberately generic content type; hint comes from the extension.
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("bytes"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	_, mediaType, err := NewClient(nil).Bytes(context.Background(), server.URL+"/uploads/notice.pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mediaType)
}

func TestMediaTypeHint(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		url         string
		want        string
	}{
		{"header wins", "image/png", "http://x/file.pdf", "image/png"},
		{"header with params", "application/pdf; charset=binary", "http://x/file", "application/pdf"},
		{"pdf extension", "", "http://x/uploads/a.pdf", "application/pdf"},
		{"jpeg extension", "", "http://x/a.JPG", "image/jpeg"},
		{"extension before query", "", "http://x/a.png?v=2", "image/png"},
		{"unknown", "", "http://x/a.docx", "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MediaTypeHint(tt.contentType, tt.url))
		})
	}
}

func TestPageText_RemovesNoise(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Navigation</nav>
			<div>Exam schedule released for semester 6.</div>
			<footer>Footer</footer>
			<script>var x = 1;</script>
		</body>
	</html>`

	text, err := PageText(html)
	require.NoError(t, err)
	assert.Contains(t, text, "Exam schedule released")
	assert.NotContains(t, text, "Navigation")
	assert.NotContains(t, text, "Footer")
	assert.NotContains(t, text, "var x")
}
