package attach

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/notice-watcher/internal/fetch"
)

func TestSelectAttachment_SkipsDecorativeLinks(t *testing.T) {
	html := `
	<html><body>
		<a href="/logo.png">Logo</a>
		<a href="/uploads/notice1.pdf">Download</a>
		<a href="/footer/brochure.pdf">Brochure</a>
	</body></html>`

	url, ok := SelectAttachment(html, "https://campus.example.edu/notice/1")
	require.True(t, ok)
	assert.Equal(t, "https://campus.example.edu/uploads/notice1.pdf", url)
}

func TestSelectAttachment_LastCandidateWins(t *testing.T) {
	html := `
	<html><body>
		<a href="/uploads/old-circular.pdf">Old</a>
		<a href="/uploads/new-circular.pdf">New</a>
	</body></html>`

	url, ok := SelectAttachment(html, "https://campus.example.edu/notice/1")
	require.True(t, ok)
	assert.Equal(t, "https://campus.example.edu/uploads/new-circular.pdf", url)
}

func TestSelectAttachment_ExtensionWithQuery(t *testing.T) {
	html := `<a href="/files/schedule.pdf?download=1">Schedule</a>`

	url, ok := SelectAttachment(html, "https://campus.example.edu/notice/1")
	require.True(t, ok)
	assert.Equal(t, "https://campus.example.edu/files/schedule.pdf?download=1", url)
}

func TestSelectAttachment_NoCandidates(t *testing.T) {
	html := `
	<html><body>
		<a href="/about">About</a>
		<a href="/banner.jpg">Banner</a>
	</body></html>`

	_, ok := SelectAttachment(html, "https://campus.example.edu/notice/1")
	assert.False(t, ok)
}

func TestIsDocumentLink(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{"/uploads/doc", true}, // uploads path needs no extension
		{"/files/a.pdf", true},
		{"/files/a.JPEG", true},
		{"/files/a.png", true},
		{"/uploads/logo.png", false}, // junk term beats the uploads path
		{"/files/a.html", false},
		{"/banner.pdf", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isDocumentLink(tt.href), tt.href)
	}
}

func TestResolve_UnreachablePageIsNoAttachment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	resolver := NewResolver(fetch.NewClient(nil))
	_, ok := resolver.Resolve(context.Background(), server.URL+"/notice/1")
	assert.False(t, ok)
}

func TestResolve_FindsAttachmentOnDetailPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><a href="/uploads/exam.pdf">Exam PDF</a></body></html>`))
	}))
	defer server.Close()

	resolver := NewResolver(fetch.NewClient(nil))
	url, ok := resolver.Resolve(context.Background(), server.URL+"/notice/1")
	require.True(t, ok)
	assert.Equal(t, server.URL+"/uploads/exam.pdf", url)
}
