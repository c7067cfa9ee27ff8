package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boardHTML = `
<html><body>
<table>
	<tr><th>No</th><th>Title</th><th>Date</th></tr>
	<tr><td>#</td><td>Title</td><td>Date</td></tr>
	<tr><td>1</td><td>Mid-semester exam schedule released</td><td>2026-02-10</td><td><a href="/notice/101">View</a></td></tr>
	<tr><td>2</td><td>123</td><td>2026-02-09</td><td><a href="/notice/102">View</a></td></tr>
	<tr><td>3</td><td>Scholarship applications open</td><td>2026-02-08</td><td><a href="https://other.example.com/notice/103">View</a></td></tr>
	<tr><td>4</td><td>Row without a link</td><td>2026-02-07</td></tr>
	<tr><td>5</td><td colspan="2">short row</td></tr>
</table>
</body></html>`

func TestParseRows_FiltersNonCandidates(t *testing.T) {
	candidates, err := ParseRows(boardHTML, "https://campus.example.edu/notices", DefaultRowSchema(), 0)
	require.NoError(t, err)

	// Header row, pseudo-header row, short title, linkless row and
	// under-sized row are all excluded.
	require.Len(t, candidates, 2)
	assert.Equal(t, "Mid-semester exam schedule released", candidates[0].Title)
	assert.Equal(t, "2026-02-10", candidates[0].PublishedDate)
	assert.Equal(t, "https://campus.example.edu/notice/101", candidates[0].DetailLink)

	assert.Equal(t, "Scholarship applications open", candidates[1].Title)
	assert.Equal(t, "https://other.example.com/notice/103", candidates[1].DetailLink)
}

func TestParseRows_MaxRowsBound(t *testing.T) {
	html := `<table>` +
		`<tr><td>1</td><td>Notice number one</td><td>d</td><td><a href="/n/1">v</a></td></tr>` +
		`<tr><td>2</td><td>Notice number two</td><td>d</td><td><a href="/n/2">v</a></td></tr>` +
		`<tr><td>3</td><td>Notice number three</td><td>d</td><td><a href="/n/3">v</a></td></tr>` +
		`</table>`

	candidates, err := ParseRows(html, "https://campus.example.edu/", DefaultRowSchema(), 2)
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}

func TestParseRows_CustomSchema(t *testing.T) {
	html := `<table>
	<tr><td>Holiday notice for spring break</td><td>2026-03-01</td><td><a href="/n/7">v</a></td></tr>
	</table>`

	schema := RowSchema{TitleCell: 0, DateCell: 1, MinCells: 3}
	candidates, err := ParseRows(html, "https://campus.example.edu/", schema, 0)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Holiday notice for spring break", candidates[0].Title)
	assert.Equal(t, "2026-03-01", candidates[0].PublishedDate)
}

func TestParseRows_InvalidBaseURL(t *testing.T) {
	_, err := ParseRows(boardHTML, "not a url", DefaultRowSchema(), 0)
	require.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParseRows_EmptyPage(t *testing.T) {
	candidates, err := ParseRows("<html><body><p>Maintenance</p></body></html>", "https://campus.example.edu/", DefaultRowSchema(), 0)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
