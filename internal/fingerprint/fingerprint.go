// Package fingerprint derives the content-hash dedup key and the stable
// document id for notices. Both are 128-bit md5 digests, hex-encoded, the
// width the existing store documents already use.
package fingerprint

import (
	"crypto/md5" //nolint:gosec // dedup key, not a security boundary
	"encoding/hex"
)

// Content computes the dedup fingerprint over the canonical content bytes:
// the attachment bytes when one was fetched, otherwise the notice title.
// Two notices with identical fingerprint are the same notice regardless of
// title or date drift.
func Content(data []byte) string {
	sum := md5.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// NoticeID computes the document key from title and published date. Stable
// across reruns for unchanged rows, which makes the persistence upsert
// idempotent. The date is included so recurring titles on different dates
// get distinct documents.
func NoticeID(title, date string) string {
	sum := md5.Sum([]byte(title + "|" + date)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
