// Package notify publishes topic-scoped alerts for newly ingested notices.
// Dispatch fails softly: a record is considered successfully ingested once
// persisted, independent of notification delivery.
package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/notice-watcher/internal/types"
)

// TopicAll is the topic every subscriber receives.
const TopicAll = "all"

// Error represents a failed publish.
type Error struct {
	Topic   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("notify error for topic %s: %s: %v", e.Topic, e.Message, e.Cause)
	}
	return fmt.Sprintf("notify error for topic %s: %s", e.Topic, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Publisher publishes a message to a flat-string topic namespace.
type Publisher interface {
	Publish(ctx context.Context, topic, title, body string, data map[string]string) error
}

// Dispatcher maps a structured record to a topic and publishes an alert.
type Dispatcher struct {
	publisher Publisher
	out       io.Writer
}

// NewDispatcher creates a Dispatcher. Failures are logged to out
// (os.Stdout when nil), never raised to the caller.
func NewDispatcher(publisher Publisher, out io.Writer) *Dispatcher {
	if out == nil {
		out = os.Stdout
	}
	return &Dispatcher{publisher: publisher, out: out}
}

// Dispatch publishes an alert for the record. Publish failure is logged
// and swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, record *types.StructuredRecord) {
	topic := Topic(record.Analysis)
	title := fmt.Sprintf("%s Notice", record.Analysis.Category)
	body := record.Analysis.Summary
	data := map[string]string{"notice_id": record.ID}

	if err := d.publisher.Publish(ctx, topic, title, body, data); err != nil {
		fmt.Fprintf(d.out, "Warning: notification for %q failed: %v\n", record.Meta.Title, err)
	}
}

// Topic selects the notification topic: the first audience naming a
// specific group gets its own topic, otherwise the alert goes to TopicAll.
func Topic(analysis types.Analysis) string {
	for _, audience := range analysis.TargetAudience {
		if audience == "" {
			continue
		}
		if strings.EqualFold(audience, TopicAll) || strings.EqualFold(audience, types.DefaultAudience) {
			continue
		}
		return Slug(audience)
	}
	return TopicAll
}

// Slug converts an audience name to a valid topic name: lowercase with
// non-alphanumeric runs collapsed to single dashes ("B. Tech" → "b-tech").
func Slug(audience string) string {
	var sb strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range strings.ToLower(audience) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				sb.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
