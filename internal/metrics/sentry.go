package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics records request and engine spans in Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // Always enabled if Sentry is configured
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if m == nil || !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("endpoint", endpoint)
	span.SetData("status_code", statusCode)

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordAssembly records one timeline assembly
func (m *SentryMetrics) RecordAssembly(ctx context.Context, tracks, events int, totalBeats float64, duration time.Duration, success bool) {
	if m == nil || !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "timeline.assemble")
	defer span.Finish()

	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("tracks", tracks)
	span.SetData("events", events)
	span.SetData("total_beats", totalBeats)
	span.SetData("duration_ms", duration.Milliseconds())

	// Grammar errors are client errors; the span itself still completed
	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInvalidArgument
	}
	span.Description = fmt.Sprintf("Assemble %d tracks", tracks)
}

// RecordExport records a MIDI file render
func (m *SentryMetrics) RecordExport(ctx context.Context, tracks, notes int, bytes int64, duration time.Duration) {
	if m == nil || !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "midi.export")
	defer span.Finish()

	span.SetData("tracks", tracks)
	span.SetData("notes", notes)
	span.SetData("bytes", bytes)
	span.SetData("duration_ms", duration.Milliseconds())
	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("MIDI Export: %d notes", notes)
}

// RecordGrammarError adds a breadcrumb for a rejected phrase so that a later
// exception in the same request carries the offending input
func (m *SentryMetrics) RecordGrammarError(ctx context.Context, endpoint, detail string) {
	if m == nil || !m.enabled {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Type:     "default",
		Category: "grammar",
		Message:  detail,
		Data:     map[string]interface{}{"endpoint": endpoint},
		Level:    sentry.LevelWarning,
	}, nil)
}
