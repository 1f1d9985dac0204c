package logger

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// Fields represents structured log fields
type Fields map[string]interface{}

type level struct {
	tag    string
	crumb  string
	sentry sentry.Level
}

var (
	levelDebug = level{tag: "DEBUG", crumb: "debug", sentry: sentry.LevelDebug}
	levelInfo  = level{tag: "INFO", crumb: "info", sentry: sentry.LevelInfo}
	levelWarn  = level{tag: "WARN", crumb: "warning", sentry: sentry.LevelWarning}
	levelError = level{tag: "ERROR", crumb: "error", sentry: sentry.LevelError}
)

// WithContext extracts request context for logging
func WithContext(c *gin.Context) Fields {
	fields := Fields{
		"request_id": c.GetString("request_id"),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}

	if userID, exists := c.Get("user_id"); exists {
		fields["user_id"] = userID
	}
	if sessionID := c.GetString("session_id"); sessionID != "" {
		fields["session_id"] = sessionID
	}

	return fields
}

// Debug logs a debug message with structured fields
func Debug(msg string, fields Fields) {
	emit(levelDebug, "log", msg, fields)
}

// Info logs an informational message with structured fields
func Info(msg string, fields Fields) {
	emit(levelInfo, "log", msg, fields)
}

// Warn logs a warning message with structured fields
func Warn(msg string, fields Fields) {
	emit(levelWarn, "log", msg, fields)
}

// Error logs an error message with structured fields and sends it to Sentry
func Error(msg string, err error, fields Fields) {
	log.Printf("[%s] %s: %v %s", levelError.tag, msg, err, formatFields(fields))

	hub := sentry.CurrentHub()
	if hub.Client() == nil || err == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		for key, value := range fields {
			scope.SetContext(key, map[string]interface{}{"value": value})
		}
		// Tags are what Sentry search filters on
		for _, key := range []string{"request_id", "session_id"} {
			if v, ok := fields[key].(string); ok && v != "" {
				scope.SetTag(key, v)
			}
		}
		hub.CaptureException(err)
	})
}

// LogAPIRequest logs a finished request at a level picked from its status.
// Exceptions are captured where they happen, so a 5xx here only logs.
func LogAPIRequest(c *gin.Context, duration time.Duration, statusCode int) {
	fields := WithContext(c)
	fields["duration_ms"] = duration.Milliseconds()
	fields["status_code"] = statusCode
	fields["client_ip"] = c.ClientIP()

	switch {
	case statusCode >= http.StatusInternalServerError:
		emit(levelError, "api", "Request failed with server error", fields)
	case statusCode >= http.StatusBadRequest:
		emit(levelWarn, "api", "Request failed with client error", fields)
	default:
		emit(levelInfo, "api", "Request completed", fields)
	}
}

// LogTimelineRequest logs the outcome of a timeline assembly or export
func LogTimelineRequest(ctx context.Context, operation string, duration time.Duration, events int, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}

	fields["operation"] = operation
	fields["duration_ms"] = duration.Milliseconds()
	fields["events"] = events

	emit(levelInfo, "timeline", "Timeline request completed", fields)

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		span := sentry.StartSpan(ctx, "timeline."+operation)
		span.SetData("events", events)
		span.Finish()
	}
}

func emit(l level, category, msg string, fields Fields) {
	log.Printf("[%s] %s %s", l.tag, msg, formatFields(fields))

	if sentry.CurrentHub().Client() == nil {
		return
	}
	data := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		data[k] = v
	}
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:     l.crumb,
		Category: category,
		Message:  msg,
		Data:     data,
		Level:    l.sentry,
	})
}

// formatFields renders fields as {k=v, ...} with keys sorted
func formatFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(formatValue(fields[k]))
	}
	b.WriteByte('}')
	return b.String()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return fmt.Sprintf("%.2f", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
