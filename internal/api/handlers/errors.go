package handlers

import (
	"errors"
	"net/http"

	"github.com/Conceptual-Machines/riffcard-api/internal/editor"
	"github.com/Conceptual-Machines/riffcard-api/internal/logger"
	"github.com/Conceptual-Machines/riffcard-api/internal/metrics"
	"github.com/Conceptual-Machines/riffcard-api/internal/models"
	"github.com/Conceptual-Machines/riffcard-api/internal/notation"
	"github.com/Conceptual-Machines/riffcard-api/internal/services"
	"github.com/gin-gonic/gin"
)

var sentryMetrics = metrics.NewSentryMetrics()

// GrammarIssue is the wire form of a single grammar error
type GrammarIssue struct {
	Element string `json:"element"`
	Reason  string `json:"reason"`
}

func grammarIssues(err error) []GrammarIssue {
	var phraseErr *notation.PhraseError
	if errors.As(err, &phraseErr) {
		out := make([]GrammarIssue, 0, len(phraseErr.Errors))
		for _, e := range phraseErr.Errors {
			out = append(out, GrammarIssue{Element: e.Element, Reason: e.Reason})
		}
		return out
	}
	var grammarErr *notation.GrammarError
	if errors.As(err, &grammarErr) {
		return []GrammarIssue{{Element: grammarErr.Element, Reason: grammarErr.Reason}}
	}
	return nil
}

// statusFor maps engine and store errors to HTTP codes. Errors it does not
// know fall back to fallback.
func statusFor(err error, fallback int) int {
	var schemaErr *models.SchemaError
	switch {
	case grammarIssues(err) != nil:
		return http.StatusUnprocessableEntity
	case errors.As(err, &schemaErr):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrSongNotFound),
		errors.Is(err, editor.ErrSessionNotFound),
		errors.Is(err, editor.ErrSlotOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrOffStaff):
		return http.StatusBadRequest
	default:
		return fallback
	}
}

// respondError writes err with the status statusFor picks
func respondError(c *gin.Context, err error, fallback int) {
	status := statusFor(err, fallback)
	body := gin.H{"error": err.Error()}

	if issues := grammarIssues(err); issues != nil {
		body["grammar_errors"] = issues
		sentryMetrics.RecordGrammarError(c.Request.Context(), c.FullPath(), err.Error())
		fields := logger.WithContext(c)
		fields["grammar_errors"] = len(issues)
		fields["detail"] = err.Error()
		logger.Debug("Rejected phrase", fields)
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", err, logger.WithContext(c))
		body["request_id"] = c.GetString("request_id")
	}
	c.JSON(status, body)
}
