package handlers

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/riffcard-api/internal/models"
	"github.com/Conceptual-Machines/riffcard-api/internal/notation"
	"github.com/gin-gonic/gin"
)

type NotationHandler struct {
	strict bool
}

func NewNotationHandler(strict bool) *NotationHandler {
	return &NotationHandler{strict: strict}
}

type ParseRequest struct {
	Text   string `json:"text"`
	Strict *bool  `json:"strict"`
}

type NoteView struct {
	Letter     string `json:"letter"`
	Accidental string `json:"accidental,omitempty"`
	Drum       bool   `json:"drum,omitempty"`
}

type TokenView struct {
	Text  string     `json:"text"`
	Kind  string     `json:"kind"`
	Notes []NoteView `json:"notes,omitempty"`
	Error string     `json:"error,omitempty"`
}

func tokenView(t notation.Token) TokenView {
	v := TokenView{Text: t.Text, Kind: t.Kind.String()}
	for _, n := range t.Notes {
		v.Notes = append(v.Notes, NoteView{
			Letter:     string(n.Letter),
			Accidental: n.Accidental.Symbol(),
			Drum:       n.Drum,
		})
	}
	if t.Err != nil {
		v.Error = t.Err.Reason
	}
	return v
}

func (h *NotationHandler) options(override *bool) notation.ParseOptions {
	opts := notation.ParseOptions{Strict: h.strict}
	if override != nil {
		opts.Strict = *override
	}
	return opts
}

// Parse tokenizes a phrase
// POST /api/v1/notation/parse
func (h *NotationHandler) Parse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokens, err := notation.ParsePhraseWith(req.Text, h.options(req.Strict))
	views := make([]TokenView, 0, len(tokens))
	for _, t := range tokens {
		views = append(views, tokenView(t))
	}
	if err != nil {
		sentryMetrics.RecordGrammarError(c.Request.Context(), c.FullPath(), err.Error())
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          err.Error(),
			"grammar_errors": grammarIssues(err),
			"tokens":         views,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tokens": views,
		"text":   notation.JoinPhrase(tokens),
	})
}

type ResolveRequest struct {
	Text     string `json:"text"`
	CScale   *int   `json:"c_scale"`
	Drum     bool   `json:"drum"`
	Duration string `json:"duration"`
	Strict   *bool  `json:"strict"`
}

type ResolvedToken struct {
	TokenView
	Pitches []int          `json:"pitches"`
	Glyph   notation.Glyph `json:"glyph"`
}

// Resolve returns pitches and staff layout for each token of a phrase
// POST /api/v1/notation/resolve
func (h *NotationHandler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	anchor := models.DefaultCScale
	if req.CScale != nil {
		anchor = *req.CScale
	}
	if err := models.ValidateAnchor(anchor); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Duration == "" {
		req.Duration = notation.DefaultDuration
	}

	tokens, err := notation.ParsePhraseWith(req.Text, h.options(req.Strict))
	if err != nil {
		respondError(c, err, http.StatusUnprocessableEntity)
		return
	}

	beats := notation.BeatLength(req.Duration)
	out := make([]ResolvedToken, 0, len(tokens))
	for _, t := range tokens {
		glyph, err := notation.Layout(t, anchor, beats, req.Drum)
		if err != nil {
			respondError(c, err, http.StatusUnprocessableEntity)
			return
		}
		pitches := t.Pitches(anchor)
		if pitches == nil {
			pitches = []int{}
		}
		out = append(out, ResolvedToken{TokenView: tokenView(t), Pitches: pitches, Glyph: glyph})
	}

	c.JSON(http.StatusOK, gin.H{
		"c_scale": anchor,
		"beats":   beats,
		"tokens":  out,
	})
}

// Durations lists the duration codes
// GET /api/v1/notation/durations
func (h *NotationHandler) Durations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default":   notation.DefaultDuration,
		"durations": notation.DurationCodes(),
	})
}

// Chords lists the chord library
// GET /api/v1/notation/chords
func (h *NotationHandler) Chords(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chords": notation.ChordLibrary()})
}

// Instruments lists the instrument catalog and scale anchors
// GET /api/v1/notation/instruments
func (h *NotationHandler) Instruments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"instruments":   models.InstrumentCatalog(),
		"scale_options": models.ScaleOptions(),
	})
}

type GrokifyRequest struct {
	Seed *int64 `json:"seed"`
}

// Grokify generates a random riff
// POST /api/v1/notation/grokify
func (h *NotationHandler) Grokify(c *gin.Context) {
	var req GrokifyRequest
	// An empty body means no seed
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	text := notation.Grokify(rand.New(rand.NewSource(seed)))

	c.JSON(http.StatusOK, gin.H{
		"text":  text,
		"seed":  seed,
		"notes": notation.Texts(mustParse(text)),
	})
}

// mustParse parses generated text, which is valid by construction
func mustParse(text string) []notation.Token {
	tokens, _ := notation.ParsePhrase(text)
	return tokens
}
