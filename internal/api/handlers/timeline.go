package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/riffcard-api/internal/logger"
	"github.com/Conceptual-Machines/riffcard-api/internal/metrics"
	"github.com/Conceptual-Machines/riffcard-api/internal/midiexport"
	"github.com/Conceptual-Machines/riffcard-api/internal/models"
	"github.com/Conceptual-Machines/riffcard-api/internal/notation"
	"github.com/Conceptual-Machines/riffcard-api/internal/timeline"
	"github.com/gin-gonic/gin"
)

// TimelineHandler assembles posted songs and exports them as MIDI
type TimelineHandler struct {
	strict  bool
	metrics *metrics.Client
}

func NewTimelineHandler(strict bool, cw *metrics.Client) *TimelineHandler {
	return &TimelineHandler{strict: strict, metrics: cw}
}

// TimelineResponse is the JSON form of an assembled song
type TimelineResponse struct {
	*timeline.Timeline
	TotalBeats float64 `json:"total_beats"`
	Tracks     int     `json:"tracks"`
}

func newTimelineResponse(tl *timeline.Timeline, tracks int) TimelineResponse {
	return TimelineResponse{Timeline: tl, TotalBeats: tl.TotalBeats(), Tracks: tracks}
}

// assemble runs the assembler on song and records how it went
func assemble(c *gin.Context, cw *metrics.Client, song *models.Song, instruments []models.Instrument) (*timeline.Timeline, error) {
	input, err := song.ToTimeline(instruments)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tl, err := timeline.Assemble(input)
	duration := time.Since(start)

	events, beats := 0, 0.0
	if tl != nil {
		events, beats = len(tl.Events), tl.TotalBeats()
	}
	sentryMetrics.RecordAssembly(c.Request.Context(), len(input.Tracks), events, beats, duration, err == nil)
	cw.RecordAssembly(events, duration, err == nil)
	logger.LogTimelineRequest(c.Request.Context(), "assemble", duration, events, logger.WithContext(c))
	return tl, err
}

// export renders tl as a MIDI attachment
func export(c *gin.Context, cw *metrics.Client, tl *timeline.Timeline, instruments []models.Instrument, filename string) {
	start := time.Now()
	data, stats, err := midiexport.Bytes(tl, instruments)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	sentryMetrics.RecordExport(c.Request.Context(), stats.Tracks, stats.Notes, stats.Bytes, time.Since(start))
	cw.RecordExport(stats.Notes, stats.Bytes)

	if stats.Skipped > 0 {
		fields := logger.WithContext(c)
		fields["skipped"] = stats.Skipped
		logger.Warn("Skipped notes outside the MIDI range", fields)
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, midiContentType, data)
}

func (h *TimelineHandler) document(c *gin.Context) (*models.Song, []models.Instrument, bool) {
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	song, err := decodeSong(req.Song, notation.ParseOptions{Strict: h.strict})
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return nil, nil, false
	}
	instruments, err := models.ResolveInstruments(req.Instruments, len(song.Tracks))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	return song, instruments, true
}

// Timeline assembles a posted song
// POST /api/v1/timeline
func (h *TimelineHandler) Timeline(c *gin.Context) {
	song, instruments, ok := h.document(c)
	if !ok {
		return
	}
	tl, err := assemble(c, h.metrics, song, instruments)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, newTimelineResponse(tl, len(song.Tracks)))
}

// ExportMIDI assembles a posted song and returns it as a Standard MIDI File
// POST /api/v1/export/midi
func (h *TimelineHandler) ExportMIDI(c *gin.Context) {
	song, instruments, ok := h.document(c)
	if !ok {
		return
	}
	tl, err := assemble(c, h.metrics, song, instruments)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	export(c, h.metrics, tl, instruments, defaultFileName)
}
