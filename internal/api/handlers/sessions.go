package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/Conceptual-Machines/riffcard-api/internal/api/middleware"
	"github.com/Conceptual-Machines/riffcard-api/internal/editor"
	"github.com/Conceptual-Machines/riffcard-api/internal/logger"
	"github.com/Conceptual-Machines/riffcard-api/internal/metrics"
	"github.com/Conceptual-Machines/riffcard-api/internal/models"
	"github.com/Conceptual-Machines/riffcard-api/internal/notation"
	"github.com/Conceptual-Machines/riffcard-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionsHandler serves the in-memory editing sessions
type SessionsHandler struct {
	sessions *editor.SessionStore
	songs    services.SongStore
	strict   bool
	metrics  *metrics.Client
}

func NewSessionsHandler(sessions *editor.SessionStore, songs services.SongStore, strict bool, cw *metrics.Client) *SessionsHandler {
	return &SessionsHandler{
		sessions: sessions,
		songs:    songs,
		strict:   strict,
		metrics:  cw,
	}
}

// SessionResponse is the full state of a session
type SessionResponse struct {
	ID          string              `json:"id"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Song        *models.Song        `json:"song"`
	Instruments []models.Instrument `json:"instruments"`
}

func sessionResponse(s *editor.Session) SessionResponse {
	song, instruments := s.Document()
	return SessionResponse{
		ID:          s.ID,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt(),
		Song:        song,
		Instruments: instruments,
	}
}

// session looks up the :id session and tags the request with it
func (h *SessionsHandler) session(c *gin.Context) (*editor.Session, bool) {
	id := c.Param("id")
	c.Set("session_id", id)
	s, err := h.sessions.Get(id)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return nil, false
	}
	return s, true
}

// slot resolves :id, :track and :slot
func (h *SessionsHandler) slot(c *gin.Context) (*editor.Session, int, int, bool) {
	s, ok := h.session(c)
	if !ok {
		return nil, 0, 0, false
	}
	track, err := pathIndex(c, "track")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, 0, 0, false
	}
	slot, err := pathIndex(c, "slot")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, 0, 0, false
	}
	return s, track, slot, true
}

// bindOptional binds a JSON body that may be absent
func bindOptional(c *gin.Context, dst interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

type CreateSessionRequest struct {
	DocumentRequest
	SongID string `json:"song_id"`
}

// CreateSession starts a session on a posted song, a stored song or a blank one
// POST /api/v1/sessions
func (h *SessionsHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if !bindOptional(c, &req) {
		return
	}

	var (
		song        *models.Song
		instruments = req.Instruments
		err         error
	)
	switch {
	case req.SongID != "":
		id, perr := uuid.Parse(req.SongID)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid song ID"})
			return
		}
		stored, gerr := h.songs.Get(c.Request.Context(), id, middleware.CurrentUserID(c))
		if gerr != nil {
			respondError(c, gerr, http.StatusInternalServerError)
			return
		}
		song, instruments = stored.Song(), stored.Instruments
	case len(req.Song) > 0:
		song, err = decodeSong(req.Song, notation.ParseOptions{Strict: h.strict})
		if err != nil {
			respondError(c, err, http.StatusBadRequest)
			return
		}
	}

	s, err := h.sessions.Create(song, instruments)
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}
	c.Set("session_id", s.ID)
	logger.Info("Editing session created", logger.WithContext(c))
	h.metrics.RecordActiveSessions(h.sessions.Len())

	c.JSON(http.StatusCreated, sessionResponse(s))
}

// GetSession returns the session document
// GET /api/v1/sessions/:id
func (h *SessionsHandler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

// DeleteSession ends a session
// DELETE /api/v1/sessions/:id
func (h *SessionsHandler) DeleteSession(c *gin.Context) {
	id := c.Param("id")
	c.Set("session_id", id)
	if err := h.sessions.Delete(id); err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	h.metrics.RecordActiveSessions(h.sessions.Len())
	c.Status(http.StatusNoContent)
}

type NewSongRequest struct {
	BPM int `json:"bpm"`
}

// NewSong replaces the document with a blank song
// POST /api/v1/sessions/:id/new
func (h *SessionsHandler) NewSong(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req NewSongRequest
	if !bindOptional(c, &req) {
		return
	}
	if req.BPM < 0 || req.BPM > models.MaxBPM {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bpm out of range"})
		return
	}
	s.NewSong(req.BPM)
	c.JSON(http.StatusOK, sessionResponse(s))
}

// OpenSong replaces the document with a posted song
// POST /api/v1/sessions/:id/open
func (h *SessionsHandler) OpenSong(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	song, err := decodeSong(req.Song, notation.ParseOptions{Strict: h.strict})
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}
	if err := s.Open(song, req.Instruments); err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

type SetBPMRequest struct {
	BPM int `json:"bpm" binding:"required"`
}

// SetBPM changes the tempo of the session song
// PUT /api/v1/sessions/:id/bpm
func (h *SessionsHandler) SetBPM(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req SetBPMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.SetBPM(req.BPM); err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

type AddTrackRequest struct {
	Instrument *InstrumentRequest `json:"instrument"`
}

// AddTrack appends a track of empty riffs
// POST /api/v1/sessions/:id/tracks
func (h *SessionsHandler) AddTrack(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req AddTrackRequest
	if !bindOptional(c, &req) {
		return
	}

	var inst *models.Instrument
	if req.Instrument != nil {
		resolved, err := req.Instrument.resolve()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		inst = &resolved
	}
	idx, err := s.AddTrack(inst)
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}
	_, instruments := s.Document()
	c.JSON(http.StatusCreated, gin.H{
		"track":      idx,
		"instrument": instruments[idx],
	})
}

// SetInstrument changes the instrument of a track
// PUT /api/v1/sessions/:id/tracks/:track/instrument
func (h *SessionsHandler) SetInstrument(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	track, err := pathIndex(c, "track")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req InstrumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inst, err := req.resolve()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.SetInstrument(track, inst); err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, gin.H{"track": track, "instrument": inst})
}

type SetScaleRequest struct {
	CScale *int `json:"c_scale" binding:"required"`
}

// SetScale moves every riff of a track to a new anchor
// PUT /api/v1/sessions/:id/tracks/:track/scale
func (h *SessionsHandler) SetScale(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	track, err := pathIndex(c, "track")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req SetScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.SetScale(track, *req.CScale); err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

// GetRiff returns one riff card
// GET /api/v1/sessions/:id/tracks/:track/riffs/:slot
func (h *SessionsHandler) GetRiff(c *gin.Context) {
	s, track, slot, ok := h.slot(c)
	if !ok {
		return
	}
	state, err := s.Slot(track, slot)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, state)
}

type SetRiffRequest struct {
	Text     string `json:"text"`
	Strum    bool   `json:"strum"`
	Duration string `json:"duration"`
}

// SetRiff replaces the text of a riff
// PUT /api/v1/sessions/:id/tracks/:track/riffs/:slot
func (h *SessionsHandler) SetRiff(c *gin.Context) {
	s, track, slot, ok := h.slot(c)
	if !ok {
		return
	}
	var req SetRiffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state, err := s.SetRiff(track, slot, req.Text, req.Strum, strings.TrimSpace(req.Duration))
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, state)
}

// GrokifyRiff fills a riff with a generated phrase
// POST /api/v1/sessions/:id/tracks/:track/riffs/:slot/grokify
func (h *SessionsHandler) GrokifyRiff(c *gin.Context) {
	s, track, slot, ok := h.slot(c)
	if !ok {
		return
	}
	var req GrokifyRequest
	if !bindOptional(c, &req) {
		return
	}
	state, err := s.Grokify(track, slot, req.Seed)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, state)
}

type PlaceRequest struct {
	Placements []editor.Placement `json:"placements" binding:"required"`
}

// Place applies a point-and-click edit as one undoable step
// POST /api/v1/sessions/:id/tracks/:track/riffs/:slot/place
func (h *SessionsHandler) Place(c *gin.Context) {
	s, track, slot, ok := h.slot(c)
	if !ok {
		return
	}
	var req PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state, err := s.Place(track, slot, req.Placements)
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Undo steps a riff back
// POST /api/v1/sessions/:id/tracks/:track/riffs/:slot/undo
func (h *SessionsHandler) Undo(c *gin.Context) {
	h.step(c, (*editor.Session).Undo)
}

// Redo steps a riff forward
// POST /api/v1/sessions/:id/tracks/:track/riffs/:slot/redo
func (h *SessionsHandler) Redo(c *gin.Context) {
	h.step(c, (*editor.Session).Redo)
}

func (h *SessionsHandler) step(c *gin.Context, op func(*editor.Session, int, int) (editor.SlotState, bool, error)) {
	s, track, slot, ok := h.slot(c)
	if !ok {
		return
	}
	state, changed, err := op(s, track, slot)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed, "slot": state})
}

// Timeline assembles the session document
// GET /api/v1/sessions/:id/timeline
func (h *SessionsHandler) Timeline(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	song, instruments := s.Document()
	tl, err := assemble(c, h.metrics, song, instruments)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, newTimelineResponse(tl, len(song.Tracks)))
}

// ExportMIDI returns the session document as a Standard MIDI File
// GET /api/v1/sessions/:id/export.mid
func (h *SessionsHandler) ExportMIDI(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	song, instruments := s.Document()
	tl, err := assemble(c, h.metrics, song, instruments)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	export(c, h.metrics, tl, instruments, defaultFileName)
}

type SaveSessionRequest struct {
	Name   string `json:"name" binding:"required"`
	SongID string `json:"song_id"`
}

// Save persists the session document, updating SongID when given
// POST /api/v1/sessions/:id/save
func (h *SessionsHandler) Save(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req SaveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	song, instruments := s.Document()
	stored := models.NewStoredSong(strings.TrimSpace(req.Name), middleware.CurrentUserID(c), song, instruments)

	status := http.StatusCreated
	if req.SongID != "" {
		id, err := uuid.Parse(req.SongID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid song ID"})
			return
		}
		stored.ID = id
		if err := h.songs.Update(c.Request.Context(), stored); err != nil {
			respondError(c, err, http.StatusInternalServerError)
			return
		}
		status = http.StatusOK
	} else if err := h.songs.Create(c.Request.Context(), stored); err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	fields := logger.WithContext(c)
	fields["song_id"] = stored.ID.String()
	logger.Info("Session saved", fields)

	c.JSON(status, stored.Summary())
}
