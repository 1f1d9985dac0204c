package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/riffcard-api/internal/api/middleware"
	"github.com/Conceptual-Machines/riffcard-api/internal/logger"
	"github.com/Conceptual-Machines/riffcard-api/internal/models"
	"github.com/Conceptual-Machines/riffcard-api/internal/notation"
	"github.com/Conceptual-Machines/riffcard-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SongsHandler struct {
	store  services.SongStore
	strict bool
}

func NewSongsHandler(store services.SongStore, strict bool) *SongsHandler {
	return &SongsHandler{store: store, strict: strict}
}

type SaveSongRequest struct {
	Name string `json:"name" binding:"required"`
	DocumentRequest
}

func (h *SongsHandler) bindSong(c *gin.Context) (*models.StoredSong, bool) {
	var req SaveSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return nil, false
	}
	song, err := decodeSong(req.Song, notation.ParseOptions{Strict: h.strict})
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return nil, false
	}
	instruments, err := models.ResolveInstruments(req.Instruments, len(song.Tracks))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return models.NewStoredSong(name, middleware.CurrentUserID(c), song, instruments), true
}

func songID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid song ID"})
		return uuid.Nil, false
	}
	return id, true
}

// CreateSong stores a new song
// POST /api/v1/songs
func (h *SongsHandler) CreateSong(c *gin.Context) {
	stored, ok := h.bindSong(c)
	if !ok {
		return
	}
	if err := h.store.Create(c.Request.Context(), stored); err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	fields := logger.WithContext(c)
	fields["song_id"] = stored.ID.String()
	logger.Info("Song created", fields)

	c.JSON(http.StatusCreated, stored)
}

// ListSongs lists the caller's songs, newest first
// GET /api/v1/songs?limit=&offset=
func (h *SongsHandler) ListSongs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit > maxPageSize {
		limit = maxPageSize
	}

	songs, err := h.store.List(c.Request.Context(), middleware.CurrentUserID(c), limit, offset)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	summaries := make([]models.SongSummary, 0, len(songs))
	for i := range songs {
		summaries = append(summaries, songs[i].Summary())
	}
	c.JSON(http.StatusOK, gin.H{
		"songs":  summaries,
		"limit":  limit,
		"offset": offset,
	})
}

// GetSong returns one stored song
// GET /api/v1/songs/:id
func (h *SongsHandler) GetSong(c *gin.Context) {
	id, ok := songID(c)
	if !ok {
		return
	}
	stored, err := h.store.Get(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, stored)
}

// UpdateSong replaces the name and document of a stored song
// PUT /api/v1/songs/:id
func (h *SongsHandler) UpdateSong(c *gin.Context) {
	id, ok := songID(c)
	if !ok {
		return
	}
	stored, ok := h.bindSong(c)
	if !ok {
		return
	}
	stored.ID = id
	if err := h.store.Update(c.Request.Context(), stored); err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, stored)
}

// DeleteSong removes a stored song
// DELETE /api/v1/songs/:id
func (h *SongsHandler) DeleteSong(c *gin.Context) {
	id, ok := songID(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusNoContent)
}
