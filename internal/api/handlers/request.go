package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Conceptual-Machines/riffcard-api/internal/models"
	"github.com/Conceptual-Machines/riffcard-api/internal/notation"
	"github.com/gin-gonic/gin"
)

// DocumentRequest carries a song document and optional per-track instruments.
// The song stays raw so it goes through the strict document decoder.
type DocumentRequest struct {
	Song        json.RawMessage     `json:"song"`
	Instruments []models.Instrument `json:"instruments"`
}

// decodeSong strictly decodes and validates a song document embedded in a request
func decodeSong(raw json.RawMessage, opts notation.ParseOptions) (*models.Song, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, &models.SchemaError{Path: "song", Reason: "is required"}
	}
	song, err := models.DecodeJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if err := song.Validate(opts); err != nil {
		return nil, err
	}
	return song, nil
}

// pathIndex reads a non-negative integer path parameter
func pathIndex(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, c.Param(name))
	}
	return v, nil
}

// InstrumentRequest names a catalog instrument, or spells one out when
// Program is set
type InstrumentRequest struct {
	Name    string `json:"name"`
	Program *int   `json:"program"`
	Drum    bool   `json:"drum"`
}

func (r InstrumentRequest) resolve() (models.Instrument, error) {
	if r.Program == nil {
		return models.LookupInstrument(r.Name)
	}
	inst := models.Instrument{Name: r.Name, Program: *r.Program, Drum: r.Drum}
	return inst, inst.Validate()
}
