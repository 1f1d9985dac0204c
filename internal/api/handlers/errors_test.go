package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Conceptual-Machines/riffcard-api/internal/editor"
	"github.com/Conceptual-Machines/riffcard-api/internal/models"
	"github.com/Conceptual-Machines/riffcard-api/internal/notation"
	"github.com/Conceptual-Machines/riffcard-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	_, phraseErr := notation.ParsePhrase("C Q")
	require.Error(t, phraseErr)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"grammar", phraseErr, http.StatusUnprocessableEntity},
		{"wrapped grammar", fmt.Errorf("tracks[0][0]: %w", phraseErr), http.StatusUnprocessableEntity},
		{"schema", &models.SchemaError{Path: "bpm", Reason: "missing field"}, http.StatusBadRequest},
		{"song not found", fmt.Errorf("song x: %w", services.ErrSongNotFound), http.StatusNotFound},
		{"session not found", editor.ErrSessionNotFound, http.StatusNotFound},
		{"slot out of range", editor.ErrSlotOutOfRange, http.StatusNotFound},
		{"off staff", editor.ErrOffStaff, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err, http.StatusInternalServerError))
		})
	}
}

func TestGrammarIssues(t *testing.T) {
	_, err := notation.ParsePhrase("C Q X+Y")
	issues := grammarIssues(err)
	require.Len(t, issues, 2)
	assert.Equal(t, "Q", issues[0].Element)
	assert.Equal(t, "X+Y", issues[1].Element)

	assert.Nil(t, grammarIssues(errors.New("plain")))
}

func TestDecodeSong(t *testing.T) {
	_, err := decodeSong(nil, notation.ParseOptions{})
	var schemaErr *models.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "song", schemaErr.Path)

	_, err = decodeSong(json.RawMessage(`null`), notation.ParseOptions{})
	assert.ErrorAs(t, err, &schemaErr)

	song, err := decodeSong(json.RawMessage(`{"bpm":100,"tracks":[[{"notes":["C#"],"duration":"8s","c_scale":48,"strum":true}]]}`), notation.ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, 100, song.BPM)
	assert.True(t, song.Tracks[0][0].Strum)

	_, err = decodeSong(json.RawMessage(`{"bpm":100,"tracks":[[{"notes":["Cx"],"duration":"8s","c_scale":48,"strum":true}]]}`), notation.ParseOptions{Strict: true})
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(err, http.StatusBadRequest))
}

func TestInstrumentRequestResolve(t *testing.T) {
	inst, err := InstrumentRequest{Name: "violin"}.resolve()
	require.NoError(t, err)
	assert.Equal(t, 40, inst.Program)

	program := 81
	inst, err = InstrumentRequest{Name: "Lead", Program: &program}.resolve()
	require.NoError(t, err)
	assert.Equal(t, models.Instrument{Name: "Lead", Program: 81}, inst)

	program = 128
	_, err = InstrumentRequest{Name: "Lead", Program: &program}.resolve()
	assert.Error(t, err)

	_, err = InstrumentRequest{Name: "Kazoo"}.resolve()
	assert.Error(t, err)
}
