package models

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Conceptual-Machines/riffcard-api/internal/notation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "bpm": 96,
  "tracks": [
    [
      {"notes": ["C", "R", "E+G"], "duration": "4s", "c_scale": 60, "strum": false},
      {"notes": [], "duration": "8s", "c_scale": 48, "strum": true}
    ],
    [
      {"notes": ["K", "S"], "duration": "4s", "c_scale": 60, "strum": false}
    ]
  ]
}`

func TestDecodeJSON(t *testing.T) {
	song, err := DecodeJSON(strings.NewReader(sampleJSON))
	require.NoError(t, err)
	assert.Equal(t, 96, song.BPM)
	require.Len(t, song.Tracks, 2)
	assert.Equal(t, []string{"C", "R", "E+G"}, song.Tracks[0][0].Notes)
	assert.Equal(t, 48, song.Tracks[0][1].CScale)
	assert.True(t, song.Tracks[0][1].Strum)
	assert.NotNil(t, song.Tracks[0][1].Notes)
	require.NoError(t, song.Validate(notation.ParseOptions{}))
}

func TestDecodeJSONSchemaErrors(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantPath string
	}{
		{
			name:     "missing bpm",
			doc:      `{"tracks": []}`,
			wantPath: "bpm",
		},
		{
			name:     "missing tracks",
			doc:      `{"bpm": 120}`,
			wantPath: "tracks",
		},
		{
			name:     "missing strum",
			doc:      `{"bpm": 120, "tracks": [[{"notes": [], "duration": "4s", "c_scale": 60}]]}`,
			wantPath: "tracks[0][0].strum",
		},
		{
			name:     "missing c_scale in second track",
			doc:      `{"bpm": 120, "tracks": [[], [{"notes": [], "duration": "4s", "strum": true}]]}`,
			wantPath: "tracks[1][0].c_scale",
		},
		{
			name:     "null notes",
			doc:      `{"bpm": 120, "tracks": [[{"notes": null, "duration": "4s", "c_scale": 60, "strum": true}]]}`,
			wantPath: "tracks[0][0].notes",
		},
		{
			name: "unknown top-level field",
			doc:  `{"bpm": 120, "tracks": [], "title": "x"}`,
		},
		{
			name: "unknown riff field",
			doc:  `{"bpm": 120, "tracks": [[{"notes": [], "duration": "4s", "c_scale": 60, "strum": true, "instrument": 3}]]}`,
		},
		{
			name: "wrong type",
			doc:  `{"bpm": "fast", "tracks": []}`,
		},
		{
			name: "empty",
			doc:  ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON(strings.NewReader(tt.doc))
			require.Error(t, err)

			var serr *SchemaError
			require.True(t, errors.As(err, &serr))
			if tt.wantPath != "" {
				assert.Equal(t, tt.wantPath, serr.Path)
				assert.Contains(t, err.Error(), tt.wantPath)
			}
		})
	}
}

func TestDecodedNotesWithWhitespaceFailValidation(t *testing.T) {
	doc := `{"bpm": 120, "tracks": [[{"notes": ["C E", "G\tA"], "duration": "4s", "c_scale": 60, "strum": false}]]}`
	song, err := DecodeJSON(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"C E", "G\tA"}, song.Tracks[0][0].Notes)

	err = song.Validate(notation.ParseOptions{})
	require.Error(t, err)
	var perr *notation.PhraseError
	require.True(t, errors.As(err, &perr))
	assert.Len(t, perr.Errors, 2)
	assert.Contains(t, err.Error(), "tracks[0][0]")
}

func TestDecodeYAML(t *testing.T) {
	doc := `
bpm: 100
tracks:
  - - notes: [C, D, E]
      duration: 8s
      c_scale: 72
      strum: false
`
	song, err := DecodeYAML(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 100, song.BPM)
	assert.Equal(t, []string{"C", "D", "E"}, song.Tracks[0][0].Notes)
	assert.Equal(t, 72, song.Tracks[0][0].CScale)

	_, err = DecodeYAML(strings.NewReader("bpm: 100\ntracks: []\nextra: 1\n"))
	var serr *SchemaError
	require.True(t, errors.As(err, &serr))

	_, err = DecodeYAML(strings.NewReader("bpm: 100\ntracks:\n  - - notes: []\n      duration: 4s\n      c_scale: 60\n"))
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "tracks[0][0].strum", serr.Path)
}

func TestEncodeRoundTrip(t *testing.T) {
	song, err := DecodeJSON(strings.NewReader(sampleJSON))
	require.NoError(t, err)

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, song, format))

			again, err := Decode(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, song, again)
		})
	}
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatForPath("song.YML"))
	assert.Equal(t, FormatYAML, FormatForPath("a/b/song.yaml"))
	assert.Equal(t, FormatJSON, FormatForPath("song.json"))
	assert.Equal(t, FormatJSON, FormatForPath("song"))
}
