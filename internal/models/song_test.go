package models

import (
	"errors"
	"testing"

	"github.com/Conceptual-Machines/riffcard-api/internal/notation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSong(t *testing.T) {
	song := NewSong(0)
	assert.Equal(t, DefaultBPM, song.BPM)
	require.Len(t, song.Tracks, DefaultTracks)
	for _, track := range song.Tracks {
		require.Len(t, track, RiffsPerTrack)
		for _, r := range track {
			assert.Equal(t, NewRiff(), r)
		}
	}
}

func TestSongCopyIsDeep(t *testing.T) {
	song := NewSong(120)
	song.Tracks[0][0].Notes = []string{"C"}

	c := song.Copy()
	c.Tracks[0][0].Notes[0] = "D"
	c.Tracks[1] = append(c.Tracks[1], NewRiff())

	assert.Equal(t, "C", song.Tracks[0][0].Notes[0])
	assert.Len(t, song.Tracks[1], RiffsPerTrack)
}

func TestSongValidate(t *testing.T) {
	song := NewSong(120)
	song.Tracks[2][1].Notes = []string{"C", "Xb"}

	err := song.Validate(notation.ParseOptions{})
	require.Error(t, err)
	var perr *notation.PhraseError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, err.Error(), "tracks[2][1]")

	song.Tracks[2][1].Notes = []string{"C E"}
	err = song.Validate(notation.ParseOptions{})
	require.Error(t, err)
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, err.Error(), "element contains whitespace")

	song.Tracks[2][1].Notes = []string{"Cx"}
	assert.NoError(t, song.Validate(notation.ParseOptions{}))
	assert.Error(t, song.Validate(notation.ParseOptions{Strict: true}))

	song.Tracks[2][1].CScale = 127
	var serr *SchemaError
	require.True(t, errors.As(song.Validate(notation.ParseOptions{}), &serr))
	assert.Equal(t, "tracks[2][1].c_scale", serr.Path)

	song = NewSong(120)
	song.BPM = -4
	require.True(t, errors.As(song.Validate(notation.ParseOptions{}), &serr))
	assert.Equal(t, "bpm", serr.Path)
}

func TestToTimeline(t *testing.T) {
	song := NewSong(90)
	song.Tracks[0][0].Notes = []string{"C", "E"}
	song.Tracks[0][0].Strum = true

	instruments, err := ResolveInstruments(nil, len(song.Tracks))
	require.NoError(t, err)

	ts, err := song.ToTimeline(instruments)
	require.NoError(t, err)
	assert.Equal(t, 90, ts.Tempo)
	require.Len(t, ts.Tracks, DefaultTracks)
	assert.Equal(t, "Acoustic Grand Piano", ts.Tracks[0].Name)
	assert.True(t, ts.Tracks[0].Riffs[0].Strum)
	assert.Equal(t, 60, ts.Tracks[0].Riffs[0].Anchor)

	ts.Tracks[0].Riffs[0].Notes[0] = "G"
	assert.Equal(t, "C", song.Tracks[0][0].Notes[0])

	_, err = song.ToTimeline(instruments[:2])
	assert.Error(t, err)
}

func TestInstruments(t *testing.T) {
	catalog := InstrumentCatalog()
	require.Len(t, catalog, 5)
	assert.Equal(t, catalog[0], DefaultInstrument(5))
	assert.True(t, DefaultInstrument(4).Drum)
	assert.Equal(t, 35, DefaultInstrument(4).Program)

	violin, err := LookupInstrument(" violin ")
	require.NoError(t, err)
	assert.Equal(t, 40, violin.Program)

	_, err = LookupInstrument("kazoo")
	assert.Error(t, err)

	got, err := ResolveInstruments([]Instrument{violin}, 3)
	require.NoError(t, err)
	assert.Equal(t, []Instrument{violin, catalog[1], catalog[2]}, got)

	_, err = ResolveInstruments([]Instrument{{Name: "bad", Program: 200}}, 1)
	assert.Error(t, err)
	_, err = ResolveInstruments(catalog, 2)
	assert.Error(t, err)
}

func TestScaleOptions(t *testing.T) {
	opts := ScaleOptions()
	assert.Equal(t, []int{12, 24, 36, 48, 60, 72, 84, 96}, opts)
	for _, a := range opts {
		assert.NoError(t, ValidateAnchor(a))
	}
	assert.Error(t, ValidateAnchor(-1))
}
