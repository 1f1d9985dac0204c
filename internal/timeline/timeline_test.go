package timeline

import (
	"errors"
	"testing"

	"github.com/Conceptual-Machines/riffcard-api/internal/notation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quarterRiff(notes ...string) Riff {
	return Riff{Notes: notes, Duration: "4s", Anchor: 60}
}

func TestAssembleCursor(t *testing.T) {
	song := Song{
		Tempo:  120,
		Tracks: []Track{{Name: "piano", Riffs: []Riff{quarterRiff("C", "R", "E+G")}}},
	}

	tl, err := Assemble(song)
	require.NoError(t, err)
	assert.Equal(t, 120, tl.Tempo)
	require.Equal(t, []float64{3}, tl.EndBeats)
	require.Len(t, tl.Events, 3)

	assert.Equal(t, 60, tl.Events[0].Pitch)
	assert.Equal(t, 0.0, tl.Events[0].StartBeat)
	assert.Equal(t, 64, tl.Events[1].Pitch)
	assert.Equal(t, 67, tl.Events[2].Pitch)

	// nothing sounds inside the rest's window [1,2)
	for _, e := range tl.Events {
		overlaps := e.StartBeat < 2 && e.EndBeat() > 1
		assert.False(t, overlaps, "event %+v overlaps the rest", e)
		assert.Equal(t, DefaultVelocity, e.Velocity)
		assert.Equal(t, MelodicChannel, e.Channel)
	}
}

func TestAssembleEndBeatIsSumOfDurations(t *testing.T) {
	riffs := []Riff{
		{Notes: []string{"C", "D", "R"}, Duration: "8s", Anchor: 48},
		{Notes: []string{"E+G+B"}, Duration: "1s", Anchor: 48, Strum: true},
		{Notes: []string{}, Duration: "2", Anchor: 48},
		{Notes: []string{"R", "R"}, Duration: "bogus", Anchor: 48},
	}
	tl, err := Assemble(Song{Tempo: 90, Tracks: []Track{{Riffs: riffs}}})
	require.NoError(t, err)
	assert.InDelta(t, 3*0.5+4+0+2*1, tl.EndBeats[0], 1e-9)
	assert.InDelta(t, 7.5, tl.TotalBeats(), 1e-9)
}

func TestAssembleStrum(t *testing.T) {
	tests := []struct {
		name     string
		duration string
	}{
		{name: "quarter", duration: "4s"},
		{name: "thirty-second", duration: "32s"},
		{name: "whole", duration: "1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			riff := Riff{Notes: []string{"C", "C+E+G"}, Duration: tt.duration, Anchor: 60, Strum: true}
			tl, err := Assemble(Song{Tracks: []Track{{Riffs: []Riff{riff}}}})
			require.NoError(t, err)
			require.Len(t, tl.Events, 4)

			length := notation.BeatLength(tt.duration)
			first := tl.Events[1]
			assert.Equal(t, length, first.StartBeat)
			for _, e := range tl.Events[2:] {
				assert.Greater(t, e.StartBeat, first.StartBeat)
				assert.Less(t, e.StartBeat, first.StartBeat+length)
				assert.Equal(t, length, e.LengthBeat)
			}
			assert.Greater(t, tl.Events[3].StartBeat, tl.Events[2].StartBeat)
			assert.Equal(t, 2*length, tl.EndBeats[0])
		})
	}
}

func TestAssembleWithoutStrumIsSimultaneous(t *testing.T) {
	tl, err := Assemble(Song{Tracks: []Track{{Riffs: []Riff{quarterRiff("C+E+G")}}}})
	require.NoError(t, err)
	for _, e := range tl.Events {
		assert.Equal(t, 0.0, e.StartBeat)
	}
}

func TestAssembleDrumTrackChannel(t *testing.T) {
	song := Song{Tracks: []Track{
		{Name: "piano", Riffs: []Riff{quarterRiff("C")}},
		{Name: "kit", Drum: true, Riffs: []Riff{quarterRiff("K", "S+H")}},
	}}
	tl, err := Assemble(song)
	require.NoError(t, err)
	require.Len(t, tl.Events, 4)

	assert.Equal(t, MelodicChannel, tl.Events[0].Channel)
	for _, e := range tl.Events[1:] {
		assert.Equal(t, 1, e.Track)
		assert.Equal(t, DrumChannel, e.Channel)
	}
	assert.Equal(t, []int{35, 38, 42}, []int{tl.Events[1].Pitch, tl.Events[2].Pitch, tl.Events[3].Pitch})
	assert.Equal(t, []float64{1, 2}, tl.EndBeats)
}

func TestAssembleGrammarErrorEmitsNothing(t *testing.T) {
	song := Song{Tracks: []Track{
		{Riffs: []Riff{quarterRiff("C", "D")}},
		{Riffs: []Riff{quarterRiff("E"), quarterRiff("F", "Q")}},
	}}
	tl, err := Assemble(song)
	require.Error(t, err)
	assert.Nil(t, tl)

	var rerr *RiffError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, 1, rerr.Track)
	assert.Equal(t, 1, rerr.Slot)

	var gerr *notation.GrammarError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "Q", gerr.Element)
}

func TestStrumStagger(t *testing.T) {
	assert.Equal(t, 0.0, strumStagger(1, 1))
	assert.Equal(t, StrumStagger, strumStagger(3, 1))
	assert.Equal(t, StrumStagger, strumStagger(5, 0.125))
	assert.Equal(t, 0.125/6, strumStagger(6, 0.125))
}
