package notation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeatLength(t *testing.T) {
	tests := []struct {
		code string
		want float64
	}{
		{code: "1s", want: 4},
		{code: "2", want: 2},
		{code: "4s", want: 1},
		{code: "8s", want: 0.5},
		{code: "16s", want: 0.25},
		{code: "32s", want: 0.125},
		{code: "half", want: 2},
		{code: "sixteenth", want: 0.25},
		{code: "unknown", want: 1},
		{code: "", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, BeatLength(tt.code))
		})
	}
}

func TestDurationCodes(t *testing.T) {
	codes := DurationCodes()
	require.Len(t, codes, 6)
	assert.Equal(t, "1s", codes[0].Code)
	assert.Equal(t, "32s", codes[5].Code)
	assert.Equal(t, 1.0, BeatLength(DefaultDuration))

	codes[0].Beats = 99
	assert.Equal(t, 4.0, BeatLength("1s"))
}

func TestChordLibrary(t *testing.T) {
	lib := ChordLibrary()
	require.Len(t, lib, 12)
	assert.Equal(t, "A7", lib[0].Name)

	am, err := LookupChord("Am")
	require.NoError(t, err)
	assert.Equal(t, "A+C+E", am.Text())

	for _, c := range lib {
		tok := ParseTokenWith(c.Text(), ParseOptions{Strict: true})
		assert.Nil(t, tok.Err, c.Name)
		assert.Equal(t, KindChord, tok.Kind, c.Name)
	}

	_, err = LookupChord("Hm")
	assert.Error(t, err)
}

func TestGrokifyAlwaysParses(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		text := Grokify(rng)

		tokens, err := ParsePhraseWith(text, ParseOptions{Strict: true})
		require.NoError(t, err, text)
		assert.GreaterOrEqual(t, len(tokens), 4)
		assert.LessOrEqual(t, len(tokens), 8)
	}
}

func TestGrokifyIsDeterministicPerSeed(t *testing.T) {
	a := Grokify(rand.New(rand.NewSource(7)))
	b := Grokify(rand.New(rand.NewSource(7)))
	assert.Equal(t, a, b)
}
