package notation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffPosition(t *testing.T) {
	tests := []struct {
		letter byte
		anchor int
		want   int
	}{
		{letter: 'C', anchor: 60, want: 0},
		{letter: 'C', anchor: 72, want: 7},
		{letter: 'B', anchor: 60, want: 6},
		{letter: 'e', anchor: 60, want: 2},
		{letter: 'C', anchor: 48, want: -7},
		{letter: 'S', anchor: 24, want: DrumStaffPosition},
	}

	for _, tt := range tests {
		t.Run(string(tt.letter), func(t *testing.T) {
			assert.Equal(t, tt.want, StaffPosition(tt.letter, tt.anchor))
		})
	}
}

func TestStaffPositionIgnoresAccidentals(t *testing.T) {
	for _, element := range []string{"F", "F#", "Fb"} {
		tok := ParseToken(element)
		require.Nil(t, tok.Err)
		assert.Equal(t, 3, StaffPosition(tok.Notes[0].Letter, 60))
	}
}

func TestLetterAt(t *testing.T) {
	assert.Equal(t, byte('C'), LetterAt(0))
	assert.Equal(t, byte('C'), LetterAt(7))
	assert.Equal(t, byte('G'), LetterAt(4))
	assert.Equal(t, byte('B'), LetterAt(-1))
}

func TestLedgerLines(t *testing.T) {
	assert.Equal(t, []int{0}, LedgerLines(0))
	assert.Equal(t, []int{0}, LedgerLines(-1))
	assert.Equal(t, []int{0, -2}, LedgerLines(-3))
	assert.Equal(t, []int{12}, LedgerLines(12))
	assert.Equal(t, []int{12, 14}, LedgerLines(14))
	assert.Empty(t, LedgerLines(5))
	assert.Empty(t, LedgerLines(1))
	assert.Empty(t, LedgerLines(11))
}

func TestLayout(t *testing.T) {
	t.Run("quarter chord", func(t *testing.T) {
		g, err := Layout(ParseToken("C+E+G"), 60, 1, false)
		require.NoError(t, err)
		assert.Equal(t, "chord", g.Kind)
		assert.Equal(t, []int{0, 2, 4}, g.Positions)
		assert.Equal(t, []int{0}, g.LedgerLines)
		assert.True(t, g.Filled)
		assert.True(t, g.Stem)
	})

	t.Run("whole chord has open heads and no stem", func(t *testing.T) {
		g, err := Layout(ParseToken("C+E+G"), 60, 4, false)
		require.NoError(t, err)
		assert.False(t, g.Filled)
		assert.False(t, g.Stem)
	})

	t.Run("accidental symbols", func(t *testing.T) {
		g, err := Layout(ParseToken("F#+B%"), 60, 2, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"#", "b"}, g.Accidentals)
		assert.Equal(t, []int{3, 6}, g.Positions)
		assert.Empty(t, g.LedgerLines)
	})

	t.Run("drum track symbols", func(t *testing.T) {
		g, err := Layout(ParseToken("S"), 60, 1, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"X"}, g.DrumSymbols)
		assert.Equal(t, []int{DrumStaffPosition}, g.Positions)

		g, err = Layout(ParseToken("K+H"), 60, 1, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"o", "o"}, g.DrumSymbols)
	})

	t.Run("rest", func(t *testing.T) {
		g, err := Layout(ParseToken("R"), 60, 1, false)
		require.NoError(t, err)
		assert.Equal(t, "rest", g.Kind)
		assert.Equal(t, []int{DrumStaffPosition}, g.Positions)
	})

	t.Run("invalid token", func(t *testing.T) {
		_, err := Layout(ParseToken("Q"), 60, 1, false)
		require.Error(t, err)
	})
}

func TestLayoutPhrase(t *testing.T) {
	tokens, err := ParsePhrase("C R E+G")
	require.NoError(t, err)

	glyphs, err := LayoutPhrase(tokens, 72, 0.5, false)
	require.NoError(t, err)
	require.Len(t, glyphs, 3)
	assert.Equal(t, []int{7}, glyphs[0].Positions)
	assert.Equal(t, []int{9, 11}, glyphs[2].Positions)
}
