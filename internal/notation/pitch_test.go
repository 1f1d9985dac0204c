package notation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePitch(t *testing.T) {
	tests := []struct {
		name    string
		element string
		anchor  int
		want    []int
	}{
		{name: "C at middle C", element: "C", anchor: 60, want: []int{60}},
		{name: "C sharp", element: "C#", anchor: 60, want: []int{61}},
		{name: "C flat wraps into the anchor octave", element: "Cb", anchor: 60, want: []int{71}},
		{name: "B sharp wraps to C", element: "B#", anchor: 60, want: []int{60}},
		{name: "A one octave up", element: "A", anchor: 72, want: []int{81}},
		{name: "chord keeps written order", element: "G+C+E", anchor: 48, want: []int{55, 48, 52}},
		{name: "drum ignores anchor", element: "H", anchor: 96, want: []int{42}},
		{name: "drum chord", element: "K+S", anchor: 60, want: []int{35, 38}},
		{name: "trailing characters ignored", element: "Dxyz", anchor: 60, want: []int{62}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePitch(tt.element, tt.anchor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolvePitchRestAndInvalid(t *testing.T) {
	got, err := ResolvePitch("R", 60)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ResolvePitch("Z", 60)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Z"`)
}

func TestPitchClassIsOctaveInvariant(t *testing.T) {
	for _, letter := range diatonicLetters {
		for _, acc := range []string{"", "#", "b"} {
			element := string(letter) + acc
			for anchor := 0; anchor <= 96; anchor += 12 {
				low, err := ResolvePitch(element, anchor)
				require.NoError(t, err)
				high, err := ResolvePitch(element, anchor+12)
				require.NoError(t, err)
				assert.Equal(t, low[0]%12, high[0]%12, "%s at %d", element, anchor)
			}
		}
	}
}

func TestDrumPitch(t *testing.T) {
	p, ok := DrumPitch('s')
	assert.True(t, ok)
	assert.Equal(t, 38, p)

	_, ok = DrumPitch('C')
	assert.False(t, ok)
}
