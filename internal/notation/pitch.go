package notation

// Semitone offsets from C
var letterSemitone = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// General MIDI percussion keys for the drum shorthand
var drumPitch = map[byte]int{
	'K': 35, // acoustic bass drum
	'S': 38, // acoustic snare
	'H': 42, // closed hi-hat
}

const semitonesPerOctave = 12

// Pitch resolves a note against a scale anchor.
// The letter and accidental are reduced into [0,12) before the anchor is
// added, so an accidental never leaves the anchor's octave band: Cb at 60
// is 71, not 59.
func (n Note) Pitch(anchor int) int {
	if n.Drum {
		return drumPitch[n.Letter]
	}
	base := letterSemitone[n.Letter]
	switch n.Accidental {
	case Sharp:
		base++
	case Flat:
		base--
	}
	base = ((base % semitonesPerOctave) + semitonesPerOctave) % semitonesPerOctave
	return anchor + base
}

// Pitches returns the token's pitches in written order; nil for rests and
// invalid tokens.
func (t Token) Pitches(anchor int) []int {
	if t.Kind == KindRest || t.Kind == KindInvalid {
		return nil
	}
	out := make([]int, len(t.Notes))
	for i, n := range t.Notes {
		out[i] = n.Pitch(anchor)
	}
	return out
}

// ResolvePitch parses a single element and resolves it against anchor.
// A rest yields (nil, nil).
func ResolvePitch(element string, anchor int) ([]int, error) {
	tok := ParseToken(element)
	if tok.Err != nil {
		return nil, tok.Err
	}
	return tok.Pitches(anchor), nil
}

// DrumPitch returns the fixed pitch of a drum letter
func DrumPitch(letter byte) (int, bool) {
	p, ok := drumPitch[upper(letter)]
	return p, ok
}
