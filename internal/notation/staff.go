package notation

import "fmt"

var diatonicIndex = map[byte]int{
	'C': 0, 'D': 1, 'E': 2, 'F': 3, 'G': 4, 'A': 5, 'B': 6,
}

const diatonicLetters = "CDEFGAB"

const (
	// DrumStaffPosition is the middle staff line where every drum hit sits
	DrumStaffPosition = 6

	// The five staff lines sit on the even positions 2..10
	BottomStaffLine = 2
	TopStaffLine    = 10

	layoutOriginOctave = 4
	stepsPerOctave     = 7
)

// OctaveOf returns the MIDI octave of an anchor (C4 = 60)
func OctaveOf(anchor int) int {
	return floorDiv(anchor, semitonesPerOctave) - 1
}

// StaffPosition maps a letter to its diatonic line/space index relative to
// the C of octave 4. Accidentals never move a note on the staff.
func StaffPosition(letter byte, anchor int) int {
	l := upper(letter)
	if _, ok := drumPitch[l]; ok {
		return DrumStaffPosition
	}
	return diatonicIndex[l] + (OctaveOf(anchor)-layoutOriginOctave)*stepsPerOctave
}

// LetterAt is the inverse of StaffPosition for the letter part
func LetterAt(position int) byte {
	return diatonicLetters[floorMod(position, stepsPerOctave)]
}

// LedgerLines returns the extra line positions needed to reach position
func LedgerLines(position int) []int {
	var lines []int
	for p := BottomStaffLine - 2; p >= position; p -= 2 {
		lines = append(lines, p)
	}
	for p := TopStaffLine + 2; p <= position; p += 2 {
		lines = append(lines, p)
	}
	return lines
}

// Glyph describes how a token sits on the staff, without coordinates
type Glyph struct {
	Kind        string   `json:"kind"`
	Positions   []int    `json:"positions"`
	Accidentals []string `json:"accidentals"`
	LedgerLines []int    `json:"ledger_lines,omitempty"`
	Filled      bool     `json:"filled"`
	Stem        bool     `json:"stem"`
	DrumSymbols []string `json:"drum_symbols,omitempty"`
}

// Layout places a token for a riff with the given anchor and beat length.
// On a drum track every member is drawn on the middle line as a drum symbol.
func Layout(tok Token, anchor int, beats float64, drumTrack bool) (Glyph, error) {
	g := Glyph{Kind: tok.Kind.String()}
	switch tok.Kind {
	case KindInvalid:
		return g, tok.Err
	case KindRest:
		g.Positions = []int{DrumStaffPosition}
		return g, nil
	}

	if drumTrack {
		for _, n := range tok.Notes {
			sym := "o"
			if n.Letter == 'S' {
				sym = "X"
			}
			g.DrumSymbols = append(g.DrumSymbols, sym)
			g.Positions = append(g.Positions, DrumStaffPosition)
			g.Accidentals = append(g.Accidentals, "")
		}
		return g, nil
	}

	seen := make(map[int]bool)
	for _, n := range tok.Notes {
		pos := StaffPosition(n.Letter, anchor)
		g.Positions = append(g.Positions, pos)
		g.Accidentals = append(g.Accidentals, n.Accidental.Symbol())
		for _, l := range LedgerLines(pos) {
			if !seen[l] {
				seen[l] = true
				g.LedgerLines = append(g.LedgerLines, l)
			}
		}
	}
	g.Filled = beats <= 1
	g.Stem = tok.Kind == KindChord && beats < 4
	return g, nil
}

// LayoutPhrase lays out every token of a phrase
func LayoutPhrase(tokens []Token, anchor int, beats float64, drumTrack bool) ([]Glyph, error) {
	out := make([]Glyph, 0, len(tokens))
	for i, t := range tokens {
		g, err := Layout(t, anchor, beats, drumTrack)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return ((a % b) + b) % b
}
