package notation

import (
	"math/rand"
	"strings"
)

const (
	grokMinLength   = 4
	grokMaxLength   = 8
	grokRestChance  = 0.15
	grokChordChance = 0.3
	grokAccChance   = 0.3
)

// Grokify generates a random riff of 4 to 8 elements mixing single notes,
// library chords and rests. The result always parses without error.
func Grokify(rng *rand.Rand) string {
	chords := ChordLibrary()
	n := grokMinLength + rng.Intn(grokMaxLength-grokMinLength+1)
	elements := make([]string, 0, n)
	for i := 0; i < n; i++ {
		switch {
		case rng.Float64() < grokRestChance:
			elements = append(elements, restText)
		case rng.Float64() < grokChordChance:
			elements = append(elements, chords[rng.Intn(len(chords))].Text())
		default:
			letter := string(diatonicLetters[rng.Intn(len(diatonicLetters))])
			if rng.Float64() < grokAccChance {
				if rng.Intn(2) == 0 {
					letter += "#"
				} else {
					letter += "b"
				}
			}
			elements = append(elements, letter)
		}
	}
	return strings.Join(elements, " ")
}
