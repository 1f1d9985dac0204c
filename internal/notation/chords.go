package notation

import (
	"fmt"
	"sort"
	"strings"
)

// Chord is a named entry of the chord library
type Chord struct {
	Name  string   `json:"name"`
	Notes []string `json:"notes"`
}

// Text returns the chord as a single phrase element, e.g. "C+E+G"
func (c Chord) Text() string {
	return strings.Join(c.Notes, ChordSeparator)
}

var chordLibrary = map[string][]string{
	"C":   {"C", "E", "G"},
	"Cm":  {"C", "Eb", "G"},
	"C7":  {"C", "E", "G", "Bb"},
	"Cm7": {"C", "Eb", "G", "Bb"},
	"D":   {"D", "F#", "A"},
	"Dm":  {"D", "F", "A"},
	"G":   {"G", "B", "D"},
	"Gm":  {"G", "Bb", "D"},
	"Am":  {"A", "C", "E"},
	"A7":  {"A", "C#", "E", "G"},
	"F":   {"F", "A", "C"},
	"Fm":  {"F", "Ab", "C"},
}

// LookupChord returns the library entry for name
func LookupChord(name string) (Chord, error) {
	notes, ok := chordLibrary[name]
	if !ok {
		return Chord{}, fmt.Errorf("unknown chord: %s", name)
	}
	cp := make([]string, len(notes))
	copy(cp, notes)
	return Chord{Name: name, Notes: cp}, nil
}

// ChordLibrary returns every chord sorted by name
func ChordLibrary() []Chord {
	names := make([]string, 0, len(chordLibrary))
	for name := range chordLibrary {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Chord, 0, len(names))
	for _, name := range names {
		c, _ := LookupChord(name)
		out = append(out, c)
	}
	return out
}
