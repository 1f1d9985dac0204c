package models

import (
	"fmt"
	"strings"
)

// Instrument assigns a General MIDI program to a track.
// Drum instruments are routed to the percussion channel.
type Instrument struct {
	Name    string `json:"name" yaml:"name"`
	Program int    `json:"program" yaml:"program"`
	Drum    bool   `json:"drum" yaml:"drum"`
}

var instrumentCatalog = []Instrument{
	{Name: "Acoustic Grand Piano", Program: 0},
	{Name: "Electric Guitar (clean)", Program: 27},
	{Name: "Electric Bass (finger)", Program: 33},
	{Name: "Violin", Program: 40},
	{Name: "Acoustic Bass Drum", Program: 35, Drum: true},
}

// InstrumentCatalog returns the selectable instruments in display order
func InstrumentCatalog() []Instrument {
	out := make([]Instrument, len(instrumentCatalog))
	copy(out, instrumentCatalog)
	return out
}

// DefaultInstrument is the instrument a new track at index i starts with
func DefaultInstrument(i int) Instrument {
	n := len(instrumentCatalog)
	return instrumentCatalog[((i%n)+n)%n]
}

// LookupInstrument finds a catalog entry by case-insensitive name
func LookupInstrument(name string) (Instrument, error) {
	for _, inst := range instrumentCatalog {
		if strings.EqualFold(inst.Name, strings.TrimSpace(name)) {
			return inst, nil
		}
	}
	return Instrument{}, fmt.Errorf("unknown instrument: %s", name)
}

// Validate checks that the program fits in a MIDI program change
func (i Instrument) Validate() error {
	if i.Program < 0 || i.Program > 127 {
		return fmt.Errorf("instrument %q: program %d out of range 0-127", i.Name, i.Program)
	}
	return nil
}

// ResolveInstruments returns one instrument per track. Missing entries are
// filled from the catalog by track index.
func ResolveInstruments(given []Instrument, tracks int) ([]Instrument, error) {
	if len(given) > tracks {
		return nil, fmt.Errorf("%d instruments given for %d tracks", len(given), tracks)
	}
	out := make([]Instrument, tracks)
	for i := range out {
		if i < len(given) {
			if err := given[i].Validate(); err != nil {
				return nil, err
			}
			out[i] = given[i]
			continue
		}
		out[i] = DefaultInstrument(i)
	}
	return out, nil
}
