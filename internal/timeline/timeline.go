// Package timeline turns songs made of riffs into beat-timed note events.
// It performs no I/O and knows nothing about wall-clock time; the tempo is
// carried through for whoever plays or exports the result.
package timeline

import (
	"fmt"

	"github.com/Conceptual-Machines/riffcard-api/internal/notation"
)

const (
	// DrumChannel is the General MIDI percussion channel (zero based)
	DrumChannel uint8 = 9
	// MelodicChannel carries every pitched track
	MelodicChannel uint8 = 0

	// DefaultVelocity is used for every emitted note
	DefaultVelocity = 100

	// StrumStagger is the start offset in beats between consecutive chord
	// members when a riff is strummed
	StrumStagger = 0.03
)

// Riff is the assembler's view of one phrase
type Riff struct {
	Notes    []string
	Duration string
	Anchor   int
	Strum    bool
}

// Track is an ordered list of riffs played by one instrument
type Track struct {
	Name  string
	Drum  bool
	Riffs []Riff
}

// Song is an immutable input to Assemble
type Song struct {
	Tempo  int
	Tracks []Track
}

// Event is a single resolved note
type Event struct {
	Track      int     `json:"track"`
	Channel    uint8   `json:"channel"`
	Pitch      int     `json:"pitch"`
	StartBeat  float64 `json:"start_beat"`
	LengthBeat float64 `json:"length_beats"`
	Velocity   int     `json:"velocity"`
}

// EndBeat returns the beat at which the note stops sounding
func (e Event) EndBeat() float64 {
	return e.StartBeat + e.LengthBeat
}

// Timeline is the output of Assemble
type Timeline struct {
	Tempo    int       `json:"tempo"`
	Events   []Event   `json:"events"`
	EndBeats []float64 `json:"end_beats"`
}

// TotalBeats is the largest per-track end beat
func (t *Timeline) TotalBeats() float64 {
	var max float64
	for _, b := range t.EndBeats {
		if b > max {
			max = b
		}
	}
	return max
}

// RiffError locates a grammar error inside a song
type RiffError struct {
	Track int
	Slot  int
	Err   error
}

func (e *RiffError) Error() string {
	return fmt.Sprintf("track %d riff %d: %v", e.Track, e.Slot, e.Err)
}

func (e *RiffError) Unwrap() error { return e.Err }

// ChannelFor decides the MIDI channel of a track once, from its instrument
func ChannelFor(drum bool) uint8 {
	if drum {
		return DrumChannel
	}
	return MelodicChannel
}

// Assemble lays every track out on its own beat cursor.
// All riffs are parsed before anything is emitted, so a grammar error in any
// riff yields no events at all.
func Assemble(song Song) (*Timeline, error) {
	parsed := make([][][]notation.Token, len(song.Tracks))
	for ti, tr := range song.Tracks {
		parsed[ti] = make([][]notation.Token, len(tr.Riffs))
		for ri, r := range tr.Riffs {
			tokens, err := notation.ParseElements(r.Notes)
			if err != nil {
				return nil, &RiffError{Track: ti, Slot: ri, Err: err}
			}
			parsed[ti][ri] = tokens
		}
	}

	tl := &Timeline{
		Tempo:    song.Tempo,
		Events:   []Event{},
		EndBeats: make([]float64, len(song.Tracks)),
	}
	for ti, tr := range song.Tracks {
		channel := ChannelFor(tr.Drum)
		cursor := 0.0
		for ri, r := range tr.Riffs {
			length := notation.BeatLength(r.Duration)
			for _, tok := range parsed[ti][ri] {
				if tok.Kind != notation.KindRest {
					pitches := tok.Pitches(r.Anchor)
					stagger := 0.0
					if r.Strum && tok.IsChord() {
						stagger = strumStagger(len(pitches), length)
					}
					for j, p := range pitches {
						tl.Events = append(tl.Events, Event{
							Track:      ti,
							Channel:    channel,
							Pitch:      p,
							StartBeat:  cursor + float64(j)*stagger,
							LengthBeat: length,
							Velocity:   DefaultVelocity,
						})
					}
				}
				cursor += length
			}
		}
		tl.EndBeats[ti] = cursor
	}
	return tl, nil
}

// strumStagger keeps the last member of an n-note chord starting before the
// chord ends.
func strumStagger(n int, length float64) float64 {
	if n < 2 {
		return 0
	}
	if float64(n-1)*StrumStagger >= length {
		return length / float64(n)
	}
	return StrumStagger
}
