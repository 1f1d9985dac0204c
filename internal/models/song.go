package models

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/riffcard-api/internal/notation"
	"github.com/Conceptual-Machines/riffcard-api/internal/timeline"
)

const (
	DefaultBPM       = 120
	DefaultCScale    = 60
	DefaultTracks    = 4
	RiffsPerTrack    = 3
	MaxBPM           = 999
	highestAnchor    = 127 - 11
	scaleOctaveCount = 8
)

// Riff is one card of a track as stored in a song document
type Riff struct {
	Notes    []string `json:"notes" yaml:"notes"`
	Duration string   `json:"duration" yaml:"duration"`
	CScale   int      `json:"c_scale" yaml:"c_scale"`
	Strum    bool     `json:"strum" yaml:"strum"`
}

// NewRiff returns an empty quarter-note riff anchored at middle C
func NewRiff() Riff {
	return Riff{Notes: []string{}, Duration: notation.DefaultDuration, CScale: DefaultCScale}
}

// Copy returns a deep copy of the riff
func (r Riff) Copy() Riff {
	c := r
	c.Notes = make([]string, len(r.Notes))
	copy(c.Notes, r.Notes)
	return c
}

// Text is the phrase as typed by a user
func (r Riff) Text() string {
	return strings.Join(r.Notes, " ")
}

// Song is the persisted document: a tempo and a grid of riffs
type Song struct {
	BPM    int      `json:"bpm" yaml:"bpm"`
	Tracks [][]Riff `json:"tracks" yaml:"tracks"`
}

// NewTrack returns RiffsPerTrack empty riffs
func NewTrack() []Riff {
	track := make([]Riff, RiffsPerTrack)
	for i := range track {
		track[i] = NewRiff()
	}
	return track
}

// NewSong returns the blank document: DefaultTracks tracks of empty riffs
func NewSong(bpm int) *Song {
	if bpm <= 0 {
		bpm = DefaultBPM
	}
	s := &Song{BPM: bpm, Tracks: make([][]Riff, DefaultTracks)}
	for i := range s.Tracks {
		s.Tracks[i] = NewTrack()
	}
	return s
}

// Copy returns a deep copy of the song
func (s *Song) Copy() *Song {
	c := &Song{BPM: s.BPM, Tracks: make([][]Riff, len(s.Tracks))}
	for ti, track := range s.Tracks {
		c.Tracks[ti] = make([]Riff, len(track))
		for ri, r := range track {
			c.Tracks[ti][ri] = r.Copy()
		}
	}
	return c
}

// ScaleOptions lists the anchors offered for a track: C1 (12) to C8 (96)
func ScaleOptions() []int {
	out := make([]int, scaleOctaveCount)
	for i := range out {
		out[i] = 12 * (i + 1)
	}
	return out
}

// ValidateAnchor checks that every note of an octave above anchor is a
// valid MIDI pitch
func ValidateAnchor(anchor int) error {
	if anchor < 0 || anchor > highestAnchor {
		return fmt.Errorf("c_scale %d out of range 0-%d", anchor, highestAnchor)
	}
	return nil
}

// Validate re-parses every riff. Structural problems come back as
// *SchemaError, grammar problems wrap *notation.PhraseError.
func (s *Song) Validate(opts notation.ParseOptions) error {
	if s.BPM <= 0 || s.BPM > MaxBPM {
		return &SchemaError{Path: "bpm", Reason: fmt.Sprintf("must be between 1 and %d", MaxBPM)}
	}
	for ti, track := range s.Tracks {
		for ri, r := range track {
			path := fmt.Sprintf("tracks[%d][%d]", ti, ri)
			if err := ValidateAnchor(r.CScale); err != nil {
				return &SchemaError{Path: path + ".c_scale", Reason: err.Error()}
			}
			if _, err := notation.ParseElementsWith(r.Notes, opts); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	return nil
}

// ToTimeline builds the assembler input. instruments must hold one entry
// per track.
func (s *Song) ToTimeline(instruments []Instrument) (timeline.Song, error) {
	if len(instruments) != len(s.Tracks) {
		return timeline.Song{}, fmt.Errorf("%d instruments for %d tracks", len(instruments), len(s.Tracks))
	}
	out := timeline.Song{Tempo: s.BPM, Tracks: make([]timeline.Track, len(s.Tracks))}
	for ti, track := range s.Tracks {
		riffs := make([]timeline.Riff, len(track))
		for ri, r := range track {
			riffs[ri] = timeline.Riff{
				Notes:    append([]string(nil), r.Notes...),
				Duration: r.Duration,
				Anchor:   r.CScale,
				Strum:    r.Strum,
			}
		}
		out.Tracks[ti] = timeline.Track{
			Name:  instruments[ti].Name,
			Drum:  instruments[ti].Drum,
			Riffs: riffs,
		}
	}
	return out, nil
}
