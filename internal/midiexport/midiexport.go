// Package midiexport renders an assembled timeline as a Standard MIDI File.
package midiexport

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/Conceptual-Machines/riffcard-api/internal/models"
	"github.com/Conceptual-Machines/riffcard-api/internal/timeline"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	// TicksPerQuarter is the file resolution; one beat is one quarter note
	TicksPerQuarter = 960

	defaultTempo = 120
)

// Stats summarizes a written file
type Stats struct {
	Tracks  int   `json:"tracks"`
	Notes   int   `json:"notes"`
	Skipped int   `json:"skipped"`
	Bytes   int64 `json:"bytes"`
}

type noteEvent struct {
	tick uint32
	on   bool
	key  uint8
	vel  uint8
}

// Build converts a timeline into an SMF format 1 value with one track per
// instrument
func Build(tl *timeline.Timeline, instruments []models.Instrument) (*smf.SMF, Stats, error) {
	var stats Stats
	if len(instruments) != len(tl.EndBeats) {
		return nil, stats, fmt.Errorf("%d instruments for %d tracks", len(instruments), len(tl.EndBeats))
	}
	tempo := tl.Tempo
	if tempo <= 0 {
		tempo = defaultTempo
	}

	perTrack := make([][]noteEvent, len(instruments))
	for _, e := range tl.Events {
		if e.Track < 0 || e.Track >= len(instruments) {
			return nil, stats, fmt.Errorf("event on unknown track %d", e.Track)
		}
		if e.Pitch < 0 || e.Pitch > 127 {
			stats.Skipped++
			continue
		}
		key := uint8(e.Pitch)
		start := toTicks(e.StartBeat)
		perTrack[e.Track] = append(perTrack[e.Track],
			noteEvent{tick: start, on: true, key: key, vel: clampVelocity(e.Velocity)},
			noteEvent{tick: start + toTicks(e.LengthBeat), key: key},
		)
		stats.Notes++
	}

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(TicksPerQuarter)
	for i, inst := range instruments {
		if err := inst.Validate(); err != nil {
			return nil, stats, err
		}
		channel := timeline.ChannelFor(inst.Drum)

		var tr smf.Track
		tr.Add(0, smf.MetaTrackSequenceName(inst.Name))
		tr.Add(0, smf.MetaTempo(float64(tempo)))
		tr.Add(0, smf.MetaMeter(4, 4))
		tr.Add(0, midi.ProgramChange(channel, uint8(inst.Program)))

		events := perTrack[i]
		sort.SliceStable(events, func(a, b int) bool {
			if events[a].tick != events[b].tick {
				return events[a].tick < events[b].tick
			}
			return !events[a].on && events[b].on
		})
		var last uint32
		for _, ev := range events {
			msg := midi.NoteOff(channel, ev.key)
			if ev.on {
				msg = midi.NoteOn(channel, ev.key, ev.vel)
			}
			tr.Add(ev.tick-last, msg)
			last = ev.tick
		}
		tr.Close(0)

		if err := sm.Add(tr); err != nil {
			return nil, stats, fmt.Errorf("error adding track %d: %w", i, err)
		}
		stats.Tracks++
	}
	return sm, stats, nil
}

// Write encodes the timeline to w
func Write(w io.Writer, tl *timeline.Timeline, instruments []models.Instrument) (Stats, error) {
	sm, stats, err := Build(tl, instruments)
	if err != nil {
		return stats, err
	}
	n, err := sm.WriteTo(w)
	stats.Bytes = n
	if err != nil {
		return stats, fmt.Errorf("error writing MIDI data: %w", err)
	}
	return stats, nil
}

// Bytes encodes the timeline into memory
func Bytes(tl *timeline.Timeline, instruments []models.Instrument) ([]byte, Stats, error) {
	var buf bytes.Buffer
	stats, err := Write(&buf, tl, instruments)
	if err != nil {
		return nil, stats, err
	}
	return buf.Bytes(), stats, nil
}

// WriteFile encodes the timeline to path
func WriteFile(path string, tl *timeline.Timeline, instruments []models.Instrument) (Stats, error) {
	data, stats, err := Bytes(tl, instruments)
	if err != nil {
		return stats, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return stats, fmt.Errorf("error writing MIDI file: %w", err)
	}
	return stats, nil
}

func toTicks(beats float64) uint32 {
	if beats <= 0 {
		return 0
	}
	return uint32(math.Round(beats * TicksPerQuarter))
}

func clampVelocity(v int) uint8 {
	switch {
	case v < 1:
		return 1
	case v > 127:
		return 127
	default:
		return uint8(v)
	}
}
