// Package editor owns editable song documents on the server side.
// A Session serializes every mutation of its document behind a mutex and
// keeps one undo history per riff slot; readers only ever get copies.
package editor

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/Conceptual-Machines/riffcard-api/internal/history"
	"github.com/Conceptual-Machines/riffcard-api/internal/models"
	"github.com/Conceptual-Machines/riffcard-api/internal/notation"
	"github.com/Conceptual-Machines/riffcard-api/internal/timeline"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSlotOutOfRange  = errors.New("track or riff slot out of range")
	ErrOffStaff        = errors.New("placement is outside the staff")
)

// Options configures new sessions
type Options struct {
	MaxUndo    int
	Strict     bool
	DefaultBPM int
}

// Placement is one point-and-click edit: the note at Column is replaced (or
// appended past the end) by the letter sitting at staff Position
type Placement struct {
	Column   int `json:"column"`
	Position int `json:"position"`
}

// SlotState is what a client needs to redraw one riff card
type SlotState struct {
	Track   int              `json:"track"`
	Slot    int              `json:"slot"`
	Riff    models.Riff      `json:"riff"`
	Text    string           `json:"text"`
	Glyphs  []notation.Glyph `json:"glyphs"`
	CanUndo bool             `json:"can_undo"`
	CanRedo bool             `json:"can_redo"`
}

// Session is one editable document
type Session struct {
	ID        string
	CreatedAt time.Time

	mu          sync.Mutex
	song        *models.Song
	instruments []models.Instrument
	histories   [][]*history.History
	opts        Options
	rng         *rand.Rand
	updatedAt   time.Time
}

func newSession(id string, song *models.Song, instruments []models.Instrument, opts Options) *Session {
	now := time.Now()
	s := &Session{
		ID:        id,
		CreatedAt: now,
		opts:      opts,
		rng:       rand.New(rand.NewSource(now.UnixNano())),
		updatedAt: now,
	}
	s.load(song, instruments)
	return s
}

// load replaces the document and resets every history; callers hold mu
func (s *Session) load(song *models.Song, instruments []models.Instrument) {
	s.song = song.Copy()
	s.instruments = append([]models.Instrument(nil), instruments...)
	s.histories = make([][]*history.History, len(s.song.Tracks))
	for ti, track := range s.song.Tracks {
		s.histories[ti] = make([]*history.History, len(track))
		for ri := range track {
			s.histories[ti][ri] = history.New(s.opts.MaxUndo)
		}
	}
	s.touch()
}

func (s *Session) touch() { s.updatedAt = time.Now() }

// UpdatedAt returns the time of the last mutation
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

func (s *Session) parseOptions() notation.ParseOptions {
	return notation.ParseOptions{Strict: s.opts.Strict}
}

func (s *Session) checkSlot(track, slot int) error {
	if track < 0 || track >= len(s.song.Tracks) {
		return fmt.Errorf("track %d: %w", track, ErrSlotOutOfRange)
	}
	if slot < 0 || slot >= len(s.song.Tracks[track]) {
		return fmt.Errorf("track %d slot %d: %w", track, slot, ErrSlotOutOfRange)
	}
	return nil
}

func snapshotOf(r models.Riff) history.Snapshot {
	return history.Snapshot{
		Notes:    r.Notes,
		Duration: r.Duration,
		CScale:   r.CScale,
		Strum:    r.Strum,
		Text:     r.Text(),
	}
}

func riffOf(snap history.Snapshot) models.Riff {
	notes := snap.Notes
	if notes == nil {
		notes = []string{}
	}
	return models.Riff{Notes: notes, Duration: snap.Duration, CScale: snap.CScale, Strum: snap.Strum}
}

// mutate records the slot's current state as a baseline if its history is
// empty, applies next, then commits next as the new top so that the next
// undo returns to the state before this edit
func (s *Session) mutate(track, slot int, next models.Riff) {
	h := s.histories[track][slot]
	if undo, _ := h.Depth(); undo == 0 {
		h.Save(snapshotOf(s.song.Tracks[track][slot]))
	}
	current := snapshotOf(s.song.Tracks[track][slot])
	committed := snapshotOf(next)
	if current.Equal(committed) {
		return
	}
	s.song.Tracks[track][slot] = next.Copy()
	h.Save(committed)
	s.touch()
}

// SetRiff replaces a riff's text, strum flag and optionally its duration.
// A grammar error leaves both the riff and its history untouched.
func (s *Session) SetRiff(track, slot int, text string, strum bool, duration string) (SlotState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSlot(track, slot); err != nil {
		return SlotState{}, err
	}
	tokens, err := notation.ParsePhraseWith(text, s.parseOptions())
	if err != nil {
		return SlotState{}, err
	}

	next := s.song.Tracks[track][slot].Copy()
	next.Notes = notation.Texts(tokens)
	next.Strum = strum
	if duration != "" {
		next.Duration = duration
	}
	s.mutate(track, slot, next)
	return s.slotState(track, slot), nil
}

// Grokify fills a riff with a generated phrase. A nil seed uses the
// session's own random source.
func (s *Session) Grokify(track, slot int, seed *int64) (SlotState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSlot(track, slot); err != nil {
		return SlotState{}, err
	}
	rng := s.rng
	if seed != nil {
		rng = rand.New(rand.NewSource(*seed))
	}
	tokens, err := notation.ParsePhraseWith(notation.Grokify(rng), s.parseOptions())
	if err != nil {
		return SlotState{}, err
	}

	next := s.song.Tracks[track][slot].Copy()
	next.Notes = notation.Texts(tokens)
	s.mutate(track, slot, next)
	return s.slotState(track, slot), nil
}

// Place applies a point-and-click edit session as a single undoable step.
// Positions must lie on the five-line staff (2..10).
func (s *Session) Place(track, slot int, placements []Placement) (SlotState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSlot(track, slot); err != nil {
		return SlotState{}, err
	}
	for _, p := range placements {
		if p.Position < notation.BottomStaffLine || p.Position > notation.TopStaffLine {
			return SlotState{}, fmt.Errorf("position %d: %w", p.Position, ErrOffStaff)
		}
		if p.Column < 0 {
			return SlotState{}, fmt.Errorf("column %d: %w", p.Column, ErrOffStaff)
		}
	}

	next := s.song.Tracks[track][slot].Copy()
	for _, p := range placements {
		letter := string(notation.LetterAt(p.Position))
		if p.Column < len(next.Notes) {
			next.Notes[p.Column] = letter
		} else {
			next.Notes = append(next.Notes, letter)
		}
	}
	s.mutate(track, slot, next)
	return s.slotState(track, slot), nil
}

// SetScale moves every riff of a track to a new anchor
func (s *Session) SetScale(track, anchor int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if track < 0 || track >= len(s.song.Tracks) {
		return fmt.Errorf("track %d: %w", track, ErrSlotOutOfRange)
	}
	if err := models.ValidateAnchor(anchor); err != nil {
		return err
	}
	for slot := range s.song.Tracks[track] {
		next := s.song.Tracks[track][slot].Copy()
		next.CScale = anchor
		s.mutate(track, slot, next)
	}
	return nil
}

// SetInstrument changes the instrument of a track
func (s *Session) SetInstrument(track int, inst models.Instrument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if track < 0 || track >= len(s.instruments) {
		return fmt.Errorf("track %d: %w", track, ErrSlotOutOfRange)
	}
	if err := inst.Validate(); err != nil {
		return err
	}
	s.instruments[track] = inst
	s.touch()
	return nil
}

// AddTrack appends an empty track. A nil instrument picks the catalog
// default for the new index.
func (s *Session) AddTrack(inst *models.Instrument) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := len(s.song.Tracks)
	chosen := models.DefaultInstrument(idx)
	if inst != nil {
		if err := inst.Validate(); err != nil {
			return 0, err
		}
		chosen = *inst
	}
	s.song.Tracks = append(s.song.Tracks, models.NewTrack())
	s.instruments = append(s.instruments, chosen)
	hs := make([]*history.History, models.RiffsPerTrack)
	for i := range hs {
		hs[i] = history.New(s.opts.MaxUndo)
	}
	s.histories = append(s.histories, hs)
	s.touch()
	return idx, nil
}

// Undo restores the previous state of a slot. The bool is false when there
// was nothing to undo.
func (s *Session) Undo(track, slot int) (SlotState, bool, error) {
	return s.step(track, slot, (*history.History).Undo)
}

// Redo re-applies the most recently undone state of a slot
func (s *Session) Redo(track, slot int) (SlotState, bool, error) {
	return s.step(track, slot, (*history.History).Redo)
}

func (s *Session) step(track, slot int, op func(*history.History) (history.Snapshot, bool)) (SlotState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSlot(track, slot); err != nil {
		return SlotState{}, false, err
	}
	snap, ok := op(s.histories[track][slot])
	if ok {
		s.song.Tracks[track][slot] = riffOf(snap)
		s.touch()
	}
	return s.slotState(track, slot), ok, nil
}

// NewSong discards the document for a blank one and clears every history
func (s *Session) NewSong(bpm int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bpm <= 0 {
		bpm = s.opts.DefaultBPM
	}
	song := models.NewSong(bpm)
	instruments, _ := models.ResolveInstruments(nil, len(song.Tracks))
	s.load(song, instruments)
}

// Open replaces the document with song after validating it
func (s *Session) Open(song *models.Song, instruments []models.Instrument) error {
	if err := song.Validate(s.parseOptions()); err != nil {
		return err
	}
	resolved, err := models.ResolveInstruments(instruments, len(song.Tracks))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(song, resolved)
	return nil
}

// SetBPM changes the song tempo
func (s *Session) SetBPM(bpm int) error {
	if bpm <= 0 || bpm > models.MaxBPM {
		return &models.SchemaError{Path: "bpm", Reason: fmt.Sprintf("must be between 1 and %d", models.MaxBPM)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.song.BPM = bpm
	s.touch()
	return nil
}

// Document returns deep copies of the song and its instruments
func (s *Session) Document() (*models.Song, []models.Instrument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.song.Copy(), append([]models.Instrument(nil), s.instruments...)
}

// Slot returns the current state of one riff card
func (s *Session) Slot(track, slot int) (SlotState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSlot(track, slot); err != nil {
		return SlotState{}, err
	}
	return s.slotState(track, slot), nil
}

func (s *Session) slotState(track, slot int) SlotState {
	r := s.song.Tracks[track][slot].Copy()
	h := s.histories[track][slot]
	st := SlotState{
		Track:   track,
		Slot:    slot,
		Riff:    r,
		Text:    r.Text(),
		CanUndo: h.CanUndo(),
		CanRedo: h.CanRedo(),
	}
	if tokens, err := notation.ParseElements(r.Notes); err == nil {
		st.Glyphs, _ = notation.LayoutPhrase(tokens, r.CScale, notation.BeatLength(r.Duration), s.instruments[track].Drum)
	}
	return st
}

// Timeline assembles a copy of the current document
func (s *Session) Timeline() (*timeline.Timeline, error) {
	song, instruments := s.Document()
	input, err := song.ToTimeline(instruments)
	if err != nil {
		return nil, err
	}
	return timeline.Assemble(input)
}
