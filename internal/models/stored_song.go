package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoredSong is a saved song document together with its track instruments
type StoredSong struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	OwnerID     string         `gorm:"index" json:"owner_id,omitempty"`
	Name        string         `gorm:"not null" json:"name"`
	BPM         int            `gorm:"not null" json:"bpm"`
	Tracks      [][]Riff       `gorm:"serializer:json;type:jsonb;not null" json:"tracks"`
	Instruments []Instrument   `gorm:"serializer:json;type:jsonb" json:"instruments"`
}

// BeforeCreate assigns an ID when the caller did not
func (s *StoredSong) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Song returns the document part as a fresh copy
func (s *StoredSong) Song() *Song {
	return (&Song{BPM: s.BPM, Tracks: s.Tracks}).Copy()
}

// NewStoredSong packages a document for saving
func NewStoredSong(name, ownerID string, song *Song, instruments []Instrument) *StoredSong {
	c := song.Copy()
	return &StoredSong{
		Name:        name,
		OwnerID:     ownerID,
		BPM:         c.BPM,
		Tracks:      c.Tracks,
		Instruments: append([]Instrument(nil), instruments...),
	}
}

// SongSummary is the list view of a stored song
type SongSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	BPM       int       `json:"bpm"`
	Tracks    int       `json:"tracks"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary returns the list view of s
func (s *StoredSong) Summary() SongSummary {
	return SongSummary{
		ID:        s.ID,
		Name:      s.Name,
		BPM:       s.BPM,
		Tracks:    len(s.Tracks),
		UpdatedAt: s.UpdatedAt,
	}
}
