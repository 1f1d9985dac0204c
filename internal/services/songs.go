package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Conceptual-Machines/riffcard-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrSongNotFound = errors.New("song not found")

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// SongStore persists song documents. An empty ownerID disables owner
// scoping, which is how the API runs without authentication.
type SongStore interface {
	Create(ctx context.Context, song *models.StoredSong) error
	List(ctx context.Context, ownerID string, limit, offset int) ([]models.StoredSong, error)
	Get(ctx context.Context, id uuid.UUID, ownerID string) (*models.StoredSong, error)
	Update(ctx context.Context, song *models.StoredSong) error
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

type SongService struct {
	db *gorm.DB
}

func NewSongService(db *gorm.DB) *SongService {
	return &SongService{db: db}
}

func (s *SongService) scoped(ctx context.Context, ownerID string) *gorm.DB {
	q := s.db.WithContext(ctx)
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}
	return q
}

// Create inserts a new song
func (s *SongService) Create(ctx context.Context, song *models.StoredSong) error {
	if err := s.db.WithContext(ctx).Create(song).Error; err != nil {
		return fmt.Errorf("failed to create song: %w", err)
	}
	return nil
}

// List returns songs newest first
func (s *SongService) List(ctx context.Context, ownerID string, limit, offset int) ([]models.StoredSong, error) {
	var songs []models.StoredSong
	if offset < 0 {
		offset = 0
	}
	err := s.scoped(ctx, ownerID).
		Order("updated_at DESC").
		Limit(clampLimit(limit)).
		Offset(offset).
		Find(&songs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	return songs, nil
}

// Get retrieves a single song
func (s *SongService) Get(ctx context.Context, id uuid.UUID, ownerID string) (*models.StoredSong, error) {
	var song models.StoredSong
	if err := s.scoped(ctx, ownerID).Where("id = ?", id).First(&song).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("song %s: %w", id, ErrSongNotFound)
		}
		return nil, fmt.Errorf("failed to get song: %w", err)
	}
	return &song, nil
}

// Update replaces the name and document of an existing song
func (s *SongService) Update(ctx context.Context, song *models.StoredSong) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("id = ?", song.ID)
		if song.OwnerID != "" {
			q = q.Where("owner_id = ?", song.OwnerID)
		}
		var existing models.StoredSong
		if err := q.First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("song %s: %w", song.ID, ErrSongNotFound)
			}
			return err
		}

		existing.Name = song.Name
		existing.BPM = song.BPM
		existing.Tracks = song.Tracks
		existing.Instruments = song.Instruments
		if err := tx.Save(&existing).Error; err != nil {
			return fmt.Errorf("failed to update song: %w", err)
		}
		*song = existing
		return nil
	})
}

// Delete soft-deletes a song
func (s *SongService) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	result := s.scoped(ctx, ownerID).Where("id = ?", id).Delete(&models.StoredSong{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete song: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("song %s: %w", id, ErrSongNotFound)
	}
	return nil
}

// MemorySongStore keeps songs in process memory. It backs the API when no
// database is configured.
type MemorySongStore struct {
	mu    sync.RWMutex
	songs map[uuid.UUID]models.StoredSong
}

func NewMemorySongStore() *MemorySongStore {
	return &MemorySongStore{songs: make(map[uuid.UUID]models.StoredSong)}
}

func (m *MemorySongStore) Create(ctx context.Context, song *models.StoredSong) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if song.ID == uuid.Nil {
		song.ID = uuid.New()
	}
	now := time.Now()
	song.CreatedAt, song.UpdatedAt = now, now

	m.mu.Lock()
	defer m.mu.Unlock()
	m.songs[song.ID] = copyStored(*song)
	return nil
}

func (m *MemorySongStore) List(ctx context.Context, ownerID string, limit, offset int) ([]models.StoredSong, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]models.StoredSong, 0, len(m.songs))
	for _, s := range m.songs {
		if ownerID == "" || s.OwnerID == ownerID {
			out = append(out, copyStored(s))
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return []models.StoredSong{}, nil
	}
	out = out[offset:]
	if limit = clampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemorySongStore) Get(ctx context.Context, id uuid.UUID, ownerID string) (*models.StoredSong, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.songs[id]
	if !ok || (ownerID != "" && s.OwnerID != ownerID) {
		return nil, fmt.Errorf("song %s: %w", id, ErrSongNotFound)
	}
	c := copyStored(s)
	return &c, nil
}

func (m *MemorySongStore) Update(ctx context.Context, song *models.StoredSong) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.songs[song.ID]
	if !ok || (song.OwnerID != "" && existing.OwnerID != song.OwnerID) {
		return fmt.Errorf("song %s: %w", song.ID, ErrSongNotFound)
	}
	existing.Name = song.Name
	existing.BPM = song.BPM
	existing.Tracks = song.Tracks
	existing.Instruments = song.Instruments
	existing.UpdatedAt = time.Now()
	m.songs[song.ID] = copyStored(existing)
	*song = copyStored(existing)
	return nil
}

func (m *MemorySongStore) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.songs[id]
	if !ok || (ownerID != "" && s.OwnerID != ownerID) {
		return fmt.Errorf("song %s: %w", id, ErrSongNotFound)
	}
	delete(m.songs, id)
	return nil
}

func copyStored(s models.StoredSong) models.StoredSong {
	c := s
	doc := s.Song()
	c.Tracks = doc.Tracks
	c.Instruments = append([]models.Instrument(nil), s.Instruments...)
	return c
}
