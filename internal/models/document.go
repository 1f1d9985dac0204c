package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SchemaError is a load failure: a record was missing a field, carried an
// unknown one, or held a value of the wrong type
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return "invalid song document: " + e.Reason
	}
	return fmt.Sprintf("invalid song document: %s: %s", e.Path, e.Reason)
}

// Format selects the document encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the format from a file extension, defaulting to JSON
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Every field is a pointer so that absence can be told apart from a zero value
type rawSong struct {
	BPM    *int         `json:"bpm" yaml:"bpm"`
	Tracks *[][]rawRiff `json:"tracks" yaml:"tracks"`
}

type rawRiff struct {
	Notes    *[]string `json:"notes" yaml:"notes"`
	Duration *string   `json:"duration" yaml:"duration"`
	CScale   *int      `json:"c_scale" yaml:"c_scale"`
	Strum    *bool     `json:"strum" yaml:"strum"`
}

// DecodeJSON reads a song strictly: unknown and missing fields both fail
func DecodeJSON(r io.Reader) (*Song, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var raw rawSong
	if err := dec.Decode(&raw); err != nil {
		return nil, jsonSchemaError(err)
	}
	if dec.More() {
		return nil, &SchemaError{Reason: "trailing data after document"}
	}
	return raw.song()
}

// DecodeYAML reads a song with the same keys as the JSON form
func DecodeYAML(r io.Reader) (*Song, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var raw rawSong
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaError{Reason: "empty document"}
		}
		return nil, &SchemaError{Reason: err.Error()}
	}
	return raw.song()
}

// Decode reads a song in the given format
func Decode(r io.Reader, format Format) (*Song, error) {
	if format == FormatYAML {
		return DecodeYAML(r)
	}
	return DecodeJSON(r)
}

// LoadFile reads a song from disk, choosing the format by extension
func LoadFile(path string) (*Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read song: %w", err)
	}
	return Decode(bytes.NewReader(data), FormatForPath(path))
}

// Encode writes a song in the given format
func Encode(w io.Writer, s *Song, format Format) error {
	if format == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func (raw rawSong) song() (*Song, error) {
	if raw.BPM == nil {
		return nil, missing("bpm")
	}
	if raw.Tracks == nil {
		return nil, missing("tracks")
	}
	s := &Song{BPM: *raw.BPM, Tracks: make([][]Riff, len(*raw.Tracks))}
	for ti, track := range *raw.Tracks {
		s.Tracks[ti] = make([]Riff, len(track))
		for ri, rr := range track {
			path := fmt.Sprintf("tracks[%d][%d]", ti, ri)
			switch {
			case rr.Notes == nil:
				return nil, missing(path + ".notes")
			case rr.Duration == nil:
				return nil, missing(path + ".duration")
			case rr.CScale == nil:
				return nil, missing(path + ".c_scale")
			case rr.Strum == nil:
				return nil, missing(path + ".strum")
			}
			notes := make([]string, len(*rr.Notes))
			copy(notes, *rr.Notes)
			s.Tracks[ti][ri] = Riff{
				Notes:    notes,
				Duration: *rr.Duration,
				CScale:   *rr.CScale,
				Strum:    *rr.Strum,
			}
		}
	}
	return s, nil
}

func missing(path string) *SchemaError {
	return &SchemaError{Path: path, Reason: "missing field"}
}

func jsonSchemaError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &SchemaError{
			Path:   typeErr.Field,
			Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &SchemaError{Reason: fmt.Sprintf("malformed JSON at offset %d: %v", syntaxErr.Offset, syntaxErr)}
	}
	if errors.Is(err, io.EOF) {
		return &SchemaError{Reason: "empty document"}
	}
	return &SchemaError{Reason: strings.TrimPrefix(err.Error(), "json: ")}
}
