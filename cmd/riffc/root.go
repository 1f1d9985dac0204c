package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/riffcard-api/internal/models"
	"github.com/Conceptual-Machines/riffcard-api/internal/notation"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	green  = color.New(color.FgGreen)
)

var strict bool

var rootCmd = &cobra.Command{
	Use:           "riffc",
	Short:         "RiffCard notation tools",
	Long:          `Parse riff notation, assemble song timelines and export them as Standard MIDI Files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "reject unknown modifiers and over-long elements")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		red.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func parseOptions() notation.ParseOptions {
	return notation.ParseOptions{Strict: strict}
}

// loadSong reads and validates a JSON or YAML song
func loadSong(path string) (*models.Song, error) {
	song, err := models.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := song.Validate(parseOptions()); err != nil {
		return nil, err
	}
	return song, nil
}

// parseInstrumentFlags turns "index=name" flags into one instrument per track
func parseInstrumentFlags(flags []string, tracks int) ([]models.Instrument, error) {
	given := make([]models.Instrument, tracks)
	for i := range given {
		given[i] = models.DefaultInstrument(i)
	}
	for _, f := range flags {
		idx, name, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("instrument flag %q: want index=name", f)
		}
		i, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil || i < 0 || i >= tracks {
			return nil, fmt.Errorf("instrument flag %q: track index must be 0-%d", f, tracks-1)
		}
		inst, err := models.LookupInstrument(name)
		if err != nil {
			return nil, err
		}
		given[i] = inst
	}
	return models.ResolveInstruments(given, tracks)
}
