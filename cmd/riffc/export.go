package main

import (
	"github.com/Conceptual-Machines/riffcard-api/internal/midiexport"
	"github.com/spf13/cobra"
)

var (
	exportOutput      string
	exportInstruments []string
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "out.mid", "file to write")
	exportCmd.Flags().StringArrayVarP(&exportInstruments, "instrument", "i", nil, "track instrument as index=name, repeatable")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <song.json|song.yml>",
	Short: "Writes a song as a Standard MIDI File",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tl, instruments, err := assembleFile(args[0], exportInstruments)
		if err != nil {
			return err
		}
		stats, err := midiexport.WriteFile(exportOutput, tl, instruments)
		if err != nil {
			return err
		}
		if stats.Skipped > 0 {
			yellow.Fprintf(cmd.ErrOrStderr(), "skipped %d notes outside the MIDI range\n", stats.Skipped)
		}
		green.Fprintf(cmd.OutOrStdout(), "wrote %s: %d tracks, %d notes, %d bytes\n", exportOutput, stats.Tracks, stats.Notes, stats.Bytes)
		return nil
	},
}
