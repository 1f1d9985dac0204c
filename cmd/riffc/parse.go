package main

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/riffcard-api/internal/models"
	"github.com/Conceptual-Machines/riffcard-api/internal/notation"
	"github.com/spf13/cobra"
)

var (
	parseAnchor   int
	parseDrum     bool
	parseDuration string
)

func init() {
	parseCmd.Flags().IntVar(&parseAnchor, "c-scale", models.DefaultCScale, "pitch of the C the riff is anchored to")
	parseCmd.Flags().BoolVar(&parseDrum, "drum", false, "lay the riff out on a drum staff")
	parseCmd.Flags().StringVar(&parseDuration, "duration", notation.DefaultDuration, "duration code of every element")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <text...>",
	Short: "Parses a riff and prints tokens, pitches and staff positions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return parse(cmd, strings.Join(args, " "))
	},
}

func parse(cmd *cobra.Command, text string) error {
	if err := models.ValidateAnchor(parseAnchor); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	tokens, err := notation.ParsePhraseWith(text, parseOptions())
	beats := notation.BeatLength(parseDuration)

	for _, t := range tokens {
		if t.Err != nil {
			red.Fprintf(out, "%-8s invalid  %s\n", t.Text, t.Err.Reason)
			continue
		}
		glyph, _ := notation.Layout(t, parseAnchor, beats, parseDrum)
		fmt.Fprintf(out, "%-8s %-7s pitches=%v positions=%v", t.Text, t.Kind, t.Pitches(parseAnchor), glyph.Positions)
		if len(glyph.LedgerLines) > 0 {
			fmt.Fprintf(out, " ledger=%v", glyph.LedgerLines)
		}
		fmt.Fprintln(out)
	}
	return err
}
