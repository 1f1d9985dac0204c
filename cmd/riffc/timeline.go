package main

import (
	"encoding/json"
	"fmt"

	"github.com/Conceptual-Machines/riffcard-api/internal/models"
	"github.com/Conceptual-Machines/riffcard-api/internal/timeline"
	"github.com/spf13/cobra"
)

var (
	instrumentFlags []string
	timelineJSON    bool
)

func init() {
	timelineCmd.Flags().StringArrayVarP(&instrumentFlags, "instrument", "i", nil, "track instrument as index=name, repeatable")
	timelineCmd.Flags().BoolVar(&timelineJSON, "json", false, "print the timeline as JSON")
	rootCmd.AddCommand(timelineCmd)
}

var timelineCmd = &cobra.Command{
	Use:   "timeline <song.json|song.yml>",
	Short: "Assembles a song and prints its note events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tl, instruments, err := assembleFile(args[0], instrumentFlags)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if timelineJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(tl)
		}

		fmt.Fprintf(out, "tempo %d bpm, %d events, %.3f beats\n", tl.Tempo, len(tl.Events), tl.TotalBeats())
		for _, e := range tl.Events {
			fmt.Fprintf(out, "%-24s ch=%-2d pitch=%-3d start=%-8.3f length=%.3f\n",
				instruments[e.Track].Name, e.Channel, e.Pitch, e.StartBeat, e.LengthBeat)
		}
		return nil
	},
}

// assembleFile loads a song file and runs the assembler on it
func assembleFile(path string, flags []string) (*timeline.Timeline, []models.Instrument, error) {
	song, err := loadSong(path)
	if err != nil {
		return nil, nil, err
	}
	instruments, err := parseInstrumentFlags(flags, len(song.Tracks))
	if err != nil {
		return nil, nil, err
	}
	input, err := song.ToTimeline(instruments)
	if err != nil {
		return nil, nil, err
	}
	tl, err := timeline.Assemble(input)
	if err != nil {
		return nil, nil, err
	}
	return tl, instruments, nil
}
