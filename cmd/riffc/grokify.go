package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Conceptual-Machines/riffcard-api/internal/notation"
	"github.com/spf13/cobra"
)

var (
	grokifySeed  int64
	grokifyCount int
)

func init() {
	grokifyCmd.Flags().Int64Var(&grokifySeed, "seed", 0, "random seed, 0 picks one from the clock")
	grokifyCmd.Flags().IntVarP(&grokifyCount, "count", "n", 1, "number of riffs to generate")
	rootCmd.AddCommand(grokifyCmd)
}

var grokifyCmd = &cobra.Command{
	Use:   "grokify",
	Short: "Generates random riffs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		seed := grokifySeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		for i := 0; i < grokifyCount; i++ {
			fmt.Fprintln(cmd.OutOrStdout(), notation.Grokify(rng))
		}
		return nil
	},
}
