package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hrygo/kanaconv/romkan"
)

// benchCmd times repeated conversions of one sentence against the loaded
// artifacts.
var benchCmd = &cobra.Command{
	Use:   "bench [input]",
	Short: "Benchmark repeated conversions of a sentence",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := "watasinonamaehanakanodesu."
		if len(args) == 1 {
			input = args[0]
		}
		iterations, err := cmd.Flags().GetInt("iterations")
		if err != nil {
			return err
		}
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}

		p, err := loadProfile()
		if err != nil {
			return err
		}
		eng, resolver, _, err := buildEngine(p)
		if err != nil {
			return err
		}

		if verbose {
			// Dump the filled lattice once before timing.
			hiragana := romkan.NewConverter(nil).ToHiragana(input)
			graph := resolver.GraphConstruct(hiragana, nil)
			resolver.FillCost(graph)
			fmt.Print(graph.Dump())
		}

		start := time.Now()
		for i := 0; i < iterations; i++ {
			if _, err := eng.Convert(input, nil); err != nil {
				return err
			}
		}
		elapsed := time.Since(start)
		fmt.Printf("%d conversions in %s (%.2f ms/conversion)\n",
			iterations, elapsed, float64(elapsed.Milliseconds())/float64(iterations))
		return nil
	},
}

func init() {
	benchCmd.Flags().Int("iterations", 100, "number of conversions to run")
	benchCmd.Flags().Bool("verbose", false, "dump the filled lattice before timing")
}
