package main

import (
	"context"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"powaccount/pkg/pow/hashfinder"
)

func newBenchCmd(flags *powFlags) *cobra.Command {
	var runs int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare the mean trial count with the expected 16^d (2^d for bits)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runs < 1 {
				return fmt.Errorf("runs must be positive, got %d", runs)
			}

			f, err := flags.finder()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var total uint64
			for range runs {
				res, err := f.Search(ctx, 0)
				if err != nil {
					return err
				}
				total += res.Trials
			}

			base := 16.0
			if f.Granularity() == hashfinder.Bit {
				base = 2
			}
			expected := math.Pow(base, float64(f.Difficulty()))
			mean := float64(total) / float64(runs)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "runs: %d\n", runs)
			fmt.Fprintf(out, "mean trials: %.1f\n", mean)
			fmt.Fprintf(out, "expected: %.1f\n", expected)
			fmt.Fprintf(out, "ratio: %.3f\n", mean/expected)
			return nil
		},
	}

	cmd.Flags().IntVarP(&runs, "runs", "n", 50, "number of searches")
	return cmd
}
