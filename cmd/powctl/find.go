package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"powaccount/pkg/pow/hashfinder"
)

func newFindCmd(flags *powFlags) *cobra.Command {
	var (
		workers   int
		timeout   time.Duration
		maxTrials uint64
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Search for an origin meeting the difficulty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flags.finder()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			start := time.Now()
			var res hashfinder.Result
			if maxTrials > 0 || workers == 1 {
				res, err = f.Search(ctx, maxTrials)
			} else {
				res, err = f.FindParallel(ctx, workers)
			}
			if err != nil {
				return fmt.Errorf("no origin after %d trials: %w", res.Trials, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "origin: %s\n", hashfinder.Encode(res.Origin))
			fmt.Fprintf(out, "target: %s\n", hex.EncodeToString(res.Target[:]))
			fmt.Fprintf(out, "trials: %d\n", res.Trials)
			fmt.Fprintf(out, "elapsed: %s\n", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel search goroutines (0 = GOMAXPROCS)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long (0 = no limit)")
	cmd.Flags().Uint64Var(&maxTrials, "max-trials", 0, "give up after this many trials (0 = no limit)")
	return cmd
}
