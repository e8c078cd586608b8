package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"powaccount/pkg/pow/hashfinder"
)

func newCheckCmd(flags *powFlags) *cobra.Command {
	var anyWidth bool

	cmd := &cobra.Command{
		Use:   "check <origin-hex>",
		Short: "Report whether a hex origin meets the difficulty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flags.finder(hashfinder.WithStrictWidth(!anyWidth))
			if err != nil {
				return err
			}

			ok, err := f.Check(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}

	cmd.Flags().BoolVar(&anyWidth, "any-width", false, "accept origins that are not 32 bytes")
	return cmd
}
