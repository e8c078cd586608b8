package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"powaccount/internal/usecases"
	"powaccount/pkg/pow/argon2"
	"powaccount/pkg/pow/hashfinder"
)

// powFlags are shared by every subcommand.
type powFlags struct {
	difficulty  uint
	mode        string
	algorithm   string
	granularity string
	argonMemory uint32
	argonTime   uint32
}

func (f *powFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().UintVarP(&f.difficulty, "difficulty", "d", hashfinder.DefaultDifficulty, "required leading zeros")
	cmd.PersistentFlags().StringVar(&f.mode, "mode", "single", "digest rounds applied to the origin: single|two")
	cmd.PersistentFlags().StringVar(&f.algorithm, "algo", hashfinder.AlgorithmBlake2s, "digest: blake2s|sha256|blake3|argon2id")
	cmd.PersistentFlags().StringVar(&f.granularity, "granularity", "nibble", "difficulty unit: nibble|bit")
	cmd.PersistentFlags().Uint32Var(&f.argonMemory, "argon2-memory", argon2.DefaultMemory, "argon2id memory in KiB")
	cmd.PersistentFlags().Uint32Var(&f.argonTime, "argon2-time", argon2.DefaultTime, "argon2id iterations")
}

func (f *powFlags) finder(opts ...hashfinder.Option) (*hashfinder.HashFinder, error) {
	ch, err := usecases.ParseChallenge(f.difficulty, f.mode, f.algorithm, f.granularity)
	if err != nil {
		return nil, err
	}

	params := argon2.DefaultParams()
	params.Memory = f.argonMemory
	params.Time = f.argonTime

	hasher, err := usecases.NewHasher(ch.Algorithm, params)
	if err != nil {
		return nil, err
	}

	return hashfinder.New(uint(ch.Difficulty), append([]hashfinder.Option{
		hashfinder.WithMode(ch.Mode),
		hashfinder.WithGranularity(ch.Granularity),
		hashfinder.WithHasher(hasher),
	}, opts...)...)
}

func newRootCmd(out io.Writer) *cobra.Command {
	flags := &powFlags{}

	root := &cobra.Command{
		Use:           "powctl",
		Short:         "Find and check proof-of-work origins",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	flags.register(root)

	root.AddCommand(
		newFindCmd(flags),
		newCheckCmd(flags),
		newBenchCmd(flags),
	)
	return root
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
