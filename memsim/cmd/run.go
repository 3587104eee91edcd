package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/sarchlab/memspace/script"
	"github.com/spf13/cobra"
)

func newRunCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "run <script>",
		Short: "Run an allocation script against a new memory space.",
		Long: `Run an allocation script against a new memory space. Use "-" ` +
			`to read the script from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()

			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()

				in = f
			}

			return runScript(cmd, cfg, cfg.Capacity, in)
		},
	}
}

func runScript(
	cmd *cobra.Command,
	cfg *config,
	capacity int,
	in io.Reader,
) (err error) {
	s, err := newSession(cfg, "MemorySpace", capacity)
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, s.close()) }()

	runner := script.NewRunner(s.space, cmd.OutOrStdout())
	if err := runner.Run(cmd.Context(), in); err != nil {
		return err
	}

	return s.summarize(cmd.OutOrStdout())
}
