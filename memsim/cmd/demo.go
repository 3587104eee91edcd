package cmd

import (
	_ "embed"
	"strings"

	"github.com/spf13/cobra"
)

// demoCapacity is the capacity the walkthrough's expectations are written
// for.
const demoCapacity = 100

//go:embed demo.mem
var demoScript string

func newDemoCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the built-in walkthrough of splits, first fit and defrag.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScript(cmd, cfg, demoCapacity, strings.NewReader(demoScript))
		},
	}
}
