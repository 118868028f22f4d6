package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "slaslice",
	Short: "slice a triangle mesh into MSLA resin layer images",
	Long: `slaslice reads a watertight triangle mesh and rasterizes it into a
stack of binary grayscale PNGs, one per layer, suitable for an MSLA
resin printer's LCD mask. It can also inspect a mesh, or write a
prefilled YAML settings file.`,
}

// Execute adds all child commands to the root command and runs it. It is
// called once, from main.main().
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
