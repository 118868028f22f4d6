package cmd

import (
	"fmt"

	"github.com/arl/slaslice/slicer"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [FILE]",
	Short: "write a slicing settings file",
	Long: `Write a YAML settings file prefilled with the default slicing
configuration. If FILE is not given, 'slaslice.yml' is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfig,
}

func init() {
	RootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := "slaslice.yml"
	if len(args) == 1 {
		path = args[0]
	}

	ok, err := confirmIfExists(path, fmt.Sprintf("file %q already exists, overwrite? [y/N]", path))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("aborted by user")
		return nil
	}

	if err := slicer.SaveConfig(path, slicer.Default()); err != nil {
		return err
	}
	fmt.Printf("settings written to %q\n", path)
	return nil
}
